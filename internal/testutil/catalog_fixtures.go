package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// StringPtr is a helper for creating *string values in fixtures
func StringPtr(v string) *string {
	return &v
}

// ShowRecordOptions contains options for generating a search record
type ShowRecordOptions struct {
	ID      int
	Name    string
	Summary string
	Medium  *string // nil with NoImage=false renders "medium": null
	NoImage bool    // renders "image": null
}

// GenerateSearchJSON builds a catalog search response body.
func GenerateSearchJSON(shows ...ShowRecordOptions) string {
	records := make([]map[string]any, 0, len(shows))
	for _, s := range shows {
		show := map[string]any{
			"id":      s.ID,
			"name":    s.Name,
			"summary": s.Summary,
			"url":     fmt.Sprintf("https://www.tvmaze.com/shows/%d", s.ID),
		}
		if s.NoImage {
			show["image"] = nil
		} else {
			show["image"] = map[string]any{"medium": s.Medium, "original": s.Medium}
		}
		records = append(records, map[string]any{"score": 0.9, "show": show})
	}
	return mustJSON(records)
}

// EpisodeRecordOptions contains options for generating an episode record
type EpisodeRecordOptions struct {
	ID     int
	Name   string
	Season int
	Number int
}

// GenerateEpisodesJSON builds a catalog episode list response body.
func GenerateEpisodesJSON(episodes ...EpisodeRecordOptions) string {
	records := make([]map[string]any, 0, len(episodes))
	for _, e := range episodes {
		records = append(records, map[string]any{
			"id":      e.ID,
			"name":    e.Name,
			"season":  e.Season,
			"number":  e.Number,
			"airdate": "2005-03-24",
		})
	}
	return mustJSON(records)
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// FakeCatalog is an httptest-backed stand-in for the TVMaze API. Responses are
// registered per search term and per show id; anything else answers 404.
type FakeCatalog struct {
	Server *httptest.Server

	mu       sync.Mutex
	searches map[string]string
	episodes map[int]string
	status   int
	requests []string
	block    map[string]chan struct{}
}

// NewFakeCatalog starts a fake catalog. Close it with Server.Close.
func NewFakeCatalog() *FakeCatalog {
	f := &FakeCatalog{
		searches: make(map[string]string),
		episodes: make(map[int]string),
		block:    make(map[string]chan struct{}),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// URL returns the base URL with a trailing slash, like the real API root.
func (f *FakeCatalog) URL() string {
	return f.Server.URL + "/"
}

func (f *FakeCatalog) SetSearch(term, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches[term] = body
}

func (f *FakeCatalog) SetEpisodes(showID int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodes[showID] = body
}

// FailWith makes every request answer status until reset with 0.
func (f *FakeCatalog) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Hold makes requests matching key wait until the returned release function is
// called. key is either a full request URI ("/search/shows?q=batman") or a path
// ("/search/shows").
func (f *FakeCatalog) Hold(key string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.block[key] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.block, key)
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns the request URIs received so far.
func (f *FakeCatalog) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *FakeCatalog) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.RequestURI())
	status := f.status
	hold, ok := f.block[r.URL.RequestURI()]
	if !ok {
		hold = f.block[r.URL.Path]
	}
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if status != 0 {
		w.WriteHeader(status)
		return
	}

	body, ok := f.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (f *FakeCatalog) lookup(r *http.Request) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/search/shows" {
		body, ok := f.searches[r.URL.Query().Get("q")]
		if !ok {
			return "[]", true
		}
		return body, true
	}

	rest, found := strings.CutPrefix(r.URL.Path, "/shows/")
	if !found {
		return "", false
	}
	idText, found := strings.CutSuffix(rest, "/episodes")
	if !found {
		return "", false
	}
	id, err := strconv.Atoi(idText)
	if err != nil {
		return "", false
	}
	body, ok := f.episodes[id]
	return body, ok
}
