package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Belphemur/ShowFinder/internal/client"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/models"
	"github.com/Belphemur/ShowFinder/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *testutil.FakeCatalog) {
	t.Helper()
	fake := testutil.NewFakeCatalog()
	t.Cleanup(fake.Server.Close)

	cfg := &config.Config{TVMazeBaseURL: fake.URL(), ClientTimeout: "5s"}
	cfg.Cache.Provider = "none"
	cfg.Server.MaxSessions = 10
	catalog, err := client.NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = catalog.Close() })

	return New(catalog, cfg), fake
}

func seedCatalog(fake *testutil.FakeCatalog) {
	fake.SetSearch("batman", testutil.GenerateSearchJSON(
		testutil.ShowRecordOptions{ID: 975, Name: "Batman", Summary: "<p>Caped.</p>", Medium: testutil.StringPtr("https://img.example/b.jpg")},
		testutil.ShowRecordOptions{ID: 42, Name: "Batman Beyond", NoImage: true},
	))
	fake.SetEpisodes(42, testutil.GenerateEpisodesJSON(
		testutil.EpisodeRecordOptions{ID: 1, Name: "Rebirth", Season: 1, Number: 1},
	))
}

func do(t *testing.T, h http.Handler, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatalf("response did not set %s", SessionCookie)
	return nil
}

func TestServer_IndexStartsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `id="searchForm"`)
	cookie := sessionCookie(t, rec)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	again := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	assert.Empty(t, again.Result().Cookies(), "a known session is reused")
	assert.Equal(t, 1, srv.sessions.len())
}

func TestServer_SearchThenEpisodes(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCatalog(fake)
	h := srv.Handler()

	rec := do(t, h, postForm("/search", url.Values{"term": {"batman"}}), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	page := rec.Body.String()
	assert.Contains(t, page, "Batman Beyond")
	assert.Contains(t, page, config.DefaultImageURL)
	assert.Contains(t, page, `value="show-card-2"`)

	rec = do(t, h, postForm("/episodes", url.Values{"control": {"show-card-2"}}), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<li>Rebirth (Season 1, Episode 1)</li>")
	assert.Contains(t, fake.Requests(), "/shows/42/episodes")
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCatalog(fake)
	h := srv.Handler()

	first := do(t, h, postForm("/search", url.Values{"term": {"batman"}}), nil)
	second := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.NotEqual(t, sessionCookie(t, first).Value, sessionCookie(t, second).Value)
	assert.NotContains(t, second.Body.String(), "Batman Beyond")
}

func TestServer_EpisodesUnknownControl(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCatalog(fake)
	h := srv.Handler()

	rec := do(t, h, postForm("/episodes", url.Values{"control": {"show-card-99"}}), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer listed")
}

func TestServer_SearchFailureRendersBanner(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.FailWith(http.StatusServiceUnavailable)

	rec := do(t, srv.Handler(), postForm("/search", url.Values{"term": {"batman"}}), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not reach the show catalog")
}

func TestServer_APIShows(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCatalog(fake)

	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/api/shows?q=batman", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var shows []models.Show
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shows))
	require.Len(t, shows, 2)
	assert.Equal(t, models.Show{ID: 975, Name: "Batman", Summary: "<p>Caped.</p>", Image: "https://img.example/b.jpg"}, shows[0])
	assert.Equal(t, config.DefaultImageURL, shows[1].Image)
}

func TestServer_APIShowsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/api/shows?q=nothing", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestServer_APIEpisodes(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCatalog(fake)
	h := srv.Handler()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/shows/42/episodes", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Rebirth","season":1,"number":1}]`, rec.Body.String())

	for _, id := range []string{"abc", "0", "-3"} {
		rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/shows/"+id+"/episodes", nil), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "id %s", id)
	}
}

func TestServer_APIFailureIsBadGateway(t *testing.T) {
	srv, fake := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/shows/7/episodes", nil), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code, "unknown show answers 404 upstream")

	fake.FailWith(http.StatusInternalServerError)
	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/shows?q=batman", nil), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "500")
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/search", nil), nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Address = "127.0.0.1"

	srv := NewHTTPServer(cfg, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:8080", srv.Addr)

	cfg.Server.Port = 9000
	assert.Equal(t, "127.0.0.1:9000", NewHTTPServer(cfg, http.NotFoundHandler()).Addr)
}
