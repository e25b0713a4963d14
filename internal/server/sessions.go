package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/widget"
)

// SessionCookie carries the id of the caller's widget.
const SessionCookie = "showfinder_session"

const (
	defaultMaxSessions = 1000
	defaultSessionTTL  = 30 * time.Minute
)

// sessionStore keeps one widget per browser session. Sessions idle past the TTL or
// pushed out by newer ones start over with an empty page.
type sessionStore struct {
	catalog      widget.Catalog
	defaultImage string
	ttl          time.Duration
	widgets      *expirable.LRU[string, *widget.Widget]
}

func newSessionStore(catalog widget.Catalog, defaultImage string, size int, ttl time.Duration) *sessionStore {
	if size <= 0 {
		size = defaultMaxSessions
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	onEvict := func(id string, _ *widget.Widget) {
		metrics.ActiveSessions.Dec()
		config.GetLogger().Debug().Str("session", id).Msg("Widget session evicted")
	}
	return &sessionStore{
		catalog:      catalog,
		defaultImage: defaultImage,
		ttl:          ttl,
		widgets:      expirable.NewLRU[string, *widget.Widget](size, onEvict, ttl),
	}
}

// widgetFor returns the caller's widget, starting a new session when the request
// carries no cookie or an expired one.
func (s *sessionStore) widgetFor(w http.ResponseWriter, r *http.Request) (*widget.Widget, error) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if wg, ok := s.widgets.Get(cookie.Value); ok {
			return wg, nil
		}
	}

	wg, err := widget.New(s.catalog, s.defaultImage)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	s.widgets.Add(id, wg)
	metrics.ActiveSessions.Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	config.GetLogger().Debug().Str("session", id).Msg("Started widget session")
	return wg, nil
}

func (s *sessionStore) len() int {
	return s.widgets.Len()
}
