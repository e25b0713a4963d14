// Package server exposes the show search widget over HTTP: server-rendered pages backed
// by a per-session widget, plus a small JSON API over the same catalog.
package server

import (
	"fmt"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"

	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/widget"
)

// Route names, also used as the route label of the request metrics.
const (
	routeIndex       = "index"
	routeSearch      = "search"
	routeEpisodes    = "episodes"
	routeAPIShows    = "api_shows"
	routeAPIEpisodes = "api_episodes"
	routeHealth      = "healthz"
)

// Server routes requests to per-session widgets and to the catalog.
type Server struct {
	catalog      widget.Catalog
	defaultImage string
	sessions     *sessionStore
	router       *mux.Router
}

// New creates the server. cfg supplies the placeholder image and session limits.
func New(catalog widget.Catalog, cfg *config.Config) *Server {
	defaultImage := cfg.DefaultImageURL
	if defaultImage == "" {
		defaultImage = config.DefaultImageURL
	}
	ttl := config.ParseDuration("server.session_ttl", cfg.Server.SessionTTL, defaultSessionTTL)

	s := &Server{
		catalog:      catalog,
		defaultImage: defaultImage,
		sessions:     newSessionStore(catalog, defaultImage, cfg.Server.MaxSessions, ttl),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(observe)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet).Name(routeIndex)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost).Name(routeSearch)
	r.HandleFunc("/episodes", s.handleEpisodes).Methods(http.MethodPost).Name(routeEpisodes)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/shows", s.handleAPIShows).Methods(http.MethodGet).Name(routeAPIShows)
	api.HandleFunc("/shows/{id}/episodes", s.handleAPIEpisodes).Methods(http.MethodGet).Name(routeAPIEpisodes)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet).Name(routeHealth)
	return r
}

// Handler returns the root handler. Panics and errors are reported to Sentry when
// reporting is enabled.
func (s *Server) Handler() http.Handler {
	return sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(s.router)
}

// NewHTTPServer creates the HTTP server listening on server.address:server.port.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
