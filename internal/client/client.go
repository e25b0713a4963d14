package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/cache"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/models"
)

// Catalog defines the read operations used against the TVMaze show catalog
type Catalog interface {
	// SearchShows returns the raw search records for term, in catalog order.
	SearchShows(ctx context.Context, term string) ([]models.ShowRecord, error)
	// ListEpisodes returns the raw episode records of a show, in catalog order.
	ListEpisodes(ctx context.Context, showID int) ([]models.EpisodeRecord, error)

	// Close releases any resources held by the client (e.g., cache connections).
	Close() error
}

// client implements the Catalog interface
type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	cache      cache.Cache
}

// NewClient creates a catalog client from configuration: proxy, timeout, retries and
// response cache are all optional.
func NewClient(cfg *config.Config) (Catalog, error) {
	responseCache, err := newResponseCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}
	return newClient(cfg, responseCache), nil
}

func newClient(cfg *config.Config, responseCache cache.Cache) *client {
	logger := config.GetLogger()
	timeout := config.ParseDuration("client_timeout", cfg.ClientTimeout, 30*time.Second)

	// Clone DefaultTransport to preserve its connection pooling and HTTP/2 settings
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	retryDelay := config.ParseDuration("client.retry_delay", cfg.Client.RetryDelay, 500*time.Millisecond)
	transport := newRetryTransport(newCompressionTransport(baseTransport), cfg.Client.MaxRetries, retryDelay)

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	if responseCache == nil {
		responseCache = cache.Noop()
	}
	baseURL := cfg.TVMazeBaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	return &client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL:   strings.TrimRight(baseURL, "/") + "/",
		userAgent: userAgent,
		cache:     responseCache,
	}
}

func newResponseCache(cfg *config.Config) (cache.Cache, error) {
	return cache.Open(cache.Options{
		Provider: cfg.Cache.Provider,
		Size:     cfg.Cache.Size,
		TTL:      config.ParseDuration("cache.ttl", cfg.Cache.TTL, 10*time.Minute),
		Redis: cache.RedisOptions{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		},
		Name:   "catalog",
		Logger: config.GetLogger(),
	})
}

// SearchShows queries GET {base}search/shows?q={term}. The term is sent as given.
func (c *client) SearchShows(ctx context.Context, term string) ([]models.ShowRecord, error) {
	requestURL := c.baseURL + "search/shows?q=" + url.QueryEscape(term)
	cacheKey := "search/shows?q=" + term

	var records []models.ShowRecord
	if err := c.fetchJSON(ctx, "search shows", "search", requestURL, cacheKey, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListEpisodes queries GET {base}shows/{id}/episodes.
func (c *client) ListEpisodes(ctx context.Context, showID int) ([]models.EpisodeRecord, error) {
	path := "shows/" + strconv.Itoa(showID) + "/episodes"

	var records []models.EpisodeRecord
	if err := c.fetchJSON(ctx, "list episodes", "episodes", c.baseURL+path, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// fetchJSON performs a single GET and decodes the JSON body into out. Every failure is
// an *apperrors.ErrRemoteCall. Successful bodies are cached under cacheKey.
func (c *client) fetchJSON(ctx context.Context, op, endpoint, requestURL, cacheKey string, out any) error {
	logger := config.GetLogger()

	if body, ok := c.cache.Get(ctx, cacheKey); ok {
		if err := json.Unmarshal(body, out); err == nil {
			logger.Debug().Str("url", requestURL).Msg("Serving catalog response from cache")
			return nil
		}
		logger.Warn().Str("key", cacheKey).Msg("Discarding undecodable cached catalog response")
	}

	body, err := c.get(ctx, op, endpoint, requestURL)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		logger.Warn().Err(err).Str("url", requestURL).Msg("Catalog returned malformed JSON")
		return apperrors.NewDecodeError(op, requestURL, err)
	}

	c.cache.Set(ctx, cacheKey, body)
	return nil
}

func (c *client) get(ctx context.Context, op, endpoint, requestURL string) ([]byte, error) {
	logger := config.GetLogger()
	start := time.Now()
	defer func() {
		metrics.CatalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError(op, requestURL, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	logger.Debug().Str("url", requestURL).Msg("Calling show catalog")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		logger.Warn().Err(err).Str("url", requestURL).Msg("Catalog request failed")
		return nil, apperrors.NewNetworkError(op, requestURL, err)
	}
	defer resp.Body.Close()

	metrics.CatalogRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn().Int("status", resp.StatusCode).Str("url", requestURL).Msg("Catalog returned non-success status")
		return nil, apperrors.NewStatusError(op, requestURL, resp.StatusCode)
	}

	reader, err := utf8Body(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.NewDecodeError(op, requestURL, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperrors.NewNetworkError(op, requestURL, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}

// Close releases any resources held by the client, such as cache connections.
func (c *client) Close() error {
	return c.cache.Close()
}
