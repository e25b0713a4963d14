package widget

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/dom"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/models"
)

// EpisodesControlClass marks the per-card control that requests a show's episodes.
const EpisodesControlClass = "Show-getEpisodes"

// ShowSearcher is the catalog operation the Show Search Unit depends on.
type ShowSearcher interface {
	SearchShows(ctx context.Context, term string) ([]models.ShowRecord, error)
}

// ShowSearch searches the catalog by title and renders show cards into the shows region.
type ShowSearch struct {
	catalog      ShowSearcher
	defaultImage string
	doc          *dom.Document
	shows        *dom.Region
	episodes     *dom.Region

	generation atomic.Uint64

	// guarded by doc
	cardSeq  uint64
	bindings map[string]int

	// OnShowsReplaced runs under the document lock right after a search result is
	// rendered.
	OnShowsReplaced func()
}

// NewShowSearch wires the unit to its regions. shows is owned by the unit; episodes
// is only hidden when new results arrive.
func NewShowSearch(catalog ShowSearcher, doc *dom.Document, shows, episodes *dom.Region, defaultImage string) *ShowSearch {
	if defaultImage == "" {
		defaultImage = config.DefaultImageURL
	}
	return &ShowSearch{
		catalog:      catalog,
		defaultImage: defaultImage,
		doc:          doc,
		shows:        shows,
		episodes:     episodes,
		bindings:     make(map[string]int),
	}
}

// Search fetches shows matching term, in catalog order. The term is not validated.
func (s *ShowSearch) Search(ctx context.Context, term string) ([]models.Show, error) {
	records, err := s.catalog.SearchShows(ctx, term)
	if err != nil {
		return nil, err
	}
	return models.ToShows(records, s.defaultImage), nil
}

// Render replaces the shows region with one card per show.
func (s *ShowSearch) Render(shows []models.Show) {
	s.doc.Mutate(func() { s.render(shows) })
}

func (s *ShowSearch) render(shows []models.Show) {
	s.shows.Empty()
	s.bindings = make(map[string]int, len(shows))

	for _, show := range shows {
		s.cardSeq++
		key := fmt.Sprintf("show-card-%d", s.cardSeq)
		s.shows.AppendHTML(cardHTML(show, key))
		s.bindings[key] = show.ID
	}
	metrics.WidgetRendersTotal.WithLabelValues("shows").Inc()
}

func cardHTML(show models.Show, key string) string {
	return fmt.Sprintf(`<div class="Show col-md-12 col-lg-6 mb-4">
  <div class="media">
    <img src="%s" alt="%s" class="w-25 me-3">
    <div class="media-body">
      <h5 class="text-primary">%s</h5>
      <div><small>%s</small></div>
      <button type="submit" name="control" value="%s" class="btn btn-outline-light btn-sm %s">Episodes</button>
    </div>
  </div>
</div>`,
		dom.Escape(show.Image), dom.Escape(show.Name), dom.Escape(show.Name), show.Summary, dom.Escape(key), EpisodesControlClass)
}

// HandleSubmit runs the search-form pipeline: search, hide the episodes region, render.
// A response or failure overtaken by a later submit is dropped with ErrSuperseded.
func (s *ShowSearch) HandleSubmit(ctx context.Context, term string) error {
	logger := config.GetLogger()
	token := s.generation.Add(1)

	shows, err := s.Search(ctx, term)
	if err != nil {
		if s.generation.Load() != token {
			metrics.WidgetSupersededTotal.WithLabelValues("search").Inc()
			logger.Debug().Err(err).Str("term", term).Msg("Discarding superseded search failure")
			return fmt.Errorf("search shows %q: %w: %w", term, ErrSuperseded, err)
		}
		return fmt.Errorf("search shows %q: %w", term, err)
	}

	current := true
	s.doc.Mutate(func() {
		if s.generation.Load() != token {
			current = false
			return
		}
		s.episodes.Hide()
		s.render(shows)
		if s.OnShowsReplaced != nil {
			s.OnShowsReplaced()
		}
	})
	if !current {
		metrics.WidgetSupersededTotal.WithLabelValues("search").Inc()
		logger.Debug().Str("term", term).Msg("Discarding superseded search response")
		return ErrSuperseded
	}

	logger.Debug().Str("term", term).Int("shows", len(shows)).Msg("Rendered search results")
	return nil
}

// showIDFor resolves a control key of the current cards. Call under the document lock.
func (s *ShowSearch) showIDFor(key string) (int, bool) {
	id, ok := s.bindings[key]
	return id, ok
}
