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

// EpisodeLister is the catalog operation the Episode Listing Unit depends on.
type EpisodeLister interface {
	ListEpisodes(ctx context.Context, showID int) ([]models.EpisodeRecord, error)
}

// EpisodeListing fetches a show's episodes and renders them into the episodes region.
type EpisodeListing struct {
	catalog  EpisodeLister
	doc      *dom.Document
	episodes *dom.Region

	generation atomic.Uint64
}

func NewEpisodeListing(catalog EpisodeLister, doc *dom.Document, episodes *dom.Region) *EpisodeListing {
	return &EpisodeListing{
		catalog:  catalog,
		doc:      doc,
		episodes: episodes,
	}
}

// FetchEpisodes returns the episodes of showID exactly as the catalog orders them.
func (e *EpisodeListing) FetchEpisodes(ctx context.Context, showID int) ([]models.Episode, error) {
	records, err := e.catalog.ListEpisodes(ctx, showID)
	if err != nil {
		return nil, err
	}
	return models.ToEpisodes(records), nil
}

// Render replaces the episodes region with one line per episode.
func (e *EpisodeListing) Render(episodes []models.Episode) {
	e.doc.Mutate(func() { e.render(episodes) })
}

func (e *EpisodeListing) render(episodes []models.Episode) {
	e.episodes.Empty()
	for _, ep := range episodes {
		e.episodes.AppendHTML("<li>" + dom.Escape(ep.Line()) + "</li>")
	}
	metrics.WidgetRendersTotal.WithLabelValues("episodes").Inc()
}

// HandleEpisodesClick runs the episodes pipeline for showID: fetch, reveal, render.
// A response or failure overtaken by a later click or a new show list returns
// ErrSuperseded.
func (e *EpisodeListing) HandleEpisodesClick(ctx context.Context, showID int) error {
	logger := config.GetLogger()
	token := e.generation.Add(1)

	episodes, err := e.FetchEpisodes(ctx, showID)
	if err != nil {
		if e.generation.Load() != token {
			metrics.WidgetSupersededTotal.WithLabelValues("episodes").Inc()
			logger.Debug().Err(err).Int("show_id", showID).Msg("Discarding superseded episodes failure")
			return fmt.Errorf("list episodes of show %d: %w: %w", showID, ErrSuperseded, err)
		}
		return fmt.Errorf("list episodes of show %d: %w", showID, err)
	}

	current := true
	e.doc.Mutate(func() {
		if e.generation.Load() != token {
			current = false
			return
		}
		e.episodes.Reveal()
		e.render(episodes)
	})
	if !current {
		metrics.WidgetSupersededTotal.WithLabelValues("episodes").Inc()
		logger.Debug().Int("show_id", showID).Msg("Discarding superseded episodes response")
		return ErrSuperseded
	}

	logger.Debug().Int("show_id", showID).Int("episodes", len(episodes)).Msg("Rendered episodes")
	return nil
}

// Supersede invalidates every episodes request in flight.
func (e *EpisodeListing) Supersede() {
	e.generation.Add(1)
}
