package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/reporting"
	"github.com/Belphemur/ShowFinder/internal/widget"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	wg, err := s.sessions.widgetFor(w, r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writePage(w, wg, http.StatusOK)
}

// handleSearch is the search form submission.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	wg, err := s.sessions.widgetFor(w, r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	err = wg.Submit(r.Context(), r.PostForm.Get("term"))
	writePage(w, wg, pageStatus(r.Context(), err))
}

// handleEpisodes is the activation of an episodes control on a show card.
func (s *Server) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	wg, err := s.sessions.widgetFor(w, r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	err = wg.Click(r.Context(), r.PostForm.Get("control"))
	writePage(w, wg, pageStatus(r.Context(), err))
}

// pageStatus maps a widget action outcome to the response status. The widget has already
// rendered any failure into the page.
func pageStatus(ctx context.Context, err error) int {
	logger := config.GetLogger()

	switch {
	case err == nil, errors.Is(err, widget.ErrSuperseded):
		return http.StatusOK
	case errors.Is(err, &apperrors.ErrUnknownControl{}):
		logger.Debug().Err(err).Msg("Episodes requested for a control that is not on the page")
		return http.StatusBadRequest
	default:
		logger.Error().Err(err).Msg("Widget action failed")
		reporting.Capture(ctx, err)
		return http.StatusOK
	}
}

func writePage(w http.ResponseWriter, wg *widget.Widget, status int) {
	page, err := wg.HTML()
	if err != nil {
		config.GetLogger().Error().Err(err).Msg("Failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	config.GetLogger().Error().Err(err).Msg("Failed to start widget session")
	reporting.Capture(r.Context(), err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
