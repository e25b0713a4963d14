package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/models"
	"github.com/Belphemur/ShowFinder/internal/reporting"
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleAPIShows(w http.ResponseWriter, r *http.Request) {
	records, err := s.catalog.SearchShows(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		apiFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ToShows(records, s.defaultImage))
}

func (s *Server) handleAPIEpisodes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimSpace(mux.Vars(r)["id"]))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "show id must be a positive integer"})
		return
	}

	records, err := s.catalog.ListEpisodes(r.Context(), id)
	if err != nil {
		apiFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ToEpisodes(records))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func apiFailure(w http.ResponseWriter, r *http.Request, err error) {
	config.GetLogger().Error().Err(err).Str("path", r.URL.Path).Msg("Catalog call failed")
	reporting.Capture(r.Context(), err)

	status := http.StatusInternalServerError
	if errors.Is(err, &apperrors.ErrRemoteCall{}) {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		config.GetLogger().Warn().Err(err).Msg("Failed to encode JSON response")
	}
}
