package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nyashahama/investgpt-backend/internal/store"
)

// ─── GET /api/generations/{generationID} ──────────────────────────────────────

// handleGetGeneration returns one recorded generation by the ID that was sent
// back in X-Generation-ID. Without a database every lookup is a 404.
func (s *Server) handleGetGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(chi.URLParam(r, "generationID"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid generation ID")
		return
	}

	g, err := s.history.GetGeneration(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "generation not found")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, g)
}
