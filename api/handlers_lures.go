package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"perchfinder/database/lures"
	models "perchfinder/database/models_pkg"
)

// handleListLures returns the shared lure catalog.
func (s *Server) handleListLures(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.lures.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta beteskatalogen", err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// handleCreateLure adds a catalog entry. Admin only.
func (s *Server) handleCreateLure(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	var l models.Lure
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ogiltig förfrågan", err)
		return
	}

	if err := s.lures.Create(r.Context(), &l); err != nil {
		if errors.Is(err, lures.ErrInvalidLure) {
			respondWithError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Kunde inte spara betet", err)
		return
	}

	writeJSON(w, http.StatusCreated, l)
}

// handleDeleteLure removes a catalog entry. Admin only.
func (s *Server) handleDeleteLure(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	if err := s.lures.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte ta bort betet", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
