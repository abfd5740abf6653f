package api

import (
	"encoding/json"
	"errors"
	"net/http"

	models "perchfinder/database/models_pkg"
	"perchfinder/database/waters"
)

// handleListWaters returns all approved waters.
func (s *Server) handleListWaters(w http.ResponseWriter, r *http.Request) {
	list, err := s.waters.ListApproved(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta vatten", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetWater returns one water by id. Pending waters are only visible to
// their creator and admins.
func (s *Server) handleGetWater(w http.ResponseWriter, r *http.Request) {
	water, err := s.waters.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, waters.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Vattnet finns inte", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta vattnet", err)
		return
	}

	if water.Status != models.WaterStatusApproved {
		identity := s.requireUser(w, r)
		if identity == nil {
			return
		}
		if water.CreatedBy != identity.UID && !s.isAdmin(identity.UID) {
			respondWithError(w, http.StatusNotFound, "Vattnet finns inte", nil)
			return
		}
	}

	writeJSON(w, http.StatusOK, water)
}

// handleRegisterWater submits a new water for moderation.
func (s *Server) handleRegisterWater(w http.ResponseWriter, r *http.Request) {
	identity := s.requireUser(w, r)
	if identity == nil {
		return
	}

	var water models.Water
	if err := json.NewDecoder(r.Body).Decode(&water); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ogiltig förfrågan", err)
		return
	}
	water.CreatedBy = identity.UID

	if err := s.waters.Register(r.Context(), &water); err != nil {
		if errors.Is(err, waters.ErrInvalidName) {
			respondWithError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Kunde inte registrera vattnet", err)
		return
	}

	writeJSON(w, http.StatusCreated, water)
}
