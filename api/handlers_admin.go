package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"perchfinder/auth"
	models "perchfinder/database/models_pkg"
	"perchfinder/database/waters"
)

func (s *Server) isAdmin(uid string) bool {
	for _, admin := range s.adminUIDs {
		if uid == admin {
			return true
		}
	}
	return false
}

// requireAdmin authenticates the request and checks the admin allow-list.
// Returns nil after writing the error response on failure.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) *auth.Identity {
	identity := s.requireUser(w, r)
	if identity == nil {
		return nil
	}
	if !s.isAdmin(identity.UID) {
		respondWithError(w, http.StatusForbidden, "Endast administratörer", nil)
		return nil
	}
	return identity
}

// handlePendingWaters returns the moderation queue.
func (s *Server) handlePendingWaters(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	pending, err := s.waters.ListPending(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta granskningskön", err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// handleReviewWater resolves a moderation decision.
func (s *Server) handleReviewWater(w http.ResponseWriter, r *http.Request) {
	identity := s.requireAdmin(w, r)
	if identity == nil {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ogiltig förfrågan", err)
		return
	}
	if body.Status != models.WaterStatusApproved && body.Status != models.WaterStatusRejected {
		respondWithError(w, http.StatusBadRequest, "Status måste vara APPROVED eller REJECTED", nil)
		return
	}

	id := r.PathValue("id")
	if err := s.waters.SetStatus(r.Context(), id, body.Status, identity.UID); err != nil {
		if errors.Is(err, waters.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Vattnet finns inte", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Kunde inte uppdatera vattnet", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": body.Status})
}

// handleDashboard serves the admin activity overview from the raw-SQL
// dashboard queries.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}
	if s.dashboard == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Översikten är inte tillgänglig", nil)
		return
	}

	minLimit, maxLimit := 1, 100
	limit := getIntParam(r, "limit", 10, &minLimit, &maxLimit)

	activity, err := s.dashboard.WaterActivity(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta aktivitet", err)
		return
	}
	pendingCount, err := s.dashboard.PendingWaterCount(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta granskningskön", err)
		return
	}
	weekCount, err := s.dashboard.CatchCountSince(r.Context(), time.Now().AddDate(0, 0, -7))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta fångststatistik", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"water_activity":      activity,
		"pending_waters":      pendingCount,
		"catches_last_7_days": weekCount,
	})
}

// handleRefreshWebhooks drops the cached webhook list.
func (s *Server) handleRefreshWebhooks(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}
	if s.webhookMgr != nil {
		s.webhookMgr.RefreshCache()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
