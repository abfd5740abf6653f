package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"perchfinder/auth"
	"perchfinder/database/catches"
	models "perchfinder/database/models_pkg"
	"perchfinder/database/waters"
)

// requireUser authenticates the request. Returns nil after writing a 401 if
// the token is missing, invalid or the email is unverified.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) *auth.Identity {
	raw := bearerToken(r)
	if raw == "" {
		respondWithError(w, http.StatusUnauthorized, "Du måste vara inloggad.", nil)
		return nil
	}
	identity, err := s.verifier.Verify(raw)
	if errors.Is(err, auth.ErrEmailNotVerified) {
		respondWithError(w, http.StatusUnauthorized, "Du måste verifiera din e-postadress.", nil)
		return nil
	}
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Ogiltig inloggning.", err)
		return nil
	}
	return identity
}

// handleCreateCatch logs a new catch and fans the event out: SSE, websocket,
// outbound webhooks, and recommendation cache invalidation.
func (s *Server) handleCreateCatch(w http.ResponseWriter, r *http.Request) {
	identity := s.requireUser(w, r)
	if identity == nil {
		return
	}

	var c models.Catch
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ogiltig förfrågan", err)
		return
	}
	c.ID = 0
	c.UserID = &identity.UID

	water, err := s.waters.Get(r.Context(), c.WaterID)
	if errors.Is(err, waters.ErrNotFound) {
		respondWithError(w, http.StatusBadRequest, "Okänt vatten", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte spara fångsten", err)
		return
	}

	if err := s.catches.Save(r.Context(), &c); err != nil {
		switch {
		case errors.Is(err, catches.ErrMissingWater),
			errors.Is(err, catches.ErrInvalidCaughtAt),
			errors.Is(err, catches.ErrInvalidWeight),
			errors.Is(err, catches.ErrInvalidLength):
			respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Kunde inte spara fångsten", err)
		}
		return
	}

	if s.broker != nil {
		s.broker.BroadcastCatchSaved(c.WaterID)
	}
	if s.hub != nil {
		s.hub.BroadcastCatchSaved(c.WaterID)
	}
	if s.webhookMgr != nil {
		s.webhookMgr.SendCatch(&c, water.Name)
	}
	if s.recommender != nil {
		// The saved catch changed the stats signature; any cached advice for
		// this water is stale now.
		go s.recommender.InvalidateWater(context.Background(), c.WaterID)
	}

	writeJSON(w, http.StatusCreated, c)
}

// handleListCatches returns a water's catch history, oldest first.
func (s *Server) handleListCatches(w http.ResponseWriter, r *http.Request) {
	waterID := r.PathValue("id")

	history, err := s.catches.ListByWater(r.Context(), waterID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta fångster", err)
		return
	}

	minLimit, maxLimit := 1, 1000
	limit := getIntParam(r, "limit", 0, &minLimit, &maxLimit)
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	writeJSON(w, http.StatusOK, history)
}

// handleListMyCatches returns the authenticated user's catches across waters.
func (s *Server) handleListMyCatches(w http.ResponseWriter, r *http.Request) {
	identity := s.requireUser(w, r)
	if identity == nil {
		return
	}

	minLimit, maxLimit := 1, 500
	limit := getIntParam(r, "limit", 100, &minLimit, &maxLimit)

	history, err := s.catches.ListByUser(r.Context(), identity.UID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta fångster", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
