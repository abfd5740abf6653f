package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"perchfinder/auth"
	"perchfinder/database/ratelimit"
	"perchfinder/llm"
	"perchfinder/stats"
	"perchfinder/validation"
)

type recommendationRequest struct {
	Stats *stats.WaterStatsPayload `json:"stats"`
}

// handleWaterRecommendation runs the server-side requester for one water and
// returns its outcome. Error outcomes carry a user-facing message in the
// view, so the response stays 200 unless the flow itself broke.
func (s *Server) handleWaterRecommendation(w http.ResponseWriter, r *http.Request) {
	if s.requireUser(w, r) == nil {
		return
	}
	if s.recommender == nil {
		respondWithError(w, http.StatusServiceUnavailable, "AI-råd är inte tillgängliga", nil)
		return
	}

	view, err := s.recommender.RequestRecommendation(r.Context(), r.PathValue("id"))
	if err != nil && view.State == "" {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte hämta AI-råd just nu", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleRecommendation is the hardened AI advice route. Checks run in order:
// origin allow-list, body size, bearer token, payload shape, plausibility
// validation, rate limit. Only then does the prompt reach the LLM.
func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && !s.originAllowed(origin) {
		respondWithError(w, http.StatusForbidden, "Otillåten klient", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	raw := bearerToken(r)
	if raw == "" {
		respondWithError(w, http.StatusUnauthorized, "Du måste vara inloggad.", nil)
		return
	}
	identity, err := s.verifier.Verify(raw)
	if errors.Is(err, auth.ErrEmailNotVerified) {
		respondWithError(w, http.StatusUnauthorized, "Du måste verifiera din e-postadress.", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Ogiltig inloggning.", err)
		return
	}

	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "För stor förfrågan", nil)
			return
		}
		respondWithError(w, http.StatusBadRequest, "Ogiltig förfrågan", err)
		return
	}

	if err := validation.CheckPayload(req.Stats); err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			log.Printf("Rejected stats payload from %s: field=%s constraint=%q", identity.UID, verr.Field, verr.Constraint)
		}
		respondWithError(w, http.StatusBadRequest, "Ogiltig statistik", err)
		return
	}

	if s.rateLimiter != nil {
		key := ratelimit.Key(s.rateLimitSalt, identity.UID)
		decision, err := s.rateLimiter.Check(r.Context(), key)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Kunde inte kontrollera din kvot", err)
			return
		}
		if !decision.Allowed {
			seconds := int(decision.RetryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			respondWithError(w, http.StatusTooManyRequests, "Du har nått gränsen för AI-råd. Försök igen senare.", nil)
			return
		}
	}

	if s.generator == nil {
		respondWithError(w, http.StatusInternalServerError, "Servern saknar AI-nyckel", nil)
		return
	}

	prompt, err := llm.FormatRecommendationPrompt(req.Stats)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Kunde inte bygga förfrågan", err)
		return
	}

	recommendation, err := s.generator.Recommend(r.Context(), prompt)
	if err != nil {
		log.Printf("API Error [500]: advice generation failed for %s - %v", identity.UID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "Kunde inte hämta AI-råd just nu",
			"detail": fmt.Sprintf("water=%s catches=%d", req.Stats.WaterName, req.Stats.TotalCatches),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"recommendation": recommendation})
}
