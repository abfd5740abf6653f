package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"perchfinder/auth"
	"perchfinder/database"
	"perchfinder/database/catches"
	"perchfinder/database/lures"
	"perchfinder/database/ratelimit"
	"perchfinder/database/waters"
	"perchfinder/notifications"
	"perchfinder/realtime"
	"perchfinder/websocket"
)

// TokenVerifier validates bearer tokens on protected routes.
type TokenVerifier interface {
	Verify(raw string) (*auth.Identity, error)
}

// RateLimiter applies the per-user request cap on the advice route.
type RateLimiter interface {
	Check(ctx context.Context, key string) (ratelimit.Decision, error)
}

// AdviceGenerator produces the recommendation text for a rendered prompt.
type AdviceGenerator interface {
	Recommend(ctx context.Context, prompt string) (string, error)
}

// RecommendationView is the requester outcome served to clients.
type RecommendationView struct {
	State          string `json:"state"`
	Recommendation string `json:"recommendation,omitempty"`
	Message        string `json:"message,omitempty"`
	FromCache      bool   `json:"from_cache"`
}

// WaterRecommender runs the server-side recommendation flow and drops derived
// state when a water's catch history changes.
type WaterRecommender interface {
	InvalidateWater(ctx context.Context, waterID string)
	RequestRecommendation(ctx context.Context, waterID string) (RecommendationView, error)
}

// Server handles HTTP API requests
type Server struct {
	waters      *waters.Repository
	catches     *catches.Repository
	lures       *lures.Repository
	dashboard   *database.Dashboard
	webhookMgr  *notifications.WebhookManager
	broker      *realtime.Broker
	hub         *websocket.Hub
	verifier    TokenVerifier
	rateLimiter RateLimiter
	generator   AdviceGenerator
	recommender WaterRecommender

	allowedOrigins []string
	adminUIDs      []string
	rateLimitSalt  string
	maxBodyBytes   int64
}

// ServerConfig carries the request-policy knobs the server enforces.
type ServerConfig struct {
	AllowedOrigins []string
	AdminUIDs      []string
	RateLimitSalt  string
	MaxBodyBytes   int64
}

// NewServer creates a new API server instance
func NewServer(watersRepo *waters.Repository, catchesRepo *catches.Repository, luresRepo *lures.Repository, verifier TokenVerifier, cfg ServerConfig) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 25000
	}
	return &Server{
		waters:         watersRepo,
		catches:        catchesRepo,
		lures:          luresRepo,
		verifier:       verifier,
		allowedOrigins: cfg.AllowedOrigins,
		adminUIDs:      cfg.AdminUIDs,
		rateLimitSalt:  cfg.RateLimitSalt,
		maxBodyBytes:   cfg.MaxBodyBytes,
	}
}

// SetDashboard attaches the raw-SQL dashboard backend.
func (s *Server) SetDashboard(d *database.Dashboard) {
	s.dashboard = d
}

// SetWebhookManager attaches the catch webhook manager.
func (s *Server) SetWebhookManager(wm *notifications.WebhookManager) {
	s.webhookMgr = wm
}

// SetBroker attaches the SSE broker.
func (s *Server) SetBroker(b *realtime.Broker) {
	s.broker = b
}

// SetHub attaches the websocket hub.
func (s *Server) SetHub(h *websocket.Hub) {
	s.hub = h
}

// SetRateLimiter attaches the advice-route rate limiter.
func (s *Server) SetRateLimiter(rl RateLimiter) {
	s.rateLimiter = rl
}

// SetAdviceGenerator attaches the LLM-backed generator. Nil means the advice
// route reports a missing AI key.
func (s *Server) SetAdviceGenerator(g AdviceGenerator) {
	s.generator = g
}

// SetRecommender attaches the server-side recommendation requester.
func (s *Server) SetRecommender(r WaterRecommender) {
	s.recommender = r
}

// Handler builds the full route tree with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Advice backend
	mux.HandleFunc("POST /api/recommendation", s.handleRecommendation)

	// Live events
	if s.broker != nil {
		mux.Handle("GET /api/events", s.broker)
	}
	if s.hub != nil {
		mux.Handle("GET /api/ws", s.hub)
	}

	// Waters
	mux.HandleFunc("GET /api/waters", s.handleListWaters)
	mux.HandleFunc("POST /api/waters", s.handleRegisterWater)
	mux.HandleFunc("GET /api/waters/{id}", s.handleGetWater)
	mux.HandleFunc("GET /api/waters/{id}/catches", s.handleListCatches)
	mux.HandleFunc("GET /api/waters/{id}/recommendation", s.handleWaterRecommendation)

	// Catches
	mux.HandleFunc("POST /api/catches", s.handleCreateCatch)
	mux.HandleFunc("GET /api/catches/mine", s.handleListMyCatches)

	// Lure catalog
	mux.HandleFunc("GET /api/lures", s.handleListLures)
	mux.HandleFunc("POST /api/lures", s.handleCreateLure)
	mux.HandleFunc("DELETE /api/lures/{id}", s.handleDeleteLure)

	// Admin routes
	mux.HandleFunc("GET /api/admin/waters/pending", s.handlePendingWaters)
	mux.HandleFunc("POST /api/admin/waters/{id}/status", s.handleReviewWater)
	mux.HandleFunc("GET /api/admin/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/admin/webhooks/refresh", s.handleRefreshWebhooks)

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) error {
	serverAddr := fmt.Sprintf("0.0.0.0:%s", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, s.Handler())
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-App-Check")
		}
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// originAllowed checks a browser origin against the configured allow-list.
// Requests without an Origin header (curl, server-to-server) bypass the check
// elsewhere; an unknown browser origin is rejected.
func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Handlers are distributed across multiple files:
// - handlers_recommendation.go: the hardened AI advice route
// - handlers_catches.go: catch logging and history
// - handlers_waters.go: water registration and listing
// - handlers_lures.go: the shared lure catalog
// - handlers_admin.go: moderation queue, dashboard, webhook cache
