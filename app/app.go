package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"perchfinder/advice"
	"perchfinder/api"
	"perchfinder/auth"
	"perchfinder/cache"
	"perchfinder/config"
	"perchfinder/database"
	"perchfinder/database/catches"
	"perchfinder/database/lures"
	"perchfinder/database/ratelimit"
	"perchfinder/database/waters"
	"perchfinder/database/webhooks"
	"perchfinder/llm"
	"perchfinder/notifications"
	"perchfinder/realtime"
	"perchfinder/weather"
	"perchfinder/websocket"
)

// App represents the main application
type App struct {
	config         *config.Config
	db             *database.Database
	dashboard      *database.Dashboard
	redis          *cache.RedisClient
	webhookManager *notifications.WebhookManager
	broker         *realtime.Broker
	hub            *websocket.Hub
	recommender    *Recommender
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{
		config: cfg,
	}
}

// serviceTokenSource mints the bearer token the in-process requester uses
// against the advice endpoint.
type serviceTokenSource struct {
	signer *auth.Signer
}

func (s *serviceTokenSource) IDToken() (string, error) {
	return s.signer.Sign()
}

// apiRecommender adapts the requester to the API surface. Expected outcomes
// (no catches yet, advice-backend errors with a user-facing message) are
// folded into the view instead of surfacing as handler failures.
type apiRecommender struct {
	r *Recommender
}

func (a apiRecommender) InvalidateWater(ctx context.Context, waterID string) {
	a.r.InvalidateWater(ctx, waterID)
}

func (a apiRecommender) RequestRecommendation(ctx context.Context, waterID string) (api.RecommendationView, error) {
	res, err := a.r.RequestRecommendation(ctx, waterID)
	view := api.RecommendationView{
		State:          string(res.State),
		Recommendation: res.Recommendation,
		Message:        res.Message,
		FromCache:      res.FromCache,
	}
	if errors.Is(err, ErrNoCatches) {
		view.Message = "Inga fångster loggade ännu."
		return view, nil
	}
	if err != nil && res.State == StateError {
		return view, nil
	}
	return view, err
}

// Start starts the application
func (a *App) Start() error {
	// 1. Database Connection
	fmt.Println("🗄️  Connecting to database...")

	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	if err := a.db.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// Dashboard runs over a separate raw-SQL connection; the API degrades
	// without it.
	dashboard, err := database.NewDashboard(
		a.config.DatabaseHost,
		a.config.DatabasePort,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
		a.config.DatabaseName,
	)
	if err != nil {
		log.Printf("⚠️  Dashboard connection failed, admin overview disabled: %v", err)
	} else {
		a.dashboard = dashboard
	}

	// 2. Redis Connection
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)

	if redisClient == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	} else {
		a.redis = redisClient
	}

	// 3. Repositories
	watersRepo := waters.NewRepository(a.db)
	catchesRepo := catches.NewRepository(a.db)
	luresRepo := lures.NewRepository(a.db)
	webhooksRepo := webhooks.NewRepository(a.db)
	rateLimiter := ratelimit.NewRepository(a.db, a.config.Advice.RateLimit, a.config.Advice.RateLimitWindow)

	// 4. Webhook Manager (with Redis)
	a.webhookManager = notifications.NewWebhookManager(webhooksRepo, a.redis)

	// 5. Realtime Broker + Websocket Hub
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	a.hub = websocket.NewHub(func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range a.config.Advice.AllowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	})
	go a.hub.Run()

	// 6. LLM client if enabled
	var llmClient *llm.Client
	if a.config.LLM.Enabled {
		llmClient = llm.NewClient(a.config.LLM.Endpoint, a.config.LLM.APIKey, a.config.LLM.Model)
		log.Printf("✅ AI recommendations ENABLED (Model: %s)", a.config.LLM.Model)
	} else {
		log.Println("ℹ️  AI recommendations DISABLED")
	}

	// 7. Auth
	verifier := auth.NewVerifier(a.config.Auth.TokenSecret, a.config.Auth.Issuer)
	signer := auth.NewSigner(
		a.config.Auth.TokenSecret,
		a.config.Auth.Issuer,
		a.config.Auth.ServiceUID,
		a.config.Auth.ServiceEmail,
		time.Hour,
	)

	// 8. Recommendation flow
	weatherClient := weather.NewClient(a.config.Weather.Endpoint, a.config.Weather.Timeout)
	adviceClient := advice.NewClient(a.config.Advice.Endpoint, 60*time.Second)
	var recoKV cache.KV
	if a.redis != nil {
		recoKV = a.redis
	}
	recoCache := cache.NewRecoCache(recoKV, a.config.Advice.CacheTTL)

	a.recommender = NewRecommender(
		catchesRepo,
		watersRepo,
		weatherClient,
		adviceClient,
		&serviceTokenSource{signer: signer},
		recoCache,
		a.config.Auth.AppCheckToken,
	)

	// 9. API Server
	apiServer := api.NewServer(watersRepo, catchesRepo, luresRepo, verifier, api.ServerConfig{
		AllowedOrigins: a.config.Advice.AllowedOrigins,
		AdminUIDs:      a.config.Auth.AdminUIDs,
		RateLimitSalt:  a.config.Advice.RateLimitSalt,
		MaxBodyBytes:   a.config.Advice.MaxBodyBytes,
	})
	apiServer.SetDashboard(a.dashboard)
	apiServer.SetWebhookManager(a.webhookManager)
	apiServer.SetBroker(a.broker)
	apiServer.SetHub(a.hub)
	apiServer.SetRateLimiter(rateLimiter)
	apiServer.SetRecommender(apiRecommender{r: a.recommender})
	if llmClient != nil {
		apiServer.SetAdviceGenerator(llmClient)
	}

	go func() {
		if err := apiServer.Start(a.config.APIPort); err != nil {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	// 10. Wait for interrupt and perform graceful shutdown
	return a.gracefulShutdown()
}

// gracefulShutdown handles graceful shutdown with timeout
func (a *App) gracefulShutdown() error {
	// Setup signal handling
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	// Wait for interrupt signal
	<-interrupt
	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	shutdownComplete := make(chan struct{})
	go func() {
		// Close dashboard connection
		if a.dashboard != nil {
			if err := a.dashboard.Close(); err != nil {
				log.Printf("Error closing dashboard: %v", err)
			}
		}

		// Close database connection
		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			} else {
				fmt.Println("✅ Database connection closed")
			}
		}

		// Close Redis connection
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Printf("Error closing redis: %v", err)
			} else {
				fmt.Println("✅ Redis connection closed")
			}
		}

		close(shutdownComplete)
	}()

	// Wait for shutdown to complete or timeout
	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		fmt.Println("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}
