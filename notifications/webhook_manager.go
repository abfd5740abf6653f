package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"perchfinder/cache"
	"perchfinder/database"
	models "perchfinder/database/models_pkg"
	"perchfinder/database/webhooks"
	"perchfinder/helpers"
)

// WebhookManager handles webhook notifications for catch events
type WebhookManager struct {
	repo   *webhooks.Repository
	redis  *cache.RedisClient
	client *http.Client
}

// WebhookPayload represents the JSON payload sent to webhooks
type WebhookPayload struct {
	CatchID   int64     `json:"CatchID"`
	WaterID   string    `json:"WaterID"`
	WaterName string    `json:"WaterName"`
	CaughtAt  time.Time `json:"CaughtAt"`
	WeightG   *float64  `json:"WeightG,omitempty"`
	LengthCm  *float64  `json:"LengthCm,omitempty"`
	UserName  *string   `json:"UserName,omitempty"`
	Message   string    `json:"Message"`
}

// NewWebhookManager creates a new webhook manager
func NewWebhookManager(repo *webhooks.Repository, redis *cache.RedisClient) *WebhookManager {
	return &WebhookManager{
		repo:  repo,
		redis: redis,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendCatch processes a saved catch and sends it to matching webhooks
func (wm *WebhookManager) SendCatch(c *database.Catch, waterName string) {
	// 1. Get all active webhooks
	hooks, err := wm.getActiveWebhooks()
	if err != nil {
		log.Printf("⚠️  Failed to load webhooks: %v", err)
		return
	}

	if len(hooks) == 0 {
		return
	}

	// 2. Prepare payload
	payload := wm.CreatePayload(c, waterName)
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Failed to marshal webhook payload: %v", err)
		return
	}

	// 3. Process each webhook (async)
	for _, hook := range hooks {
		if wm.shouldSend(hook, c) {
			go wm.deliverWebhook(hook, c.ID, payloadBytes)
		}
	}
}

func (wm *WebhookManager) getActiveWebhooks() ([]models.CatchWebhook, error) {
	// Try cache first
	cacheKey := "active_webhooks"
	if wm.redis != nil {
		var cached []models.CatchWebhook
		if err := wm.redis.Get(context.Background(), cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	// Fetch from DB
	hooks, err := wm.repo.ListActive(context.Background())
	if err != nil {
		return nil, err
	}

	// Update cache (expire 1 hour)
	if wm.redis != nil {
		_ = wm.redis.Set(context.Background(), cacheKey, hooks, 1*time.Hour)
	}

	return hooks, nil
}

// CreatePayload generates the webhook payload from a saved catch
func (wm *WebhookManager) CreatePayload(c *database.Catch, waterName string) WebhookPayload {
	// Format readable message
	// Example: "🎣 NY FÅNGST! Brunnsviken | 1,25 kg | 42 cm | av Anna"
	parts := []string{fmt.Sprintf("🎣 NY FÅNGST! %s", waterName)}
	if c.WeightG != nil {
		parts = append(parts, helpers.FormatWeight(*c.WeightG))
	}
	if c.LengthCm != nil {
		parts = append(parts, helpers.FormatLength(*c.LengthCm))
	}
	if c.UserName != nil && *c.UserName != "" {
		parts = append(parts, "av "+*c.UserName)
	}
	message := strings.Join(parts, " | ")

	return WebhookPayload{
		CatchID:   c.ID,
		WaterID:   c.WaterID,
		WaterName: waterName,
		CaughtAt:  c.CaughtAt,
		WeightG:   c.WeightG,
		LengthCm:  c.LengthCm,
		UserName:  c.UserName,
		Message:   message,
	}
}

func (wm *WebhookManager) shouldSend(hook models.CatchWebhook, c *database.Catch) bool {
	// Check water filter
	if hook.WaterIDs != "" && hook.WaterIDs != "null" && hook.WaterIDs != "[]" {
		// Lenient check: matches if the water id is present in the string (JSON or CSV)
		if !strings.Contains(hook.WaterIDs, c.WaterID) {
			return false
		}
	}

	// Check weight threshold
	if hook.MinWeightG != nil {
		if c.WeightG == nil || *c.WeightG < *hook.MinWeightG {
			return false
		}
	}

	return true
}

func (wm *WebhookManager) deliverWebhook(hook models.CatchWebhook, catchID int64, payload []byte) {
	maxRetries := hook.RetryCount
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var resp *http.Response
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, _ := http.NewRequest(hook.Method, hook.URL, bytes.NewBuffer(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "Perchfinder-Catch-Alert/1.0")

		log.Printf("🔹 Sending webhook to %s (Attempt %d/%d)", hook.URL, attempt, maxRetries)

		// Auth headers
		if hook.AuthType == "BEARER" {
			req.Header.Set("Authorization", "Bearer "+hook.AuthValue)
		} else if hook.AuthHeader != "" {
			req.Header.Set(hook.AuthHeader, hook.AuthValue)
		}

		resp, err = wm.client.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			// Success
			wm.logDelivery(hook.ID, catchID, "SUCCESS", resp.StatusCode, "", attempt)
			if resp.Body != nil {
				resp.Body.Close()
			}
			if markErr := wm.repo.MarkTriggered(context.Background(), hook.ID); markErr != nil {
				log.Printf("⚠️  %v", markErr)
			}
			return
		}

		// Wait before retry
		if attempt < maxRetries {
			time.Sleep(time.Duration(hook.RetryDelaySeconds) * time.Second)
		}
	}

	// Failed
	status := "FAILED"
	errMsg := ""
	statusCode := 0
	if err != nil {
		errMsg = err.Error()
	} else if resp != nil {
		statusCode = resp.StatusCode
		resp.Body.Close()
	}

	wm.logDelivery(hook.ID, catchID, status, statusCode, errMsg, maxRetries)
}

func (wm *WebhookManager) logDelivery(webhookID int, catchID int64, status string, code int, err string, attempt int) {
	logEntry := &models.CatchWebhookLog{
		WebhookID:    webhookID,
		CatchID:      &catchID,
		TriggeredAt:  time.Now(),
		Status:       status,
		RetryAttempt: attempt,
	}

	if code != 0 {
		logEntry.HTTPStatusCode = &code
	}
	if err != "" {
		logEntry.ErrorMessage = err
	}

	if dbErr := wm.repo.SaveLog(context.Background(), logEntry); dbErr != nil {
		log.Printf("⚠️  Failed to save webhook log: %v", dbErr)
	}
}

// RefreshCache reloads webhook configurations
func (wm *WebhookManager) RefreshCache() {
	if wm.redis != nil {
		_ = wm.redis.Delete(context.Background(), "active_webhooks")
		log.Println("🔄 Webhook cache invalidated")
	}
}
