package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"perchfinder/database"
	models "perchfinder/database/models_pkg"
)

// Defaults for the AI recommendation cap.
const (
	DefaultLimit  = 10
	DefaultWindow = 12 * time.Hour

	functionName = "getWaterRecommendation"
)

// Key derives the salted, truncated counter key for one user. The raw uid
// never reaches the counter table.
func Key(salt, uid string) string {
	sum := sha256.Sum256([]byte(salt + ":" + functionName + ":" + uid))
	return hex.EncodeToString(sum[:8])
}

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration // remaining window time when denied, >= 1s
}

// Repository applies the per-user sliding-window cap against the persisted
// counter table.
type Repository struct {
	db     *database.Database
	limit  int
	window time.Duration
}

// NewRepository creates a rate-limit repository. Zero limit/window fall back
// to the defaults.
func NewRepository(db *database.Database, limit int, window time.Duration) *Repository {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Repository{db: db, limit: limit, window: window}
}

// Check atomically applies one request against the caller's window. The
// counter row is read with a row lock and conditionally written inside the
// same transaction, so two concurrent requests from one user cannot both
// pass the count check.
func (r *Repository) Check(ctx context.Context, key string) (Decision, error) {
	var decision Decision
	err := r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.RateLimitCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("counter_key = ?", key).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = models.RateLimitCounter{Key: key}
		} else if err != nil {
			return fmt.Errorf("failed to read rate limit counter: %w", err)
		}

		decision = advance(&rec, time.Now(), r.limit, r.window)
		if !decision.Allowed {
			return nil
		}
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to write rate limit counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	return decision, nil
}

// advance applies the sliding-window rules to a counter record in place:
// expired (or fresh) window resets to count 1, a full window denies with the
// remaining time, otherwise the count increments.
func advance(rec *models.RateLimitCounter, now time.Time, limit int, window time.Duration) Decision {
	nowMs := now.UnixMilli()
	windowMs := window.Milliseconds()

	if rec.WindowStartedAtMs == 0 || nowMs-rec.WindowStartedAtMs >= windowMs {
		rec.Count = 1
		rec.WindowStartedAtMs = nowMs
		return Decision{Allowed: true}
	}

	if rec.Count >= limit {
		remaining := time.Duration(rec.WindowStartedAtMs+windowMs-nowMs) * time.Millisecond
		if remaining < time.Second {
			remaining = time.Second
		}
		return Decision{Allowed: false, RetryAfter: remaining}
	}

	rec.Count++
	return Decision{Allowed: true}
}
