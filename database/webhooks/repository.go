package webhooks

import (
	"context"
	"fmt"
	"time"

	"perchfinder/database"
	models "perchfinder/database/models_pkg"
)

// Repository provides access to catch webhook registrations and their
// delivery logs.
type Repository struct {
	db *database.Database
}

// NewRepository creates a webhook repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// ListActive returns all enabled webhook registrations.
func (r *Repository) ListActive(ctx context.Context) ([]models.CatchWebhook, error) {
	var hooks []models.CatchWebhook
	err := r.db.DB().WithContext(ctx).
		Where("is_active = ?", true).
		Find(&hooks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active webhooks: %w", err)
	}
	return hooks, nil
}

// SaveLog persists one delivery attempt outcome.
func (r *Repository) SaveLog(ctx context.Context, entry *models.CatchWebhookLog) error {
	if err := r.db.DB().WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save webhook log: %w", err)
	}
	return nil
}

// MarkTriggered stamps the registration's last delivery time.
func (r *Repository) MarkTriggered(ctx context.Context, webhookID int) error {
	err := r.db.DB().WithContext(ctx).
		Model(&models.CatchWebhook{}).
		Where("id = ?", webhookID).
		Update("last_triggered_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to mark webhook %d triggered: %w", webhookID, err)
	}
	return nil
}
