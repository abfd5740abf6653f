package waters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"perchfinder/database"
	models "perchfinder/database/models_pkg"
)

var (
	ErrNotFound    = errors.New("water not found")
	ErrInvalidName = errors.New("water name must be 1-120 characters")
)

// Repository provides access to registered waters and the moderation queue.
type Repository struct {
	db *database.Database
}

// NewRepository creates a water repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Get returns one water by id.
func (r *Repository) Get(ctx context.Context, id string) (*models.Water, error) {
	var water models.Water
	err := r.db.DB().WithContext(ctx).First(&water, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load water %s: %w", id, err)
	}
	return &water, nil
}

// Register submits a new water in PENDING state.
func (r *Repository) Register(ctx context.Context, w *models.Water) error {
	if len(w.Name) == 0 || len(w.Name) > 120 {
		return ErrInvalidName
	}
	w.Status = models.WaterStatusPending
	if err := r.db.DB().WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("failed to register water: %w", err)
	}
	return nil
}

// ListApproved returns the waters visible to regular users.
func (r *Repository) ListApproved(ctx context.Context) ([]models.Water, error) {
	var waters []models.Water
	err := r.db.DB().WithContext(ctx).
		Where("status = ?", models.WaterStatusApproved).
		Order("name ASC").
		Find(&waters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list approved waters: %w", err)
	}
	return waters, nil
}

// ListPending returns the moderation queue, oldest submission first.
func (r *Repository) ListPending(ctx context.Context) ([]models.Water, error) {
	var waters []models.Water
	err := r.db.DB().WithContext(ctx).
		Where("status = ?", models.WaterStatusPending).
		Order("created_at ASC").
		Find(&waters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending waters: %w", err)
	}
	return waters, nil
}

// SetStatus resolves a moderation decision for a pending water.
func (r *Repository) SetStatus(ctx context.Context, id, status, reviewerUID string) error {
	now := time.Now()
	result := r.db.DB().WithContext(ctx).
		Model(&models.Water{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerUID,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update water %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
