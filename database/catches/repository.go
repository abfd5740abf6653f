package catches

import (
	"context"
	"errors"
	"fmt"

	"perchfinder/database"
	models "perchfinder/database/models_pkg"
)

// Plausibility bounds for client-supplied measurements.
const (
	MaxWeightG  = 30000
	MaxLengthCm = 200
)

var (
	ErrMissingWater    = errors.New("catch must reference a water")
	ErrInvalidCaughtAt = errors.New("catch timestamp is missing or invalid")
	ErrInvalidWeight   = errors.New("weight must be between 0 and 30000 g")
	ErrInvalidLength   = errors.New("length must be between 0 and 200 cm")
)

// Repository provides access to the catch history.
type Repository struct {
	db *database.Database
}

// NewRepository creates a catch repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// ListByWater returns the full catch history for one water body, oldest
// first, with the lure reference preloaded. The recommendation engine loads
// the complete set; no pagination.
func (r *Repository) ListByWater(ctx context.Context, waterID string) ([]models.Catch, error) {
	var catches []models.Catch
	err := r.db.DB().WithContext(ctx).
		Preload("Lure").
		Where("water_id = ?", waterID).
		Order("caught_at ASC").
		Find(&catches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list catches for water %s: %w", waterID, err)
	}
	return catches, nil
}

// ListByUser returns a user's catches, newest first, capped at limit.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Catch, error) {
	var catches []models.Catch
	err := r.db.DB().WithContext(ctx).
		Preload("Lure").
		Where("user_id = ?", userID).
		Order("caught_at DESC").
		Limit(limit).
		Find(&catches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list catches for user %s: %w", userID, err)
	}
	return catches, nil
}

// Save validates the catch invariants and inserts the record.
func (r *Repository) Save(ctx context.Context, c *models.Catch) error {
	if err := Validate(c); err != nil {
		return err
	}
	if err := r.db.DB().WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to save catch: %w", err)
	}
	return nil
}

// Validate checks the measurement and timestamp invariants. At least one of
// weight/length being present is a UI concern, not enforced here.
func Validate(c *models.Catch) error {
	if c.WaterID == "" {
		return ErrMissingWater
	}
	if c.CaughtAt.IsZero() {
		return ErrInvalidCaughtAt
	}
	if c.WeightG != nil && (*c.WeightG < 0 || *c.WeightG > MaxWeightG) {
		return ErrInvalidWeight
	}
	if c.LengthCm != nil && (*c.LengthCm < 0 || *c.LengthCm > MaxLengthCm) {
		return ErrInvalidLength
	}
	return nil
}
