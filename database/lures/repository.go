package lures

import (
	"context"
	"errors"
	"fmt"

	"perchfinder/database"
	models "perchfinder/database/models_pkg"
)

var ErrInvalidLure = errors.New("lure needs id, brand and name")

// Repository provides access to the shared lure catalog.
type Repository struct {
	db *database.Database
}

// NewRepository creates a lure catalog repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// List returns the full catalog ordered by brand then name.
func (r *Repository) List(ctx context.Context) ([]models.Lure, error) {
	var catalog []models.Lure
	err := r.db.DB().WithContext(ctx).
		Order("brand ASC, name ASC").
		Find(&catalog).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lures: %w", err)
	}
	return catalog, nil
}

// Create adds a catalog entry.
func (r *Repository) Create(ctx context.Context, l *models.Lure) error {
	if l.ID == "" || l.Brand == "" || l.Name == "" {
		return ErrInvalidLure
	}
	if err := r.db.DB().WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("failed to create lure: %w", err)
	}
	return nil
}

// Delete removes a catalog entry. Historic catches keep their lure reference
// rows via the foreign key; only the catalog listing shrinks.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.db.DB().WithContext(ctx).Delete(&models.Lure{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete lure %s: %w", id, err)
	}
	return nil
}
