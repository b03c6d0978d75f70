package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"returns-service/internal/models"
)

// SettingsRepository defines the interface for store settings persistence
type SettingsRepository interface {
	// GetByStoreID returns nil, nil when the store has no settings row
	GetByStoreID(ctx context.Context, storeID uuid.UUID) (*models.StoreSettings, error)
	Save(ctx context.Context, settings *models.StoreSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByStoreID(ctx context.Context, storeID uuid.UUID) (*models.StoreSettings, error) {
	var settings models.StoreSettings
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get store settings: %w", err)
	}
	return &settings, nil
}

// Save inserts the settings when they have no ID yet, otherwise updates every column
func (r *settingsRepository) Save(ctx context.Context, settings *models.StoreSettings) error {
	settings.UpdatedAt = time.Now()
	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
		if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
			return fmt.Errorf("failed to create store settings: %w", err)
		}
		return nil
	}
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to update store settings: %w", err)
	}
	return nil
}
