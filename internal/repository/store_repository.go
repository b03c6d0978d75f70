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

// Repository-level errors, mapped to domain errors by the services
var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusConflict = errors.New("record status changed concurrently")
)

// StoreRepository defines the interface for store persistence
type StoreRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error)
	FindByPlatformID(ctx context.Context, platformStoreID, ownerID string) (*models.Store, error)
	CreateWithSettings(ctx context.Context, store *models.Store, settings *models.StoreSettings) error
	UpdateCredentials(ctx context.Context, id uuid.UUID, apiKey, apiURL, name string) error
	UpdateAddress(ctx context.Context, id uuid.UUID, address models.StoreAddress) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Preload("Settings").Where("id = ?", id).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &store, nil
}

func (r *storeRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Preload("Settings").Where("slug = ?", slug).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get store by slug: %w", err)
	}
	return &store, nil
}

func (r *storeRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Preload("Settings").
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

func (r *storeRepository) FindByPlatformID(ctx context.Context, platformStoreID, ownerID string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("nuvemshop_store_id = ? AND user_id = ?", platformStoreID, ownerID).
		First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find store: %w", err)
	}
	return &store, nil
}

// CreateWithSettings inserts the store and its settings row in one transaction
func (r *storeRepository) CreateWithSettings(ctx context.Context, store *models.Store, settings *models.StoreSettings) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if store.ID == uuid.Nil {
			store.ID = uuid.New()
		}
		if err := tx.Omit("Settings").Create(store).Error; err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}

		if settings.ID == uuid.Nil {
			settings.ID = uuid.New()
		}
		settings.StoreID = store.ID
		if err := tx.Create(settings).Error; err != nil {
			return fmt.Errorf("failed to create store settings: %w", err)
		}

		store.Settings = settings
		return nil
	})
}

func (r *storeRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, apiKey, apiURL, name string) error {
	result := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"api_key":    apiKey,
			"api_url":    apiURL,
			"name":       name,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update store credentials: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *storeRepository) UpdateAddress(ctx context.Context, id uuid.UUID, address models.StoreAddress) error {
	result := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"address_street":      address.Street,
			"address_number":      address.Number,
			"address_complement":  address.Complement,
			"address_district":    address.District,
			"address_city":        address.City,
			"address_state":       address.State,
			"address_postal_code": address.PostalCode,
			"phone":               address.Phone,
			"document":            address.Document,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update store address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the store; settings and return requests go with it
func (r *storeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&models.ReturnRequest{}).Error; err != nil {
			return fmt.Errorf("failed to delete return requests: %w", err)
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.StoreSettings{}).Error; err != nil {
			return fmt.Errorf("failed to delete store settings: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Store{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete store: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
