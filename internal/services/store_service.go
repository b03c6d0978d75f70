package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"returns-service/internal/cache"
	"returns-service/internal/clients"
	"returns-service/internal/models"
	"returns-service/internal/repository"
)

// StoreService handles merchant store management
type StoreService struct {
	stores   repository.StoreRepository
	settings repository.SettingsRepository
	platform clients.NuvemshopClient
	cache    cache.QueryCache
	cacheTTL time.Duration
	logger   *logrus.Entry
}

// NewStoreService creates a new StoreService
func NewStoreService(
	stores repository.StoreRepository,
	settings repository.SettingsRepository,
	platform clients.NuvemshopClient,
	queryCache cache.QueryCache,
	cacheTTL time.Duration,
	logger *logrus.Logger,
) *StoreService {
	return &StoreService{
		stores:   stores,
		settings: settings,
		platform: platform,
		cache:    queryCache,
		cacheTTL: cacheTTL,
		logger:   logger.WithField("service", "stores"),
	}
}

// ownedStore loads a store and hides it from callers that do not own it
func ownedStore(ctx context.Context, stores repository.StoreRepository, ownerID string, storeID uuid.UUID) (*models.Store, error) {
	store, err := stores.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if store.UserID != ownerID {
		return nil, ErrStoreNotFound
	}
	return store, nil
}

// ListStores returns the caller's stores with their settings
func (s *StoreService) ListStores(ctx context.Context, ownerID string) ([]models.Store, error) {
	var stores []models.Store
	err := s.cache.GetOrLoad(ctx, cache.StoreListKey(ownerID), &stores, s.cacheTTL, func() (any, error) {
		return s.stores.ListByOwner(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// GetSettings returns the stored settings, or the defaults when none exist
func (s *StoreService) GetSettings(ctx context.Context, ownerID string, storeID uuid.UUID) (*models.StoreSettings, error) {
	if _, err := ownedStore(ctx, s.stores, ownerID, storeID); err != nil {
		return nil, err
	}

	var settings models.StoreSettings
	err := s.cache.GetOrLoad(ctx, cache.SettingsKey(storeID), &settings, s.cacheTTL, func() (any, error) {
		stored, err := s.settings.GetByStoreID(ctx, storeID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return models.DefaultStoreSettings(storeID), nil
		}
		return stored, nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpsertSettings applies a patch to the store's settings, creating them from defaults when absent
func (s *StoreService) UpsertSettings(ctx context.Context, ownerID string, storeID uuid.UUID, patch models.StoreSettingsPatch) (*models.StoreSettings, error) {
	if _, err := ownedStore(ctx, s.stores, ownerID, storeID); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = models.DefaultStoreSettings(storeID)
	}

	patch.Apply(settings)
	if !settings.IsValid() {
		return nil, ErrInvalidSettings
	}

	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.SettingsKey(storeID), cache.StoreListKey(ownerID))

	s.logger.WithField("store_id", storeID).Info("Store settings saved")
	return settings, nil
}

// UpdateAddress replaces the store's reverse-logistics address
func (s *StoreService) UpdateAddress(ctx context.Context, ownerID string, storeID uuid.UUID, address models.StoreAddress) (*models.Store, error) {
	if _, err := ownedStore(ctx, s.stores, ownerID, storeID); err != nil {
		return nil, err
	}

	if err := s.stores.UpdateAddress(ctx, storeID, address); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.StoreListKey(ownerID))

	return s.stores.GetByID(ctx, storeID)
}

// DeleteStore removes the store with its settings and requests
func (s *StoreService) DeleteStore(ctx context.Context, ownerID string, storeID uuid.UUID) error {
	if _, err := ownedStore(ctx, s.stores, ownerID, storeID); err != nil {
		return err
	}

	if err := s.stores.Delete(ctx, storeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStoreNotFound
		}
		return err
	}

	s.cache.Invalidate(ctx,
		cache.StoreListKey(ownerID),
		cache.SettingsKey(storeID),
		cache.OwnerReturnListKey(ownerID),
	)
	s.cache.InvalidatePrefix(ctx, cache.ReturnListPrefix(storeID))
	s.cache.InvalidatePrefix(ctx, cache.DashboardPrefix(ownerID))

	s.logger.WithField("store_id", storeID).Info("Store deleted")
	return nil
}

// ValidateCredentials checks a key/URL pair against the platform
func (s *StoreService) ValidateCredentials(ctx context.Context, apiKey, apiURL string) (*models.PlatformStore, error) {
	return s.platform.GetStore(ctx, apiURL, apiKey)
}

// ListOrders lists recent platform orders for raw credentials
func (s *StoreService) ListOrders(ctx context.Context, apiKey, apiURL string) ([]models.OrderSummary, error) {
	return s.platform.ListOrders(ctx, apiURL, apiKey)
}

// ListStoreOrders lists recent platform orders of one of the caller's stores
func (s *StoreService) ListStoreOrders(ctx context.Context, ownerID string, storeID uuid.UUID) ([]models.OrderSummary, error) {
	store, err := ownedStore(ctx, s.stores, ownerID, storeID)
	if err != nil {
		return nil, err
	}
	return s.platform.ListOrders(ctx, store.APIURL, store.APIKey)
}
