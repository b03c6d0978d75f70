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

// ReturnRequestRepository defines the interface for return request persistence
type ReturnRequestRepository interface {
	Create(ctx context.Context, request *models.ReturnRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, status models.ReturnStatus) ([]models.ReturnRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.ReturnRequest, error)
	// UpdateStatus moves the request from one status to another; ErrStatusConflict when the
	// stored status no longer matches from
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ReturnStatus) error
	SetShipment(ctx context.Context, id uuid.UUID, shippingID, provider string) error
	SetLabel(ctx context.Context, id uuid.UUID, labelURL, trackingCode *string, shippingCost float64) error
}

type returnRequestRepository struct {
	db *gorm.DB
}

// NewReturnRequestRepository creates a new return request repository
func NewReturnRequestRepository(db *gorm.DB) ReturnRequestRepository {
	return &returnRequestRepository{db: db}
}

func (r *returnRequestRepository) Create(ctx context.Context, request *models.ReturnRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("Store").Create(request).Error; err != nil {
		return fmt.Errorf("failed to create return request: %w", err)
	}
	return nil
}

// GetByID loads the request together with its store and store settings
func (r *returnRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	var request models.ReturnRequest
	err := r.db.WithContext(ctx).
		Preload("Store").
		Preload("Store.Settings").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get return request: %w", err)
	}
	return &request, nil
}

func (r *returnRequestRepository) ListByStore(ctx context.Context, storeID uuid.UUID, status models.ReturnStatus) ([]models.ReturnRequest, error) {
	var requests []models.ReturnRequest
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list return requests: %w", err)
	}
	return requests, nil
}

func (r *returnRequestRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.ReturnRequest, error) {
	var requests []models.ReturnRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN stores ON stores.id = return_requests.store_id").
		Where("stores.user_id = ?", ownerID).
		Order("return_requests.created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list return requests: %w", err)
	}
	return requests, nil
}

func (r *returnRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ReturnStatus) error {
	result := r.db.WithContext(ctx).Model(&models.ReturnRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update return request status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// SetShipment records the reserved shipment. A request that already holds a
// shipment is left untouched and ErrStatusConflict is returned.
func (r *returnRequestRepository) SetShipment(ctx context.Context, id uuid.UUID, shippingID, provider string) error {
	result := r.db.WithContext(ctx).Model(&models.ReturnRequest{}).
		Where("id = ? AND shipping_id IS NULL", id).
		Updates(map[string]interface{}{
			"shipping_id":       shippingID,
			"shipping_provider": provider,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save shipment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// SetLabel writes label URL, tracking code and cost in a single update.
// Nil label URL or tracking code are stored as NULL.
func (r *returnRequestRepository) SetLabel(ctx context.Context, id uuid.UUID, labelURL, trackingCode *string, shippingCost float64) error {
	result := r.db.WithContext(ctx).Model(&models.ReturnRequest{}).
		Where("id = ? AND shipping_id IS NOT NULL", id).
		Updates(map[string]interface{}{
			"label_url":     labelURL,
			"tracking_code": trackingCode,
			"shipping_cost": shippingCost,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save label: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
