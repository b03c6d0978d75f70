package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"returns-service/internal/cache"
	"returns-service/internal/events"
	"returns-service/internal/models"
	"returns-service/internal/repository"
)

// ReturnService handles the return request lifecycle
type ReturnService struct {
	stores    repository.StoreRepository
	returns   repository.ReturnRequestRepository
	cache     cache.QueryCache
	publisher events.Publisher
	notifier  Notifier
	cacheTTL  time.Duration
	logger    *logrus.Entry
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	stores repository.StoreRepository,
	returns repository.ReturnRequestRepository,
	queryCache cache.QueryCache,
	publisher events.Publisher,
	notifier Notifier,
	cacheTTL time.Duration,
	logger *logrus.Logger,
) *ReturnService {
	return &ReturnService{
		stores:    stores,
		returns:   returns,
		cache:     queryCache,
		publisher: publisher,
		notifier:  notifier,
		cacheTTL:  cacheTTL,
		logger:    logger.WithField("service", "returns"),
	}
}

// CreateReturnInput is the portal submission of a return request
type CreateReturnInput struct {
	StoreID               uuid.UUID             `json:"storeId" binding:"required"`
	OrderID               string                `json:"orderId" binding:"required"`
	OrderNumber           string                `json:"orderNumber" binding:"required"`
	CustomerName          string                `json:"customerName"`
	CustomerEmail         string                `json:"customerEmail"`
	CustomerPhone         string                `json:"customerPhone"`
	CustomerPostalCode    string                `json:"customerPostalCode"`
	CustomerAddress       string                `json:"customerAddress"`
	CustomerAddressNumber string                `json:"customerAddressNumber"`
	CustomerDistrict      string                `json:"customerDistrict"`
	CustomerCity          string                `json:"customerCity"`
	CustomerState         string                `json:"customerState"`
	Items                 []models.ReturnItem   `json:"items"`
	ResolutionType        models.ResolutionType `json:"resolutionType"`
	Reason                string                `json:"reason"`
}

// ownedReturn is the cached form of a single request; Store is not serialized
type ownedReturn struct {
	Request   models.ReturnRequest `json:"request"`
	OwnerID   string               `json:"ownerId"`
	StoreName string               `json:"storeName"`
}

// CreateReturnRequest validates a portal submission and stores it as pending
func (s *ReturnService) CreateReturnRequest(ctx context.Context, input CreateReturnInput) (*models.ReturnRequest, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoItemsSelected
	}
	for _, item := range input.Items {
		if item.Quantity < 1 || item.Price < 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidItem, item.Name)
		}
	}
	if !input.ResolutionType.IsValid() {
		return nil, ErrInvalidResolution
	}
	if strings.TrimSpace(input.CustomerName) == "" || strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, ErrMissingCustomerDetails
	}

	store, err := s.stores.GetByID(ctx, input.StoreID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	settings := models.EffectiveSettings(store.Settings)
	switch input.ResolutionType {
	case models.ResolutionRefund:
		if !settings.AllowRefund {
			return nil, ErrResolutionNotAllowed
		}
	case models.ResolutionStoreCredit:
		if !settings.AllowStoreCredit {
			return nil, ErrResolutionNotAllowed
		}
	}
	if settings.RequiresReason && strings.TrimSpace(input.Reason) == "" {
		return nil, ErrReasonRequired
	}

	total := ReturnTotal(input.Items)
	request := &models.ReturnRequest{
		StoreID:               store.ID,
		OrderID:               input.OrderID,
		OrderNumber:           input.OrderNumber,
		CustomerName:          strings.TrimSpace(input.CustomerName),
		CustomerEmail:         strings.TrimSpace(input.CustomerEmail),
		CustomerPhone:         input.CustomerPhone,
		CustomerPostalCode:    input.CustomerPostalCode,
		CustomerAddress:       input.CustomerAddress,
		CustomerAddressNumber: input.CustomerAddressNumber,
		CustomerDistrict:      input.CustomerDistrict,
		CustomerCity:          input.CustomerCity,
		CustomerState:         strings.ToUpper(input.CustomerState),
		Items:                 input.Items,
		TotalValue:            total,
		CreditValue:           CreditValue(input.ResolutionType, total, settings.StoreCreditBonus),
		ResolutionType:        input.ResolutionType,
		Reason:                input.Reason,
		Status:                models.ReturnStatusPending,
	}

	if err := s.returns.Create(ctx, request); err != nil {
		return nil, err
	}

	s.invalidate(ctx, store.UserID, request)

	if err := s.publisher.PublishReturnCreated(ctx, request); err != nil {
		s.logger.WithError(err).WithField("return_request_id", request.ID).Warn("Failed to publish return created event")
	}

	s.logger.WithFields(logrus.Fields{
		"return_request_id": request.ID,
		"store_id":          store.ID,
		"order_number":      request.OrderNumber,
		"resolution":        request.ResolutionType,
	}).Info("Return request created")

	return request, nil
}

// GetReturnRequest returns a request owned by the caller
func (s *ReturnService) GetReturnRequest(ctx context.Context, ownerID string, id uuid.UUID) (*models.ReturnRequest, error) {
	owned, err := s.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	if owned.OwnerID != ownerID {
		return nil, ErrReturnRequestNotFound
	}
	return &owned.Request, nil
}

// ListByStore lists a store's requests, newest first, optionally filtered by status
func (s *ReturnService) ListByStore(ctx context.Context, ownerID string, storeID uuid.UUID, status models.ReturnStatus) ([]models.ReturnRequest, error) {
	if _, err := ownedStore(ctx, s.stores, ownerID, storeID); err != nil {
		return nil, err
	}

	var requests []models.ReturnRequest
	err := s.cache.GetOrLoad(ctx, cache.ReturnListKey(storeID, string(status)), &requests, s.cacheTTL, func() (any, error) {
		return s.returns.ListByStore(ctx, storeID, status)
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// ListByOwner lists the requests across all of the caller's stores
func (s *ReturnService) ListByOwner(ctx context.Context, ownerID string) ([]models.ReturnRequest, error) {
	var requests []models.ReturnRequest
	err := s.cache.GetOrLoad(ctx, cache.OwnerReturnListKey(ownerID), &requests, s.cacheTTL, func() (any, error) {
		return s.returns.ListByOwner(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// NotificationFor builds the status email of a request owned by the caller from
// the persisted record
func (s *ReturnService) NotificationFor(ctx context.Context, ownerID string, id uuid.UUID) (*ReturnNotification, error) {
	owned, err := s.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	if owned.OwnerID != ownerID {
		return nil, ErrReturnRequestNotFound
	}

	request := owned.Request
	return &ReturnNotification{
		ReturnRequestID: request.ID.String(),
		CustomerEmail:   request.CustomerEmail,
		CustomerName:    request.CustomerName,
		OrderNumber:     request.OrderNumber,
		Status:          request.Status,
		StoreName:       owned.StoreName,
	}, nil
}

// UpdateStatus moves a request through the lifecycle and notifies the customer.
// The result never depends on the notification outcome.
func (s *ReturnService) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, target models.ReturnStatus) (*models.ReturnRequest, error) {
	request, err := s.returns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReturnRequestNotFound
		}
		return nil, err
	}
	if request.Store == nil || request.Store.UserID != ownerID {
		return nil, ErrReturnRequestNotFound
	}

	from := request.Status
	if err := models.ValidateReturnTransition(from, target); err != nil {
		return nil, err
	}

	if err := s.returns.UpdateStatus(ctx, id, from, target); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}

	request.Status = target
	request.UpdatedAt = time.Now()

	s.invalidate(ctx, ownerID, request)

	if err := s.publisher.PublishStatusChanged(ctx, request, from, target, ownerID); err != nil {
		s.logger.WithError(err).WithField("return_request_id", id).Warn("Failed to publish status changed event")
	}

	if models.IsNotifiableReturnStatus(target) {
		s.notifier.Dispatch(ReturnNotification{
			ReturnRequestID: request.ID.String(),
			CustomerEmail:   request.CustomerEmail,
			CustomerName:    request.CustomerName,
			OrderNumber:     request.OrderNumber,
			Status:          target,
			StoreName:       request.Store.Name,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"return_request_id": id,
		"from":              from,
		"to":                target,
	}).Info("Return request status updated")

	return request, nil
}

func (s *ReturnService) loadOwned(ctx context.Context, id uuid.UUID) (*ownedReturn, error) {
	var owned ownedReturn
	err := s.cache.GetOrLoad(ctx, cache.ReturnRequestKey(id), &owned, s.cacheTTL, func() (any, error) {
		request, err := s.returns.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result := ownedReturn{Request: *request}
		if request.Store != nil {
			result.OwnerID = request.Store.UserID
			result.StoreName = request.Store.Name
		}
		return result, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReturnRequestNotFound
		}
		return nil, err
	}
	return &owned, nil
}

// invalidate drops every cached view that includes the request
func (s *ReturnService) invalidate(ctx context.Context, ownerID string, request *models.ReturnRequest) {
	invalidateReturnViews(ctx, s.cache, ownerID, request)
}

func invalidateReturnViews(ctx context.Context, queryCache cache.QueryCache, ownerID string, request *models.ReturnRequest) {
	queryCache.Invalidate(ctx,
		cache.ReturnRequestKey(request.ID),
		cache.OwnerReturnListKey(ownerID),
	)
	queryCache.InvalidatePrefix(ctx, cache.ReturnListPrefix(request.StoreID))
	queryCache.InvalidatePrefix(ctx, cache.DashboardPrefix(ownerID))
}
