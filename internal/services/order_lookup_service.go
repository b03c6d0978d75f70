package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"returns-service/internal/clients"
	"returns-service/internal/models"
	"returns-service/internal/repository"
)

// OrderLookupService finds a customer's order on the store's platform
type OrderLookupService struct {
	stores      repository.StoreRepository
	platform    clients.NuvemshopClient
	eligibility *EligibilityEvaluator
	logger      *logrus.Entry
}

// NewOrderLookupService creates a new OrderLookupService
func NewOrderLookupService(stores repository.StoreRepository, platform clients.NuvemshopClient, eligibility *EligibilityEvaluator, logger *logrus.Logger) *OrderLookupService {
	return &OrderLookupService{
		stores:      stores,
		platform:    platform,
		eligibility: eligibility,
		logger:      logger.WithField("service", "order_lookup"),
	}
}

// LookupOrder resolves the store by slug, finds the order matching number and
// email, and evaluates its return eligibility
func (s *OrderLookupService) LookupOrder(ctx context.Context, storeSlug, orderNumber, customerEmail string) (*models.OrderLookupResult, error) {
	store, err := s.stores.GetBySlug(ctx, storeSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	orderNumber = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(orderNumber), "#"))
	candidates, err := s.platform.SearchOrders(ctx, store.APIURL, store.APIKey, orderNumber)
	if err != nil {
		return nil, err
	}

	order := MatchOrder(candidates, orderNumber, customerEmail)
	if order == nil {
		s.logger.WithFields(logrus.Fields{
			"store":      storeSlug,
			"candidates": len(candidates),
		}).Info("No order matched number and email")
		return nil, ErrOrderNotFound
	}

	settings := models.EffectiveSettings(store.Settings)
	eligibility := s.eligibility.Evaluate(order.CreatedAt, settings.ReturnWindowDays)

	s.logger.WithFields(logrus.Fields{
		"store":        storeSlug,
		"order_number": order.Number,
		"eligible":     eligibility.IsEligible,
		"days":         eligibility.DaysSinceOrder,
	}).Info("Order found")

	return &models.OrderLookupResult{
		Order:       *order,
		Eligibility: eligibility,
		Settings:    settings,
		StoreID:     store.ID,
		StoreName:   store.Name,
	}, nil
}

// MatchOrder picks the candidate whose number equals orderNumber and whose
// customer email matches case-insensitively
func MatchOrder(candidates []models.PlatformOrder, orderNumber, customerEmail string) *models.PlatformOrder {
	email := strings.TrimSpace(customerEmail)
	for i := range candidates {
		if candidates[i].Number == orderNumber && strings.EqualFold(candidates[i].Customer.Email, email) {
			return &candidates[i]
		}
	}
	return nil
}
