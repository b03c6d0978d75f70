package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"returns-service/internal/cache"
	"returns-service/internal/models"
	"returns-service/internal/repository"
)

// DashboardService aggregates a merchant's return requests into metrics
type DashboardService struct {
	stores   repository.StoreRepository
	returns  repository.ReturnRequestRepository
	cache    cache.QueryCache
	cacheTTL time.Duration
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(stores repository.StoreRepository, returns repository.ReturnRequestRepository, queryCache cache.QueryCache, cacheTTL time.Duration) *DashboardService {
	return &DashboardService{
		stores:   stores,
		returns:  returns,
		cache:    queryCache,
		cacheTTL: cacheTTL,
	}
}

// GetMetrics computes metrics for one store, or for all of the owner's stores when storeID is nil
func (s *DashboardService) GetMetrics(ctx context.Context, ownerID string, storeID *uuid.UUID) (*models.DashboardMetrics, error) {
	scope := ""
	if storeID != nil {
		if _, err := ownedStore(ctx, s.stores, ownerID, *storeID); err != nil {
			return nil, err
		}
		scope = storeID.String()
	}

	var metrics models.DashboardMetrics
	err := s.cache.GetOrLoad(ctx, cache.DashboardKey(ownerID, scope), &metrics, s.cacheTTL, func() (any, error) {
		var (
			requests []models.ReturnRequest
			err      error
		)
		if storeID != nil {
			requests, err = s.returns.ListByStore(ctx, *storeID, "")
		} else {
			requests, err = s.returns.ListByOwner(ctx, ownerID)
		}
		if err != nil {
			return nil, err
		}
		return ComputeMetrics(requests), nil
	})
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

// ComputeMetrics derives the dashboard figures. Money totals only count
// requests the merchant has approved or completed.
func ComputeMetrics(requests []models.ReturnRequest) models.DashboardMetrics {
	var (
		metrics     models.DashboardMetrics
		creditCount int
	)
	metrics.TotalRequests = len(requests)

	for _, r := range requests {
		if r.Status == models.ReturnStatusPending {
			metrics.PendingRequests++
		}
		if r.ResolutionType == models.ResolutionStoreCredit {
			creditCount++
		}

		settled := r.Status == models.ReturnStatusApproved || r.Status == models.ReturnStatusCompleted
		if !settled {
			continue
		}
		switch r.ResolutionType {
		case models.ResolutionRefund:
			metrics.TotalRefundedValue += r.TotalValue
		case models.ResolutionStoreCredit:
			metrics.RetainedRevenue += r.TotalValue
			if r.CreditValue != nil {
				metrics.BonusCost += *r.CreditValue - r.TotalValue
			}
		}
	}

	if metrics.TotalRequests > 0 {
		metrics.StoreCreditConversion = int(math.Round(float64(creditCount) / float64(metrics.TotalRequests) * 100))
	}
	metrics.TotalRefundedValue = Round2(metrics.TotalRefundedValue)
	metrics.RetainedRevenue = Round2(metrics.RetainedRevenue)
	metrics.BonusCost = Round2(metrics.BonusCost)
	return metrics
}
