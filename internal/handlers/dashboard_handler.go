package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"returns-service/internal/middleware"
	"returns-service/internal/services"
)

// DashboardHandler serves the merchant dashboard metrics
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetMetrics aggregates the merchant's requests, optionally for one store
// @Summary Get dashboard metrics
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param storeId query string false "Store ID"
// @Success 200 {object} models.DashboardMetrics
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	var storeID *uuid.UUID
	if raw := c.Query("storeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondBadRequest(c, msgInvalidID)
			return
		}
		storeID = &id
	}

	metrics, err := h.dashboard.GetMetrics(c.Request.Context(), middleware.GetUserID(c), storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"metrics": metrics})
}
