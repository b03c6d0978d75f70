package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"returns-service/internal/services"
)

// PortalHandler serves the public customer return portal
type PortalHandler struct {
	lookup  *services.OrderLookupService
	returns *services.ReturnService
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(lookup *services.OrderLookupService, returns *services.ReturnService) *PortalHandler {
	return &PortalHandler{lookup: lookup, returns: returns}
}

// LookupOrderRequest identifies a customer's order on a store
type LookupOrderRequest struct {
	StoreSlug     string `json:"storeSlug" binding:"required"`
	OrderNumber   string `json:"orderNumber" binding:"required"`
	CustomerEmail string `json:"customerEmail" binding:"required"`
}

// LookupOrder finds a customer's order and checks the return window
// @Summary Look up an order for a return
// @Description Customer enters order number and e-mail to start a return
// @Tags Portal
// @Accept json
// @Produce json
// @Param request body LookupOrderRequest true "Order lookup"
// @Success 200 {object} models.OrderLookupResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/portal/lookup [post]
func (h *PortalHandler) LookupOrder(c *gin.Context) {
	var req LookupOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "storeSlug, orderNumber e customerEmail são obrigatórios")
		return
	}

	result, err := h.lookup.LookupOrder(c.Request.Context(), req.StoreSlug, req.OrderNumber, req.CustomerEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"order":       result.Order,
		"eligibility": result.Eligibility,
		"settings":    result.Settings,
		"storeId":     result.StoreID,
		"storeName":   result.StoreName,
	})
}

// CreateReturn submits a return request from the portal
// @Summary Create return request
// @Description Customer submits the selected items and resolution
// @Tags Portal
// @Accept json
// @Produce json
// @Param request body services.CreateReturnInput true "Return request"
// @Success 201 {object} models.ReturnRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/portal/returns [post]
func (h *PortalHandler) CreateReturn(c *gin.Context) {
	var input services.CreateReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	request, err := h.returns.CreateReturnRequest(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "returnRequest": request})
}
