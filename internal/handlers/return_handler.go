package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"returns-service/internal/middleware"
	"returns-service/internal/models"
	"returns-service/internal/services"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// ReturnHandler serves the merchant's return request management
type ReturnHandler struct {
	returns  *services.ReturnService
	shipping *services.ShippingService
	export   *services.ExportService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returns *services.ReturnService, shipping *services.ShippingService, export *services.ExportService) *ReturnHandler {
	return &ReturnHandler{returns: returns, shipping: shipping, export: export}
}

// UpdateStatusRequest is the body of the status transition endpoint
type UpdateStatusRequest struct {
	Status models.ReturnStatus `json:"status" binding:"required"`
}

// ListStoreReturns lists a store's return requests
// @Summary List store return requests
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/stores/{id}/returns [get]
func (h *ReturnHandler) ListStoreReturns(c *gin.Context) {
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status, ok := parseStatusFilter(c)
	if !ok {
		return
	}

	requests, err := h.returns.ListByStore(c.Request.Context(), middleware.GetUserID(c), storeID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"returnRequests": requests})
}

// ListReturns lists return requests across all of the merchant's stores
// @Summary List return requests
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/returns [get]
func (h *ReturnHandler) ListReturns(c *gin.Context) {
	requests, err := h.returns.ListByOwner(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"returnRequests": requests})
}

// GetReturn returns a single request
// @Summary Get return request
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Return request ID"
// @Success 200 {object} models.ReturnRequest
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/returns/{id} [get]
func (h *ReturnHandler) GetReturn(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.returns.GetReturnRequest(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"returnRequest": request})
}

// UpdateStatus moves a request to a new status
// @Summary Update return request status
// @Tags Returns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Return request ID"
// @Param request body UpdateStatusRequest true "Target status"
// @Success 200 {object} models.ReturnRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/v1/returns/{id}/status [patch]
func (h *ReturnHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}
	h.transition(c, req.Status)
}

// ApproveReturn approves a pending request
// @Summary Approve return request
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Return request ID"
// @Success 200 {object} models.ReturnRequest
// @Failure 409 {object} models.ErrorResponse
// @Router /api/v1/returns/{id}/approve [post]
func (h *ReturnHandler) ApproveReturn(c *gin.Context) {
	h.transition(c, models.ReturnStatusApproved)
}

// RejectReturn rejects a pending request
// @Summary Reject return request
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Return request ID"
// @Success 200 {object} models.ReturnRequest
// @Failure 409 {object} models.ErrorResponse
// @Router /api/v1/returns/{id}/reject [post]
func (h *ReturnHandler) RejectReturn(c *gin.Context) {
	h.transition(c, models.ReturnStatusRejected)
}

// CompleteReturn completes an approved request
// @Summary Complete return request
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Return request ID"
// @Success 200 {object} models.ReturnRequest
// @Failure 409 {object} models.ErrorResponse
// @Router /api/v1/returns/{id}/complete [post]
func (h *ReturnHandler) CompleteReturn(c *gin.Context) {
	h.transition(c, models.ReturnStatusCompleted)
}

func (h *ReturnHandler) transition(c *gin.Context, target models.ReturnStatus) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.returns.UpdateStatus(c.Request.Context(), middleware.GetUserID(c), id, target)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"returnRequest": request})
}

// GetShippingState reports where the label workflow of a request stands
// @Summary Get shipping state
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Return request ID"
// @Success 200 {object} models.ShippingState
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/returns/{id}/shipping [get]
func (h *ReturnHandler) GetShippingState(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	state, err := h.shipping.GetShippingState(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"shipping": state})
}

// ExportReturns downloads the store's requests as a spreadsheet
// @Summary Export return requests
// @Tags Returns
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Param status query string false "Filter by status"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/stores/{id}/returns/export [get]
func (h *ReturnHandler) ExportReturns(c *gin.Context) {
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status, ok := parseStatusFilter(c)
	if !ok {
		return
	}

	data, err := h.export.ExportReturns(c.Request.Context(), middleware.GetUserID(c), storeID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("solicitacoes_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// DownloadSlip downloads the printable PDF slip of a request
// @Summary Download return slip
// @Tags Returns
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Return request ID"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/returns/{id}/slip [get]
func (h *ReturnHandler) DownloadSlip(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	data, request, err := h.export.ReturnSlip(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=troca_pedido_%s.pdf", request.OrderNumber))
	c.Data(http.StatusOK, pdfContentType, data)
}

// parseStatusFilter reads the optional status query. An empty value means no filter.
func parseStatusFilter(c *gin.Context) (models.ReturnStatus, bool) {
	status := models.ReturnStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		respondBadRequest(c, msgInvalidStatus)
		return "", false
	}
	return status, true
}
