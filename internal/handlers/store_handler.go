package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"returns-service/internal/middleware"
	"returns-service/internal/models"
	"returns-service/internal/services"
)

// StoreHandler serves merchant store management
type StoreHandler struct {
	stores *services.StoreService
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(stores *services.StoreService) *StoreHandler {
	return &StoreHandler{stores: stores}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, msgInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// ListStores lists the merchant's connected stores
// @Summary List stores
// @Tags Stores
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/stores [get]
func (h *StoreHandler) ListStores(c *gin.Context) {
	stores, err := h.stores.ListStores(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"stores": stores})
}

// GetSettings returns the store's return policy
// @Summary Get store settings
// @Tags Stores
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Success 200 {object} models.StoreSettings
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/stores/{id}/settings [get]
func (h *StoreHandler) GetSettings(c *gin.Context) {
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	settings, err := h.stores.GetSettings(c.Request.Context(), middleware.GetUserID(c), storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"settings": settings})
}

// UpdateSettings upserts the store's return policy
// @Summary Update store settings
// @Tags Stores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Param settings body models.StoreSettingsPatch true "Settings patch"
// @Success 200 {object} models.StoreSettings
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/stores/{id}/settings [put]
func (h *StoreHandler) UpdateSettings(c *gin.Context) {
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var patch models.StoreSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	settings, err := h.stores.UpsertSettings(c.Request.Context(), middleware.GetUserID(c), storeID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"settings": settings})
}

// UpdateAddress sets the store's sender address used on labels
// @Summary Update store address
// @Tags Stores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Param address body models.StoreAddress true "Address"
// @Success 200 {object} models.Store
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/stores/{id}/address [put]
func (h *StoreHandler) UpdateAddress(c *gin.Context) {
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var address models.StoreAddress
	if err := c.ShouldBindJSON(&address); err != nil {
		respondBadRequest(c, "Preencha todos os campos obrigatórios do endereço")
		return
	}

	store, err := h.stores.UpdateAddress(c.Request.Context(), middleware.GetUserID(c), storeID, address)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"store": store})
}

// DeleteStore disconnects a store and removes its data
// @Summary Delete store
// @Tags Stores
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/stores/{id} [delete]
func (h *StoreHandler) DeleteStore(c *gin.Context) {
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.stores.DeleteStore(c.Request.Context(), middleware.GetUserID(c), storeID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{})
}

// ListOrders lists the store's recent platform orders
// @Summary List store orders
// @Tags Stores
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/v1/stores/{id}/orders [get]
func (h *StoreHandler) ListOrders(c *gin.Context) {
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	orders, err := h.stores.ListStoreOrders(c.Request.Context(), middleware.GetUserID(c), storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"orders": orders})
}
