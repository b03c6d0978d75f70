package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"returns-service/internal/cache"
	"returns-service/internal/events"
	"returns-service/internal/models"
	"returns-service/internal/repository"
	"returns-service/internal/services"
)

func newPortalRouter(stores *MockStoreRepository, returns *MockReturnRequestRepository) *gin.Engine {
	logger := testLogger()
	returnService := services.NewReturnService(stores, returns, cache.NoopCache{}, events.NoopPublisher{Logger: logger}, new(MockNotifier), 0, logger)
	lookupService := services.NewOrderLookupService(stores, nil, services.NewEligibilityEvaluator(nil), logger)
	handler := NewPortalHandler(lookupService, returnService)

	router := setupTestRouter("")
	router.POST("/portal/lookup", handler.LookupOrder)
	router.POST("/portal/returns", handler.CreateReturn)
	return router
}

func TestPortalHandler_LookupRequiresAllFields(t *testing.T) {
	router := newPortalRouter(new(MockStoreRepository), new(MockReturnRequestRepository))

	w := performRequest(router, http.MethodPost, "/portal/lookup", gin.H{"storeSlug": "loja", "orderNumber": "1234"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "storeSlug, orderNumber e customerEmail são obrigatórios", decodeBody(w)["error"])
}

func TestPortalHandler_LookupUnknownStore(t *testing.T) {
	stores := new(MockStoreRepository)
	stores.On("GetBySlug", mock.Anything, "nope").Return(nil, repository.ErrNotFound)
	router := newPortalRouter(stores, new(MockReturnRequestRepository))

	w := performRequest(router, http.MethodPost, "/portal/lookup", gin.H{
		"storeSlug": "nope", "orderNumber": "1234", "customerEmail": "maria@example.com",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Loja não encontrada", decodeBody(w)["error"])
}

func TestPortalHandler_CreateReturn(t *testing.T) {
	stores := new(MockStoreRepository)
	returns := new(MockReturnRequestRepository)
	store := testStore("owner-1")
	stores.On("GetByID", mock.Anything, store.ID).Return(store, nil)
	returns.On("Create", mock.Anything, mock.MatchedBy(func(r *models.ReturnRequest) bool {
		return r.StoreID == store.ID && r.TotalValue == 200 && *r.CreditValue == 210
	})).Return(nil)
	router := newPortalRouter(stores, returns)

	w := performRequest(router, http.MethodPost, "/portal/returns", gin.H{
		"storeId":        store.ID,
		"orderId":        "9001",
		"orderNumber":    "1234",
		"customerName":   "Maria Silva",
		"customerEmail":  "maria@example.com",
		"items":          []gin.H{{"id": 1, "name": "Camiseta", "price": 100, "quantity": 2}},
		"resolutionType": "store_credit",
		"reason":         "Tamanho errado",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(w)
	assert.Equal(t, true, body["success"])
	request := body["returnRequest"].(map[string]interface{})
	assert.Equal(t, "pending", request["status"])
	assert.Equal(t, 210.0, request["credit_value"])
	returns.AssertExpectations(t)
}

func TestPortalHandler_CreateReturnWithoutItems(t *testing.T) {
	router := newPortalRouter(new(MockStoreRepository), new(MockReturnRequestRepository))

	w := performRequest(router, http.MethodPost, "/portal/returns", gin.H{
		"storeId":        "5f1c3c1e-8a38-4b53-9f43-6a3f3f0e9d11",
		"orderId":        "9001",
		"orderNumber":    "1234",
		"customerName":   "Maria",
		"customerEmail":  "maria@example.com",
		"items":          []gin.H{},
		"resolutionType": "refund",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Selecione pelo menos um item", decodeBody(w)["error"])
}
