package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"returns-service/internal/middleware"
	"returns-service/internal/models"
	"returns-service/internal/repository"
	"returns-service/internal/services"
)

// MockStoreRepository is a mock implementation of StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

var _ repository.StoreRepository = (*MockStoreRepository)(nil)

func (m *MockStoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByPlatformID(ctx context.Context, platformStoreID, ownerID string) (*models.Store, error) {
	args := m.Called(ctx, platformStoreID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) CreateWithSettings(ctx context.Context, store *models.Store, settings *models.StoreSettings) error {
	return m.Called(ctx, store, settings).Error(0)
}

func (m *MockStoreRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, apiKey, apiURL, name string) error {
	return m.Called(ctx, id, apiKey, apiURL, name).Error(0)
}

func (m *MockStoreRepository) UpdateAddress(ctx context.Context, id uuid.UUID, address models.StoreAddress) error {
	return m.Called(ctx, id, address).Error(0)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockReturnRequestRepository is a mock implementation of ReturnRequestRepository
type MockReturnRequestRepository struct {
	mock.Mock
}

var _ repository.ReturnRequestRepository = (*MockReturnRequestRepository)(nil)

func (m *MockReturnRequestRepository) Create(ctx context.Context, request *models.ReturnRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *MockReturnRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReturnRequest), args.Error(1)
}

func (m *MockReturnRequestRepository) ListByStore(ctx context.Context, storeID uuid.UUID, status models.ReturnStatus) ([]models.ReturnRequest, error) {
	args := m.Called(ctx, storeID, status)
	return args.Get(0).([]models.ReturnRequest), args.Error(1)
}

func (m *MockReturnRequestRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.ReturnRequest, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.ReturnRequest), args.Error(1)
}

func (m *MockReturnRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ReturnStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockReturnRequestRepository) SetShipment(ctx context.Context, id uuid.UUID, shippingID, provider string) error {
	return m.Called(ctx, id, shippingID, provider).Error(0)
}

func (m *MockReturnRequestRepository) SetLabel(ctx context.Context, id uuid.UUID, labelURL, trackingCode *string, shippingCost float64) error {
	return m.Called(ctx, id, labelURL, trackingCode, shippingCost).Error(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

var _ services.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Dispatch(notification services.ReturnNotification) bool {
	return m.Called(notification).Bool(0)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// setupTestRouter creates a router that authenticates every request as ownerID
func setupTestRouter(ownerID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if ownerID != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserID, ownerID)
			c.Next()
		})
	}
	return router
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func testStore(ownerID string) *models.Store {
	return &models.Store{
		ID:     uuid.New(),
		UserID: ownerID,
		Name:   "Loja Teste",
		Slug:   "loja-teste",
	}
}

func testReturnRequest(store *models.Store, status models.ReturnStatus) *models.ReturnRequest {
	return &models.ReturnRequest{
		ID:             uuid.New(),
		StoreID:        store.ID,
		OrderNumber:    "1234",
		CustomerName:   "Maria Silva",
		CustomerEmail:  "maria@example.com",
		Items:          []models.ReturnItem{{ID: 1, Name: "Camiseta", Price: 100, Quantity: 2}},
		TotalValue:     200,
		ResolutionType: models.ResolutionRefund,
		Status:         status,
		Store:          store,
	}
}
