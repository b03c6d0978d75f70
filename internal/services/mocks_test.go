package services

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"returns-service/internal/carriers"
	"returns-service/internal/clients"
	"returns-service/internal/events"
	"returns-service/internal/models"
	"returns-service/internal/repository"
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
	args := m.Called(ctx, store, settings)
	if args.Error(0) == nil {
		store.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockStoreRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, apiKey, apiURL, name string) error {
	args := m.Called(ctx, id, apiKey, apiURL, name)
	return args.Error(0)
}

func (m *MockStoreRepository) UpdateAddress(ctx context.Context, id uuid.UUID, address models.StoreAddress) error {
	args := m.Called(ctx, id, address)
	return args.Error(0)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

var _ repository.SettingsRepository = (*MockSettingsRepository)(nil)

func (m *MockSettingsRepository) GetByStoreID(ctx context.Context, storeID uuid.UUID) (*models.StoreSettings, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreSettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings *models.StoreSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockReturnRequestRepository is a mock implementation of ReturnRequestRepository
type MockReturnRequestRepository struct {
	mock.Mock
}

var _ repository.ReturnRequestRepository = (*MockReturnRequestRepository)(nil)

func (m *MockReturnRequestRepository) Create(ctx context.Context, request *models.ReturnRequest) error {
	args := m.Called(ctx, request)
	if args.Error(0) == nil {
		request.ID = uuid.New()
		request.CreatedAt = time.Now()
	}
	return args.Error(0)
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
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockReturnRequestRepository) SetShipment(ctx context.Context, id uuid.UUID, shippingID, provider string) error {
	args := m.Called(ctx, id, shippingID, provider)
	return args.Error(0)
}

func (m *MockReturnRequestRepository) SetLabel(ctx context.Context, id uuid.UUID, labelURL, trackingCode *string, shippingCost float64) error {
	args := m.Called(ctx, id, labelURL, trackingCode, shippingCost)
	return args.Error(0)
}

// MockNuvemshopClient is a mock implementation of NuvemshopClient
type MockNuvemshopClient struct {
	mock.Mock
}

var _ clients.NuvemshopClient = (*MockNuvemshopClient)(nil)

func (m *MockNuvemshopClient) GetStore(ctx context.Context, apiURL, apiKey string) (*models.PlatformStore, error) {
	args := m.Called(ctx, apiURL, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformStore), args.Error(1)
}

func (m *MockNuvemshopClient) SearchOrders(ctx context.Context, apiURL, apiKey, query string) ([]models.PlatformOrder, error) {
	args := m.Called(ctx, apiURL, apiKey, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlatformOrder), args.Error(1)
}

func (m *MockNuvemshopClient) ListOrders(ctx context.Context, apiURL, apiKey string) ([]models.OrderSummary, error) {
	args := m.Called(ctx, apiURL, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderSummary), args.Error(1)
}

func (m *MockNuvemshopClient) ExchangeCode(ctx context.Context, code string) (*clients.TokenResponse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.TokenResponse), args.Error(1)
}

func (m *MockNuvemshopClient) GetStoreName(ctx context.Context, apiURL, apiKey string) (string, error) {
	args := m.Called(ctx, apiURL, apiKey)
	return args.String(0), args.Error(1)
}

func (m *MockNuvemshopClient) StoreAPIURL(platformStoreID string) string {
	return "https://api.test/v1/" + platformStoreID
}

// MockMelhorEnvioClient is a mock implementation of MelhorEnvioClient
type MockMelhorEnvioClient struct {
	mock.Mock
}

var _ carriers.MelhorEnvioClient = (*MockMelhorEnvioClient)(nil)

func (m *MockMelhorEnvioClient) Calculate(ctx context.Context, req *carriers.QuoteRequest) ([]models.ShippingQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ShippingQuote), args.Error(1)
}

func (m *MockMelhorEnvioClient) AddToCart(ctx context.Context, req *carriers.CartRequest) (*carriers.CartResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*carriers.CartResponse), args.Error(1)
}

func (m *MockMelhorEnvioClient) Checkout(ctx context.Context, shippingID string) (json.RawMessage, error) {
	args := m.Called(ctx, shippingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockMelhorEnvioClient) Generate(ctx context.Context, shippingID string) (json.RawMessage, error) {
	args := m.Called(ctx, shippingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockMelhorEnvioClient) Print(ctx context.Context, shippingID string) (string, error) {
	args := m.Called(ctx, shippingID)
	return args.String(0), args.Error(1)
}

func (m *MockMelhorEnvioClient) Tracking(ctx context.Context, shippingID string) (*carriers.TrackingInfo, error) {
	args := m.Called(ctx, shippingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*carriers.TrackingInfo), args.Error(1)
}

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

var _ events.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) PublishReturnCreated(ctx context.Context, request *models.ReturnRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockPublisher) PublishStatusChanged(ctx context.Context, request *models.ReturnRequest, from, to models.ReturnStatus, actorID string) error {
	args := m.Called(ctx, request, from, to, actorID)
	return args.Error(0)
}

func (m *MockPublisher) PublishShipmentBooked(ctx context.Context, request *models.ReturnRequest, shippingID string) error {
	args := m.Called(ctx, request, shippingID)
	return args.Error(0)
}

func (m *MockPublisher) PublishLabelPurchased(ctx context.Context, request *models.ReturnRequest, purchase *models.LabelPurchase) error {
	args := m.Called(ctx, request, purchase)
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

var _ Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Dispatch(notification ReturnNotification) bool {
	args := m.Called(notification)
	return args.Bool(0)
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	mock.Mock
}

var _ clients.EmailClient = (*MockEmailClient)(nil)

func (m *MockEmailClient) SendEmail(ctx context.Context, message *clients.EmailMessage) (json.RawMessage, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func testStore(ownerID string) *models.Store {
	return &models.Store{
		ID:                uuid.New(),
		UserID:            ownerID,
		Name:              "Loja Teste",
		Slug:              "loja-teste",
		APIKey:            "token",
		APIURL:            "https://api.test/v1/123",
		AddressStreet:     "Rua A",
		AddressNumber:     "100",
		AddressDistrict:   "Centro",
		AddressCity:       "São Paulo",
		AddressState:      "SP",
		AddressPostalCode: "01001-000",
		Phone:             "(11) 3333-4444",
		Document:          "12.345.678/0001-90",
	}
}

func testReturnRequest(store *models.Store, status models.ReturnStatus) *models.ReturnRequest {
	return &models.ReturnRequest{
		ID:                 uuid.New(),
		StoreID:            store.ID,
		OrderID:            "9001",
		OrderNumber:        "1234",
		CustomerName:       "Maria Silva",
		CustomerEmail:      "maria@example.com",
		CustomerPostalCode: "20040-020",
		Items: []models.ReturnItem{
			{ID: 1, ProductID: 10, Name: "Camiseta", Price: 100, Quantity: 2},
		},
		TotalValue:     200,
		ResolutionType: models.ResolutionRefund,
		Status:         status,
		Store:          store,
	}
}
