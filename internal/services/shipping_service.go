package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"returns-service/internal/cache"
	"returns-service/internal/carriers"
	"returns-service/internal/events"
	"returns-service/internal/models"
	"returns-service/internal/repository"
)

// Fallbacks for customer and store fields the carrier requires
const (
	fallbackPhone      = "11999999999"
	fallbackAddress    = "Endereço não informado"
	fallbackNumber     = "S/N"
	fallbackDistrict   = "Centro"
	fallbackCity       = "São Paulo"
	fallbackState      = "SP"
	fallbackStoreEmail = "contato@loja.com"
	shippingPlatform   = "Trocas.app"
)

// ShippingService runs the reverse-logistics label workflow of a return request
type ShippingService struct {
	returns        repository.ReturnRequestRepository
	production     carriers.MelhorEnvioClient
	sandbox        carriers.MelhorEnvioClient
	defaultSandbox bool
	cache          cache.QueryCache
	publisher      events.Publisher
	logger         *logrus.Entry
}

// NewShippingService creates a new ShippingService. A nil carrier means the
// token is not configured for that environment.
func NewShippingService(
	returns repository.ReturnRequestRepository,
	production, sandbox carriers.MelhorEnvioClient,
	defaultSandbox bool,
	queryCache cache.QueryCache,
	publisher events.Publisher,
	logger *logrus.Logger,
) *ShippingService {
	return &ShippingService{
		returns:        returns,
		production:     production,
		sandbox:        sandbox,
		defaultSandbox: defaultSandbox,
		cache:          queryCache,
		publisher:      publisher,
		logger:         logger.WithField("service", "shipping"),
	}
}

// Configured reports whether a carrier token is available
func (s *ShippingService) Configured() bool {
	return s.production != nil || s.sandbox != nil
}

func (s *ShippingService) carrier(useSandbox *bool) (carriers.MelhorEnvioClient, error) {
	sandbox := s.defaultSandbox
	if useSandbox != nil {
		sandbox = *useSandbox
	}
	client := s.production
	if sandbox {
		client = s.sandbox
	}
	if client == nil {
		return nil, ErrCarrierNotConfigured
	}
	return client, nil
}

func (s *ShippingService) load(ctx context.Context, ownerID string, id uuid.UUID) (*models.ReturnRequest, error) {
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
	return request, nil
}

// GetShippingState returns the persisted workflow state and its resume step
func (s *ShippingService) GetShippingState(ctx context.Context, ownerID string, id uuid.UUID) (*models.ShippingState, error) {
	request, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	state := models.NewShippingState(request)
	return &state, nil
}

// Calculate quotes the reverse shipment from the customer to the store
func (s *ShippingService) Calculate(ctx context.Context, ownerID string, id uuid.UUID, useSandbox *bool) ([]models.ShippingQuote, error) {
	client, err := s.carrier(useSandbox)
	if err != nil {
		return nil, err
	}
	request, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	store := request.Store
	if !store.HasShippingAddress() {
		return nil, addressError{ErrMissingStoreAddress}
	}
	if strings.TrimSpace(request.CustomerPostalCode) == "" {
		return nil, addressError{ErrMissingCustomerPostal}
	}

	quote := &carriers.QuoteRequest{
		From: carriers.PostalCode{PostalCode: digitsOnly(store.AddressPostalCode)},
		To:   carriers.PostalCode{PostalCode: digitsOnly(request.CustomerPostalCode)},
		Products: []carriers.QuoteProduct{{
			ID:             request.ID.String(),
			Width:          models.PackageWidth,
			Height:         models.PackageHeight,
			Length:         models.PackageLength,
			Weight:         models.PackageWeight(request.TotalQuantity()),
			InsuranceValue: request.TotalValue,
			Quantity:       1,
		}},
	}

	quotes, err := client.Calculate(ctx, quote)
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// CreateLabel reserves the shipment in the carrier cart and persists its id.
// Nothing is written when the carrier call fails.
func (s *ShippingService) CreateLabel(ctx context.Context, ownerID string, id uuid.UUID, serviceID int, useSandbox *bool) (*models.ShipmentReservation, error) {
	client, err := s.carrier(useSandbox)
	if err != nil {
		return nil, err
	}
	request, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.ReturnStatusApproved || request.HasShipment() {
		return nil, ErrInvalidState
	}

	cart, err := client.AddToCart(ctx, BuildCartRequest(request, request.Store, serviceID))
	if err != nil {
		return nil, err
	}

	if err := s.returns.SetShipment(ctx, id, cart.ID, models.ShippingProviderMelhorEnvio); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			s.logger.WithFields(logrus.Fields{
				"return_request_id": id,
				"shipping_id":       cart.ID,
			}).Warn("Shipment reserved concurrently, discarding cart entry")
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}
	invalidateReturnViews(ctx, s.cache, ownerID, request)

	shippingID := cart.ID
	request.ShippingID = &shippingID
	if err := s.publisher.PublishShipmentBooked(ctx, request, cart.ID); err != nil {
		s.logger.WithError(err).WithField("return_request_id", id).Warn("Failed to publish shipment booked event")
	}

	s.logger.WithFields(logrus.Fields{
		"return_request_id": id,
		"shipping_id":       cart.ID,
		"service_id":        serviceID,
	}).Info("Shipment reserved")

	return &models.ShipmentReservation{ShippingID: cart.ID, Data: cart.Raw}, nil
}

// Checkout purchases and generates the label, then collects the print URL and
// tracking data. Print and tracking failures leave those fields empty. A request
// whose label was bought but never printed skips the purchase and only retries
// print and tracking.
func (s *ShippingService) Checkout(ctx context.Context, ownerID string, id uuid.UUID, useSandbox *bool) (*models.LabelPurchase, error) {
	client, err := s.carrier(useSandbox)
	if err != nil {
		return nil, err
	}
	request, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !request.HasShipment() {
		return nil, ErrMissingShipment
	}
	if request.HasLabel() {
		return nil, ErrInvalidState
	}
	shippingID := *request.ShippingID
	log := s.logger.WithFields(logrus.Fields{
		"return_request_id": id,
		"shipping_id":       shippingID,
	})

	// shipping_cost is written by every completed purchase, even when print failed
	purchased := request.ShippingCost != nil
	purchase := &models.LabelPurchase{}

	if purchased {
		log.Info("Label already purchased, retrying print")
		purchase.TrackingCode = request.TrackingCode
		purchase.ShippingCost = *request.ShippingCost
	} else {
		checkoutData, err := client.Checkout(ctx, shippingID)
		if err != nil {
			return nil, err
		}
		if _, err := client.Generate(ctx, shippingID); err != nil {
			return nil, err
		}
		purchase.CheckoutData = checkoutData
	}

	if labelURL, err := client.Print(ctx, shippingID); err != nil {
		log.WithError(err).Warn("Label print URL unavailable")
	} else if labelURL != "" {
		purchase.LabelURL = &labelURL
	}

	if tracking, err := client.Tracking(ctx, shippingID); err != nil {
		log.WithError(err).Warn("Tracking data unavailable")
	} else {
		if tracking.Tracking != nil || !purchased {
			purchase.TrackingCode = tracking.Tracking
		}
		if tracking.Price > 0 || !purchased {
			purchase.ShippingCost = tracking.Price
		}
	}

	if err := s.returns.SetLabel(ctx, id, purchase.LabelURL, purchase.TrackingCode, purchase.ShippingCost); err != nil {
		return nil, err
	}
	invalidateReturnViews(ctx, s.cache, ownerID, request)

	if !purchased {
		if err := s.publisher.PublishLabelPurchased(ctx, request, purchase); err != nil {
			log.WithError(err).Warn("Failed to publish label purchased event")
		}
	}

	log.WithFields(logrus.Fields{
		"shipping_cost": purchase.ShippingCost,
		"has_label":     purchase.LabelURL != nil,
	}).Info("Label purchased")
	return purchase, nil
}

// Tracking re-reads the carrier tracking payload without persisting anything
func (s *ShippingService) Tracking(ctx context.Context, ownerID string, id uuid.UUID, useSandbox *bool) (*models.TrackingSnapshot, error) {
	client, err := s.carrier(useSandbox)
	if err != nil {
		return nil, err
	}
	request, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !request.HasShipment() {
		return nil, ErrMissingShipment
	}

	tracking, err := client.Tracking(ctx, *request.ShippingID)
	if err != nil {
		return nil, err
	}

	return &models.TrackingSnapshot{
		Tracking:     tracking.Raw,
		TrackingCode: request.TrackingCode,
		LabelURL:     request.LabelURL,
	}, nil
}

// BuildCartRequest describes the reverse shipment: the customer ships to the store
func BuildCartRequest(request *models.ReturnRequest, store *models.Store, serviceID int) *carriers.CartRequest {
	products := make([]carriers.CartProduct, 0, len(request.Items))
	for _, item := range request.Items {
		products = append(products, carriers.CartProduct{
			Name:         item.Name,
			Quantity:     strconv.Itoa(item.Quantity),
			UnitaryValue: strconv.FormatFloat(item.Price, 'f', -1, 64),
		})
	}

	return &carriers.CartRequest{
		Service: serviceID,
		From: carriers.CartAddress{
			Name:       request.CustomerName,
			Phone:      orDefault(digitsOnly(request.CustomerPhone), fallbackPhone),
			Email:      request.CustomerEmail,
			Address:    orDefault(request.CustomerAddress, fallbackAddress),
			Number:     orDefault(request.CustomerAddressNumber, fallbackNumber),
			District:   orDefault(request.CustomerDistrict, fallbackDistrict),
			City:       orDefault(request.CustomerCity, fallbackCity),
			StateAbbr:  orDefault(request.CustomerState, fallbackState),
			PostalCode: digitsOnly(request.CustomerPostalCode),
		},
		To: carriers.CartAddress{
			Name:            store.Name,
			Phone:           orDefault(digitsOnly(store.Phone), fallbackPhone),
			Email:           fallbackStoreEmail,
			CompanyDocument: digitsOnly(store.Document),
			Address:         store.AddressStreet,
			Complement:      store.AddressComplement,
			Number:          store.AddressNumber,
			District:        store.AddressDistrict,
			City:            store.AddressCity,
			StateAbbr:       store.AddressState,
			PostalCode:      digitsOnly(store.AddressPostalCode),
		},
		Products: products,
		Volumes: []carriers.CartVolume{{
			Height: models.PackageHeight,
			Width:  models.PackageWidth,
			Length: models.PackageLength,
			Weight: models.PackageWeight(request.TotalQuantity()),
		}},
		Options: carriers.CartOptions{
			InsuranceValue: request.TotalValue,
			Receipt:        false,
			OwnHand:        false,
			Reverse:        true,
			NonCommercial:  true,
			Platform:       shippingPlatform,
			Tags:           []carriers.CartTag{{Tag: request.OrderNumber}},
		},
	}
}

func digitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
