package events

import (
	"context"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/sirupsen/logrus"

	"returns-service/internal/models"
)

// Return request event types
const (
	ReturnCreated        = "returns.created"
	ReturnStatusChanged  = "returns.status_changed"
	ReturnShipmentBooked = "returns.shipment_booked"
	ReturnLabelPurchased = "returns.label_purchased"

	StreamName = "RETURNS"
)

// ReturnEvent represents a return request related event
type ReturnEvent struct {
	events.BaseEvent
	ReturnRequestID string  `json:"returnRequestId"`
	StoreID         string  `json:"storeId"`
	OrderNumber     string  `json:"orderNumber,omitempty"`
	CustomerEmail   string  `json:"customerEmail,omitempty"`
	Resolution      string  `json:"resolution,omitempty"`
	FromStatus      string  `json:"fromStatus,omitempty"`
	Status          string  `json:"status,omitempty"`
	TotalValue      float64 `json:"totalValue,omitempty"`
	CreditValue     float64 `json:"creditValue,omitempty"`
	ShippingID      string  `json:"shippingId,omitempty"`
	TrackingCode    string  `json:"trackingCode,omitempty"`
	LabelURL        string  `json:"labelUrl,omitempty"`
	ShippingCost    float64 `json:"shippingCost,omitempty"`
	ActorID         string  `json:"actorId,omitempty"`
}

func (e *ReturnEvent) GetSubject() string {
	return e.EventType
}

func (e *ReturnEvent) GetStream() string {
	return StreamName
}

// Publisher is what services need from the event bus
type Publisher interface {
	PublishReturnCreated(ctx context.Context, request *models.ReturnRequest) error
	PublishStatusChanged(ctx context.Context, request *models.ReturnRequest, from, to models.ReturnStatus, actorID string) error
	PublishShipmentBooked(ctx context.Context, request *models.ReturnRequest, shippingID string) error
	PublishLabelPurchased(ctx context.Context, request *models.ReturnRequest, purchase *models.LabelPurchase) error
}

// NATSPublisher wraps the shared events publisher for return events
type NATSPublisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new return events publisher
func NewPublisher(natsURL string, logger *logrus.Logger) (*NATSPublisher, error) {
	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "returns-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := publisher.EnsureStream(ctx, StreamName, []string{"returns.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure RETURNS stream")
	}

	return &NATSPublisher{
		publisher: publisher,
		logger:    logger.WithField("component", "events.publisher"),
	}, nil
}

func baseEvent(eventType string, request *models.ReturnRequest) ReturnEvent {
	return ReturnEvent{
		BaseEvent: events.BaseEvent{
			EventType: eventType,
			TenantID:  request.StoreID.String(),
			Timestamp: time.Now().UTC(),
		},
		ReturnRequestID: request.ID.String(),
		StoreID:         request.StoreID.String(),
		OrderNumber:     request.OrderNumber,
		CustomerEmail:   request.CustomerEmail,
		Resolution:      string(request.ResolutionType),
		Status:          string(request.Status),
	}
}

// PublishReturnCreated publishes a return created event
func (p *NATSPublisher) PublishReturnCreated(ctx context.Context, request *models.ReturnRequest) error {
	event := baseEvent(ReturnCreated, request)
	event.TotalValue = request.TotalValue
	if request.CreditValue != nil {
		event.CreditValue = *request.CreditValue
	}
	return p.publisher.Publish(ctx, &event)
}

// PublishStatusChanged publishes a status transition event
func (p *NATSPublisher) PublishStatusChanged(ctx context.Context, request *models.ReturnRequest, from, to models.ReturnStatus, actorID string) error {
	event := baseEvent(ReturnStatusChanged, request)
	event.FromStatus = string(from)
	event.Status = string(to)
	event.ActorID = actorID
	return p.publisher.Publish(ctx, &event)
}

// PublishShipmentBooked publishes a shipment reserved event
func (p *NATSPublisher) PublishShipmentBooked(ctx context.Context, request *models.ReturnRequest, shippingID string) error {
	event := baseEvent(ReturnShipmentBooked, request)
	event.ShippingID = shippingID
	return p.publisher.Publish(ctx, &event)
}

// PublishLabelPurchased publishes a label purchased event
func (p *NATSPublisher) PublishLabelPurchased(ctx context.Context, request *models.ReturnRequest, purchase *models.LabelPurchase) error {
	event := baseEvent(ReturnLabelPurchased, request)
	if request.ShippingID != nil {
		event.ShippingID = *request.ShippingID
	}
	if purchase.TrackingCode != nil {
		event.TrackingCode = *purchase.TrackingCode
	}
	if purchase.LabelURL != nil {
		event.LabelURL = *purchase.LabelURL
	}
	event.ShippingCost = purchase.ShippingCost
	return p.publisher.Publish(ctx, &event)
}

// IsConnected returns true if connected to NATS
func (p *NATSPublisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the publisher connection
func (p *NATSPublisher) Close() {
	p.publisher.Close()
}

// NoopPublisher is used when NATS is unavailable
type NoopPublisher struct {
	Logger *logrus.Logger
}

func (n NoopPublisher) log(eventType string, request *models.ReturnRequest) error {
	if n.Logger != nil {
		n.Logger.WithFields(logrus.Fields{
			"event":             eventType,
			"return_request_id": request.ID.String(),
		}).Debug("events disabled, dropping event")
	}
	return nil
}

func (n NoopPublisher) PublishReturnCreated(_ context.Context, request *models.ReturnRequest) error {
	return n.log(ReturnCreated, request)
}

func (n NoopPublisher) PublishStatusChanged(_ context.Context, request *models.ReturnRequest, _, _ models.ReturnStatus, _ string) error {
	return n.log(ReturnStatusChanged, request)
}

func (n NoopPublisher) PublishShipmentBooked(_ context.Context, request *models.ReturnRequest, _ string) error {
	return n.log(ReturnShipmentBooked, request)
}

func (n NoopPublisher) PublishLabelPurchased(_ context.Context, request *models.ReturnRequest, _ *models.LabelPurchase) error {
	return n.log(ReturnLabelPurchased, request)
}
