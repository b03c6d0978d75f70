package models

import "encoding/json"

// ShippingStep is where the label workflow resumes for a request
type ShippingStep string

const (
	ShippingStepQuotes   ShippingStep = "quotes"   // Nothing reserved yet
	ShippingStepCheckout ShippingStep = "checkout" // Shipment reserved, label not bought or not yet printed
	ShippingStepDone     ShippingStep = "done"     // Label purchased
)

// ShippingAction is the discriminator accepted by the shipping action endpoint
type ShippingAction string

const (
	ShippingActionCalculate   ShippingAction = "calculate"
	ShippingActionCreateLabel ShippingAction = "create-label"
	ShippingActionCheckout    ShippingAction = "checkout"
	ShippingActionTracking    ShippingAction = "tracking"
)

// Package dimensions used for every reverse shipment (cm)
const (
	PackageWidth     = 20
	PackageHeight    = 15
	PackageLength    = 30
	MinPackageWeight = 0.3 // kg
	WeightPerItem    = 0.5 // kg
)

// PackageWeight estimates the parcel weight from the number of returned units
func PackageWeight(totalQuantity int) float64 {
	weight := float64(totalQuantity) * WeightPerItem
	if weight < MinPackageWeight {
		return MinPackageWeight
	}
	return weight
}

// ShippingCompany identifies the carrier behind a quote
type ShippingCompany struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// DeliveryRange is the min/max business days of a quote
type DeliveryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ShippingQuote is one available carrier service
type ShippingQuote struct {
	ID                  int             `json:"id"`
	Name                string          `json:"name"`
	Price               string          `json:"price"`
	CustomPrice         string          `json:"custom_price,omitempty"`
	Discount            string          `json:"discount"`
	Currency            string          `json:"currency"`
	DeliveryTime        int             `json:"delivery_time"`
	DeliveryRange       DeliveryRange   `json:"delivery_range"`
	CustomDeliveryTime  int             `json:"custom_delivery_time,omitempty"`
	CustomDeliveryRange *DeliveryRange  `json:"custom_delivery_range,omitempty"`
	Company             ShippingCompany `json:"company"`
	Error               string          `json:"error,omitempty"`
}

// LabelPurchase is the outcome of the checkout phase
type LabelPurchase struct {
	LabelURL     *string         `json:"labelUrl"`
	TrackingCode *string         `json:"trackingCode"`
	ShippingCost float64         `json:"shippingCost"`
	CheckoutData json.RawMessage `json:"checkoutData,omitempty"`
}

// TrackingSnapshot is the read-only tracking view of a request
type TrackingSnapshot struct {
	Tracking     json.RawMessage `json:"tracking"`
	TrackingCode *string         `json:"trackingCode"`
	LabelURL     *string         `json:"labelUrl"`
}

// ShipmentReservation is the outcome of the cart phase
type ShipmentReservation struct {
	ShippingID string          `json:"shippingId"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// ShippingState describes the persisted label workflow state of a request
type ShippingState struct {
	Step             ShippingStep `json:"step"`
	ShippingProvider *string      `json:"shippingProvider"`
	ShippingID       *string      `json:"shippingId"`
	TrackingCode     *string      `json:"trackingCode"`
	LabelURL         *string      `json:"labelUrl"`
	ShippingCost     *float64     `json:"shippingCost"`
}

// ResumeStep decides which workflow step to open for a request
func ResumeStep(r *ReturnRequest) ShippingStep {
	switch {
	case r.HasLabel():
		return ShippingStepDone
	case r.HasShipment():
		return ShippingStepCheckout
	default:
		return ShippingStepQuotes
	}
}

// NewShippingState snapshots the shipping fields of a request
func NewShippingState(r *ReturnRequest) ShippingState {
	return ShippingState{
		Step:             ResumeStep(r),
		ShippingProvider: r.ShippingProvider,
		ShippingID:       r.ShippingID,
		TrackingCode:     r.TrackingCode,
		LabelURL:         r.LabelURL,
		ShippingCost:     r.ShippingCost,
	}
}
