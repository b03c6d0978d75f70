package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ReturnStatus represents the status of a return request
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"   // Submitted by the customer, awaiting review
	ReturnStatusApproved  ReturnStatus = "approved"  // Accepted by the merchant, items may be shipped back
	ReturnStatusRejected  ReturnStatus = "rejected"  // Refused by the merchant
	ReturnStatusCompleted ReturnStatus = "completed" // Refund or credit issued
)

// IsValid reports whether s is one of the known statuses
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected, ReturnStatusCompleted:
		return true
	}
	return false
}

// ResolutionType is the payout mechanism chosen by the customer
type ResolutionType string

const (
	ResolutionRefund      ResolutionType = "refund"
	ResolutionStoreCredit ResolutionType = "store_credit"
)

// ShippingProviderMelhorEnvio identifies labels bought through Melhor Envio
const ShippingProviderMelhorEnvio = "melhor_envio"

// IsValid reports whether the resolution type is known
func (r ResolutionType) IsValid() bool {
	return r == ResolutionRefund || r == ResolutionStoreCredit
}

// ReturnItem is one selected order line inside a return request
type ReturnItem struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// ReturnRequest is a single customer-initiated return/exchange case
type ReturnRequest struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID       uuid.UUID `json:"store_id" gorm:"type:uuid;not null;index:idx_return_requests_store_status;index:idx_return_requests_store_created"`
	OrderID       string    `json:"order_id" gorm:"type:varchar(64);not null"`
	OrderNumber   string    `json:"order_number" gorm:"type:varchar(64);not null;index"`
	CustomerName  string    `json:"customer_name" gorm:"not null"`
	CustomerEmail string    `json:"customer_email" gorm:"not null"`

	// Customer shipping origin
	CustomerPhone         string `json:"customer_phone"`
	CustomerPostalCode    string `json:"customer_postal_code" gorm:"type:varchar(16)"`
	CustomerAddress       string `json:"customer_address"`
	CustomerAddressNumber string `json:"customer_address_number"`
	CustomerDistrict      string `json:"customer_district"`
	CustomerCity          string `json:"customer_city"`
	CustomerState         string `json:"customer_state" gorm:"type:varchar(2)"`

	Items          datatypes.JSONSlice[ReturnItem] `json:"items" gorm:"type:jsonb;not null"`
	TotalValue     float64                         `json:"total_value" gorm:"type:decimal(10,2);not null"`
	CreditValue    *float64                        `json:"credit_value" gorm:"type:decimal(10,2)"`
	ResolutionType ResolutionType                  `json:"resolution_type" gorm:"type:varchar(20);not null"`
	Reason         string                          `json:"reason" gorm:"type:text"`
	Status         ReturnStatus                    `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_return_requests_store_status"`

	// Shipping sub-state, populated by the label workflow
	ShippingProvider *string  `json:"shipping_provider" gorm:"type:varchar(32)"`
	ShippingID       *string  `json:"shipping_id" gorm:"type:varchar(64)"`
	TrackingCode     *string  `json:"tracking_code" gorm:"type:varchar(64)"`
	LabelURL         *string  `json:"label_url" gorm:"type:text"`
	ShippingCost     *float64 `json:"shipping_cost" gorm:"type:decimal(10,2)"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_return_requests_store_created,sort:desc"`
	UpdatedAt time.Time `json:"updated_at"`

	Store *Store `json:"-" gorm:"foreignKey:StoreID"`
}

// TotalQuantity sums the quantities of all selected items
func (r *ReturnRequest) TotalQuantity() int {
	total := 0
	for _, item := range r.Items {
		total += item.Quantity
	}
	return total
}

// HasShipment reports whether a carrier shipment has been reserved
func (r *ReturnRequest) HasShipment() bool {
	return r.ShippingID != nil && *r.ShippingID != ""
}

// HasLabel reports whether the label has been purchased
func (r *ReturnRequest) HasLabel() bool {
	return r.LabelURL != nil && *r.LabelURL != ""
}

// CanApprove checks if the request can be approved
func (r *ReturnRequest) CanApprove() bool {
	return CanTransitionReturnStatus(r.Status, ReturnStatusApproved)
}

// CanReject checks if the request can be rejected
func (r *ReturnRequest) CanReject() bool {
	return CanTransitionReturnStatus(r.Status, ReturnStatusRejected)
}

// CanComplete checks if the request can be completed
func (r *ReturnRequest) CanComplete() bool {
	return CanTransitionReturnStatus(r.Status, ReturnStatusCompleted)
}

// TableName specifies the table name for ReturnRequest
func (ReturnRequest) TableName() string {
	return "return_requests"
}
