package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderCustomer is the buyer of a platform order
type OrderCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderItem is a normalized platform order line
type OrderItem struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
	SKU       string  `json:"sku,omitempty"`
}

// PlatformOrder is the normalized view of a commerce platform order
type PlatformOrder struct {
	ID        int64         `json:"id"`
	Number    string        `json:"number"`
	Customer  OrderCustomer `json:"customer"`
	Items     []OrderItem   `json:"items"`
	Total     float64       `json:"total"`
	CreatedAt time.Time     `json:"createdAt"`
	Status    string        `json:"status"`
}

// OrderSummary is a row of the merchant's recent orders listing
type OrderSummary struct {
	ID            int64     `json:"id"`
	Number        string    `json:"number"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	Total         float64   `json:"total"`
	CreatedAt     time.Time `json:"createdAt"`
	Status        string    `json:"status"`
}

// PlatformStore is the storefront identity returned by credential validation
type PlatformStore struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Currency string `json:"currency"`
}

// EligibilityResult is the outcome of the return window check
type EligibilityResult struct {
	IsEligible       bool   `json:"isEligible"`
	DaysSinceOrder   int    `json:"daysSinceOrder"`
	ReturnWindowDays int    `json:"returnWindowDays"`
	Message          string `json:"message"`
}

// OrderLookupResult is everything the portal needs to start a return
type OrderLookupResult struct {
	Order       PlatformOrder     `json:"order"`
	Eligibility EligibilityResult `json:"eligibility"`
	Settings    PortalSettings    `json:"settings"`
	StoreID     uuid.UUID         `json:"storeId"`
	StoreName   string            `json:"storeName"`
}
