package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreditFormat controls how store credit is issued to the customer
type CreditFormat string

const (
	CreditFormatCoupon CreditFormat = "coupon" // Discount coupon created on the storefront
	CreditFormatNative CreditFormat = "native" // Platform-native gift card / credit
)

// Settings defaults applied when a store has no settings row yet
const (
	DefaultReturnWindowDays    = 7
	DefaultStoreCreditBonus    = 5
	MaxStoreCreditBonus        = 50
	DefaultAllowRefund         = true
	DefaultAllowStoreCredit    = true
	DefaultRequiresReason      = true
	DefaultAllowPartialReturns = true
)

// Store is a merchant account connected to one commerce platform storefront
type Store struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           string    `json:"user_id" gorm:"type:varchar(255);not null;index:idx_stores_user_platform"`
	Name             string    `json:"name" gorm:"not null"`
	Slug             string    `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex"`
	APIKey           string    `json:"-" gorm:"column:api_key;type:text"`
	APIURL           string    `json:"api_url" gorm:"column:api_url;type:text"`
	NuvemshopStoreID *string   `json:"nuvemshop_store_id" gorm:"type:varchar(64);index:idx_stores_user_platform"`

	// Reverse-logistics destination address
	AddressStreet     string `json:"address_street"`
	AddressNumber     string `json:"address_number"`
	AddressComplement string `json:"address_complement"`
	AddressDistrict   string `json:"address_district"`
	AddressCity       string `json:"address_city"`
	AddressState      string `json:"address_state" gorm:"type:varchar(2)"`
	AddressPostalCode string `json:"address_postal_code" gorm:"type:varchar(16)"`
	Phone             string `json:"phone"`
	Document          string `json:"document"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Settings       *StoreSettings  `json:"settings,omitempty" gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	ReturnRequests []ReturnRequest `json:"-" gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

// HasShippingAddress reports whether the store can be used as a quote origin
func (s *Store) HasShippingAddress() bool {
	return strings.TrimSpace(s.AddressPostalCode) != "" && strings.TrimSpace(s.AddressCity) != ""
}

// StoreAddress is the merchant-editable address block
type StoreAddress struct {
	Street     string `json:"address_street" binding:"required"`
	Number     string `json:"address_number" binding:"required"`
	Complement string `json:"address_complement"`
	District   string `json:"address_district" binding:"required"`
	City       string `json:"address_city" binding:"required"`
	State      string `json:"address_state" binding:"required,len=2"`
	PostalCode string `json:"address_postal_code" binding:"required"`
	Phone      string `json:"phone"`
	Document   string `json:"document"`
}

// StoreSettings holds the per-store return policy
type StoreSettings struct {
	ID                  uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID             uuid.UUID    `json:"store_id" gorm:"type:uuid;not null;uniqueIndex"`
	ReturnWindowDays    int          `json:"return_window_days" gorm:"not null"`
	AllowRefund         bool         `json:"allow_refund" gorm:"not null"`
	AllowStoreCredit    bool         `json:"allow_store_credit" gorm:"not null"`
	StoreCreditBonus    float64      `json:"store_credit_bonus" gorm:"type:decimal(5,2);not null"`
	CreditFormat        CreditFormat `json:"credit_format" gorm:"type:varchar(16);not null;default:'coupon'"`
	RequiresReason      bool         `json:"requires_reason" gorm:"not null"`
	AllowPartialReturns bool         `json:"allow_partial_returns" gorm:"not null"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// StoreSettingsPatch carries a partial settings update; nil fields are left untouched
type StoreSettingsPatch struct {
	ReturnWindowDays    *int          `json:"return_window_days"`
	AllowRefund         *bool         `json:"allow_refund"`
	AllowStoreCredit    *bool         `json:"allow_store_credit"`
	StoreCreditBonus    *float64      `json:"store_credit_bonus"`
	CreditFormat        *CreditFormat `json:"credit_format"`
	RequiresReason      *bool         `json:"requires_reason"`
	AllowPartialReturns *bool         `json:"allow_partial_returns"`
}

// PortalSettings is the customer-facing view of a store's policy
type PortalSettings struct {
	AllowRefund         bool    `json:"allowRefund"`
	AllowStoreCredit    bool    `json:"allowStoreCredit"`
	StoreCreditBonus    float64 `json:"storeCreditBonus"`
	RequiresReason      bool    `json:"requiresReason"`
	AllowPartialReturns bool    `json:"allowPartialReturns"`
	ReturnWindowDays    int     `json:"returnWindowDays"`
}

// DefaultStoreSettings returns the settings created alongside a new store
func DefaultStoreSettings(storeID uuid.UUID) *StoreSettings {
	return &StoreSettings{
		StoreID:             storeID,
		ReturnWindowDays:    DefaultReturnWindowDays,
		AllowRefund:         DefaultAllowRefund,
		AllowStoreCredit:    DefaultAllowStoreCredit,
		StoreCreditBonus:    DefaultStoreCreditBonus,
		CreditFormat:        CreditFormatCoupon,
		RequiresReason:      DefaultRequiresReason,
		AllowPartialReturns: DefaultAllowPartialReturns,
	}
}

// EffectiveSettings merges a possibly missing settings row with the defaults
func EffectiveSettings(s *StoreSettings) PortalSettings {
	if s == nil {
		return PortalSettings{
			AllowRefund:         DefaultAllowRefund,
			AllowStoreCredit:    DefaultAllowStoreCredit,
			StoreCreditBonus:    DefaultStoreCreditBonus,
			RequiresReason:      DefaultRequiresReason,
			AllowPartialReturns: DefaultAllowPartialReturns,
			ReturnWindowDays:    DefaultReturnWindowDays,
		}
	}
	return PortalSettings{
		AllowRefund:         s.AllowRefund,
		AllowStoreCredit:    s.AllowStoreCredit,
		StoreCreditBonus:    s.StoreCreditBonus,
		RequiresReason:      s.RequiresReason,
		AllowPartialReturns: s.AllowPartialReturns,
		ReturnWindowDays:    s.ReturnWindowDays,
	}
}

// Apply copies the non-nil fields of the patch onto the settings
func (p StoreSettingsPatch) Apply(s *StoreSettings) {
	if p.ReturnWindowDays != nil {
		s.ReturnWindowDays = *p.ReturnWindowDays
	}
	if p.AllowRefund != nil {
		s.AllowRefund = *p.AllowRefund
	}
	if p.AllowStoreCredit != nil {
		s.AllowStoreCredit = *p.AllowStoreCredit
	}
	if p.StoreCreditBonus != nil {
		s.StoreCreditBonus = *p.StoreCreditBonus
	}
	if p.CreditFormat != nil {
		s.CreditFormat = *p.CreditFormat
	}
	if p.RequiresReason != nil {
		s.RequiresReason = *p.RequiresReason
	}
	if p.AllowPartialReturns != nil {
		s.AllowPartialReturns = *p.AllowPartialReturns
	}
}

// IsValid checks the settings ranges
func (s *StoreSettings) IsValid() bool {
	if s.ReturnWindowDays < 0 {
		return false
	}
	if s.StoreCreditBonus < 0 || s.StoreCreditBonus > MaxStoreCreditBonus {
		return false
	}
	return s.CreditFormat == CreditFormatCoupon || s.CreditFormat == CreditFormatNative
}

// TableName specifies the table name for Store
func (Store) TableName() string {
	return "stores"
}

// TableName specifies the table name for StoreSettings
func (StoreSettings) TableName() string {
	return "store_settings"
}
