package services

import (
	"errors"

	"returns-service/internal/models"
)

// Not found
var (
	ErrStoreNotFound         = errors.New("store not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrReturnRequestNotFound = errors.New("return request not found")
)

// Validation
var (
	ErrMissingStoreAddress    = errors.New("store address not configured")
	ErrMissingCustomerPostal  = errors.New("customer postal code missing")
	ErrMissingShipment        = errors.New("shipment not created")
	ErrInvalidResolution      = errors.New("invalid resolution type")
	ErrNoItemsSelected        = errors.New("no items selected")
	ErrInvalidItem            = errors.New("invalid return item")
	ErrResolutionNotAllowed   = errors.New("resolution not allowed by store settings")
	ErrReasonRequired         = errors.New("reason is required")
	ErrInvalidState           = errors.New("return request is not in a valid state for this operation")
	ErrInvalidSettings        = errors.New("invalid store settings")
	ErrInvalidOAuthState      = errors.New("invalid oauth state")
	ErrCarrierNotConfigured   = errors.New("carrier token not configured")
	ErrMissingCustomerDetails = errors.New("customer name and email are required")
	ErrTokenExchange          = errors.New("failed to obtain access token")
)

// Conflict
var (
	ErrInvalidTransition = models.ErrInvalidTransition
	ErrConcurrentUpdate  = errors.New("return request was modified concurrently")
)

// ErrMissingAddress matches both address validation failures of a quote
var ErrMissingAddress = errors.New("missing address")

type addressError struct {
	err error
}

func (e addressError) Error() string { return e.err.Error() }

func (e addressError) Unwrap() []error { return []error{e.err, ErrMissingAddress} }
