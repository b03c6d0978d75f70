package clients

import (
	"errors"
	"fmt"
	"net/http"
)

// Upstream error classes
var (
	ErrUpstreamAuth        = errors.New("upstream rejected credentials")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// UpstreamError carries the raw response of a failed external call
type UpstreamError struct {
	Service    string
	StatusCode int // 0 when the request never got a response
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s API returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Unwrap classifies the failure as an auth or availability problem
func (e *UpstreamError) Unwrap() []error {
	class := ErrUpstreamUnavailable
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		class = ErrUpstreamAuth
	}
	if e.Err != nil {
		return []error{class, e.Err}
	}
	return []error{class}
}

// NewStatusError builds the error for a non-2xx response
func NewStatusError(service string, status int, body []byte) *UpstreamError {
	return &UpstreamError{Service: service, StatusCode: status, Body: string(body)}
}

// NewTransportError builds the error for a request that got no response
func NewTransportError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}
