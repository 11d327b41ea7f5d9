package domain

import (
	"errors"
	"fmt"
)

var (
	// Decode errors
	ErrMalformedResponse  = errors.New("unexpected payment response")
	ErrInvalidEnvelope    = errors.New("invalid payment envelope")
	ErrUnparseableReceipt = errors.New("unparseable purchase data")

	// Flow errors
	ErrSurfaceNotReady = errors.New("confirmation surface is not ready")
	ErrFlowState       = errors.New("invalid flow state transition")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")

	// Delivery errors
	ErrResponseInFlight = errors.New("payment response is already being processed")
)

// ProviderError is a rejection reported by the payment provider.
// Abort marks a user cancellation; ProductType optionally hints which
// product the canceled flow was for.
type ProviderError struct {
	Err         error
	Abort       bool
	ProductType string
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return "payment provider rejected the request"
	}
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewAbortError builds a cancellation rejection.
func NewAbortError(msg, productType string) *ProviderError {
	return &ProviderError{Err: fmt.Errorf("AbortError: %s", msg), Abort: true, ProductType: productType}
}

// IsAbort reports whether err is a provider cancellation.
func IsAbort(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Abort
}

// AbortProductType returns the product type hint carried by a provider
// rejection, or "" if there is none.
func AbortProductType(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.ProductType
	}
	return ""
}
