package adapter

import (
	"context"

	"subscribe-payflow/internal/domain/model"
)

// ResponseHandler receives the provider's answer to a purchase attempt:
// either a raw payload (string envelope or decoded object) or a rejection,
// together with the channel it arrived on.
type ResponseHandler func(ctx context.Context, raw any, err error, via model.Delivery) error

// PaymentClient is the hex port for the embedded payment provider.
type PaymentClient interface {
	// Start hands the normalized request to the provider. It does not wait
	// for the purchase; the outcome arrives through the response handler.
	Start(ctx context.Context, req *model.PaymentDataRequest, opts model.PaymentOptions) error
	// OnResponse registers the handler. Only one handler is kept.
	OnResponse(handler ResponseHandler)
}
