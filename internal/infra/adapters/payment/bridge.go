// File: internal/infra/adapters/payment/bridge.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/domain/ports/adapter"
	"subscribe-payflow/internal/infra/codec"
	"subscribe-payflow/internal/infra/logging"
)

var _ adapter.PaymentClient = (*Bridge)(nil)

// Query parameters of the provider hand-off and return.
const (
	ParamPaymentRequest  = "paymentRequest"
	ParamReturnURL       = "returnUrl"
	ParamPaymentResponse = "paymentResponse"
	ParamError           = "error"
	ParamProductType     = "productType"
)

// ErrorCanceled is the provider error code of a user cancellation.
const ErrorCanceled = "CANCELED"

// PendingPayment is a request handed to the provider and not yet answered.
type PendingPayment struct {
	Request     *model.PaymentDataRequest `json:"request"`
	Options     model.PaymentOptions      `json:"options"`
	Envelope    string                    `json:"envelope"`
	RedirectURL string                    `json:"redirectUrl,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

// Bridge is a PaymentClient for a host that relays the provider exchange:
// the page picks up the pending request, and the provider answer comes back
// through Deliver, either posted by the page or via the return redirect.
type Bridge struct {
	payURL    string
	returnURL string
	log       *zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending *PendingPayment
	handler adapter.ResponseHandler
}

func NewBridge(payURL, returnURL string, logger *zerolog.Logger) *Bridge {
	return &Bridge{payURL: payURL, returnURL: returnURL, log: logger, now: time.Now}
}

// Start stores req as the pending payment. In redirect mode it also builds
// the provider URL the reader is sent to.
func (b *Bridge) Start(ctx context.Context, req *model.PaymentDataRequest, opts model.PaymentOptions) error {
	envelope, err := codec.EncodeEnvelope(req)
	if err != nil {
		return fmt.Errorf("encode payment request: %w", err)
	}
	p := &PendingPayment{Request: req, Options: opts, Envelope: envelope, CreatedAt: b.now()}
	if opts.ForceRedirect {
		p.RedirectURL, err = b.redirectURL(envelope)
		if err != nil {
			return err
		}
	}

	b.mu.Lock()
	b.pending = p
	b.mu.Unlock()

	logging.With(ctx, b.log).Debug().
		Str("sku", req.Swg.SKUID).
		Bool("redirect", opts.ForceRedirect).
		Msg("payment request pending")
	return nil
}

func (b *Bridge) OnResponse(h adapter.ResponseHandler) {
	b.mu.Lock()
	b.handler = h
	b.mu.Unlock()
}

// Pending returns the request awaiting an answer.
func (b *Bridge) Pending() (*PendingPayment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending, b.pending != nil
}

// Deliver hands a provider answer to the registered handler.
func (b *Bridge) Deliver(ctx context.Context, raw any, providerErr error, via model.Delivery) error {
	b.mu.Lock()
	h := b.handler
	b.pending = nil
	b.mu.Unlock()
	if h == nil {
		return fmt.Errorf("no payment response handler: %w", domain.ErrFlowState)
	}
	return h(ctx, raw, providerErr, via)
}

func (b *Bridge) redirectURL(envelope string) (string, error) {
	u, err := url.Parse(b.payURL)
	if err != nil {
		return "", fmt.Errorf("parse pay url: %w", err)
	}
	q := u.Query()
	q.Set(ParamPaymentRequest, envelope)
	if b.returnURL != "" {
		q.Set(ParamReturnURL, b.returnURL)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseReturn reads the provider answer from return query parameters. A
// cancellation becomes an abort error carrying the product type hint.
func ParseReturn(q url.Values) (any, error) {
	if code := q.Get(ParamError); code != "" {
		if code == ErrorCanceled {
			return nil, domain.NewAbortError("payment canceled", q.Get(ParamProductType))
		}
		return nil, &domain.ProviderError{Err: errors.New(code), ProductType: q.Get(ParamProductType)}
	}
	resp := q.Get(ParamPaymentResponse)
	if resp == "" {
		return nil, &domain.ProviderError{Err: domain.ErrMalformedResponse}
	}
	return resp, nil
}
