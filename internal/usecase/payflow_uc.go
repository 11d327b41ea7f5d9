// File: internal/usecase/payflow_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain/model"
)

// Compile-time check
var _ PayflowUseCase = (*payflowUC)(nil)

type PayflowUseCase interface {
	// Subscribe starts a subscription purchase and returns the flow id.
	Subscribe(ctx context.Context, req model.SubscriptionRequest) (string, error)
	// Contribute starts a one-off contribution purchase and returns the flow id.
	Contribute(ctx context.Context, req model.SubscriptionRequest) (string, error)
	// HandleResponse processes a provider response delivered in-page or by redirect.
	HandleResponse(ctx context.Context, raw any, providerErr error, via model.Delivery) error
	// SetInlineCTA selects inline confirmation for later purchases.
	SetInlineCTA(enabled bool, configID string)
}

type payflowUC struct {
	rt      *Runtime
	handler *PaymentResponseHandler
	log     *zerolog.Logger
}

// NewPayflowUseCase wires the response handler into the payment client.
func NewPayflowUseCase(rt *Runtime, logger *zerolog.Logger) *payflowUC {
	h := NewPaymentResponseHandler(rt, NewResponseDecoder(logger))
	h.Register()
	return &payflowUC{rt: rt, handler: h, log: logger}
}

func (u *payflowUC) Subscribe(ctx context.Context, req model.SubscriptionRequest) (string, error) {
	return u.start(ctx, req, model.ProductTypeSubscription)
}

func (u *payflowUC) Contribute(ctx context.Context, req model.SubscriptionRequest) (string, error) {
	return u.start(ctx, req, model.ProductTypeContribution)
}

func (u *payflowUC) start(ctx context.Context, req model.SubscriptionRequest, pt model.ProductType) (string, error) {
	f := NewPayStartFlow(u.rt, req, pt)
	if err := f.Start(ctx); err != nil {
		return "", err
	}
	return f.ID(), nil
}

func (u *payflowUC) HandleResponse(ctx context.Context, raw any, providerErr error, via model.Delivery) error {
	return u.handler.Handle(ctx, raw, providerErr, via)
}

func (u *payflowUC) SetInlineCTA(enabled bool, configID string) {
	u.rt.SetInlineCTA(enabled, configID)
}
