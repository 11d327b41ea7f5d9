package model

import (
	"context"
	"sync"
)

// Delivery is the channel a provider response arrived on.
type Delivery int

const (
	// DeliveryInPage is a response relayed by the page that started the
	// purchase. Whether it still counts as the redirect path depends on the
	// runtime's waiting flag.
	DeliveryInPage Delivery = iota
	// DeliveryRedirect is a response carried by the provider's return URL.
	DeliveryRedirect
)

func (d Delivery) String() string {
	if d == DeliveryRedirect {
		return "redirect"
	}
	return "in_page"
}

// PaymentResponse is the pending outcome of a purchase attempt, handed to
// publisher callbacks before the provider response has been processed.
// It is settled exactly once.
type PaymentResponse struct {
	once   sync.Once
	done   chan struct{}
	result *PurchaseResult
	err    error
}

func NewPaymentResponse() *PaymentResponse {
	return &PaymentResponse{done: make(chan struct{})}
}

// Resolve settles the response with a decoded purchase. Later calls to
// Resolve or Reject are ignored.
func (p *PaymentResponse) Resolve(r *PurchaseResult) {
	p.once.Do(func() {
		p.result = r
		close(p.done)
	})
}

// Reject settles the response with an error.
func (p *PaymentResponse) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once the response is settled.
func (p *PaymentResponse) Done() <-chan struct{} { return p.done }

// Wait blocks until the response is settled or ctx ends.
func (p *PaymentResponse) Wait(ctx context.Context) (*PurchaseResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
