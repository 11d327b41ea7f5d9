package callbacks

import (
	"sync"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/domain/ports/adapter"
)

var _ adapter.Callbacks = (*Callbacks)(nil)

// Callbacks fans flow notifications out to the subscribed listeners.
// Listeners run synchronously in subscription order.
type Callbacks struct {
	log *zerolog.Logger

	mu            sync.Mutex
	started       []func(model.SubscriptionFlow, any)
	canceled      []func(model.SubscriptionFlow)
	confirmOpened []func(adapter.ActivityPort)
	responses     []func(*model.PaymentResponse)
}

func New(logger *zerolog.Logger) *Callbacks {
	return &Callbacks{log: logger}
}

func (c *Callbacks) OnFlowStarted(fn func(flow model.SubscriptionFlow, data any)) {
	c.mu.Lock()
	c.started = append(c.started, fn)
	c.mu.Unlock()
}

func (c *Callbacks) OnFlowCanceled(fn func(flow model.SubscriptionFlow)) {
	c.mu.Lock()
	c.canceled = append(c.canceled, fn)
	c.mu.Unlock()
}

func (c *Callbacks) OnPayConfirmOpened(fn func(view adapter.ActivityPort)) {
	c.mu.Lock()
	c.confirmOpened = append(c.confirmOpened, fn)
	c.mu.Unlock()
}

func (c *Callbacks) OnPaymentResponse(fn func(resp *model.PaymentResponse)) {
	c.mu.Lock()
	c.responses = append(c.responses, fn)
	c.mu.Unlock()
}

func (c *Callbacks) TriggerFlowStarted(flow model.SubscriptionFlow, data any) {
	c.log.Debug().Str("flow", string(flow)).Msg("flow started")
	c.mu.Lock()
	fns := append(([]func(model.SubscriptionFlow, any))(nil), c.started...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(flow, data)
	}
}

func (c *Callbacks) TriggerFlowCanceled(flow model.SubscriptionFlow) {
	c.log.Debug().Str("flow", string(flow)).Msg("flow canceled")
	c.mu.Lock()
	fns := append(([]func(model.SubscriptionFlow))(nil), c.canceled...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(flow)
	}
}

func (c *Callbacks) TriggerPayConfirmOpened(view adapter.ActivityPort) {
	c.log.Debug().Msg("pay confirm opened")
	c.mu.Lock()
	fns := append(([]func(adapter.ActivityPort))(nil), c.confirmOpened...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(view)
	}
}

func (c *Callbacks) TriggerPaymentResponse(resp *model.PaymentResponse) {
	c.log.Debug().Msg("payment response")
	c.mu.Lock()
	fns := append(([]func(*model.PaymentResponse))(nil), c.responses...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(resp)
	}
}
