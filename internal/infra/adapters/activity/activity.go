// File: internal/infra/adapters/activity/activity.go
package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/ports/adapter"
)

var (
	_ adapter.Activities   = (*Activities)(nil)
	_ adapter.ActivityPort = (*Port)(nil)
)

// View describes an opened confirmation view for the page to render.
type View struct {
	ID       string         `json:"id"`
	Target   string         `json:"target"`
	URL      string         `json:"url"`
	Params   map[string]any `json:"params"`
	Messages []any          `json:"messages,omitempty"`
	Height   int            `json:"height,omitempty"`
	OpenedAt time.Time      `json:"openedAt"`
}

// Activities opens headless confirmation views. The host renders the
// current view and relays its messages back through the returned port.
type Activities struct {
	log *zerolog.Logger

	mu      sync.Mutex
	current *Port
}

func NewActivities(logger *zerolog.Logger) *Activities {
	return &Activities{log: logger}
}

func (a *Activities) OpenIframe(ctx context.Context, target adapter.Element, url string, params map[string]any) (adapter.ActivityPort, error) {
	if target == nil {
		return nil, fmt.Errorf("open view: nil target: %w", domain.ErrInvalidArgument)
	}
	p := &Port{view: View{
		ID:       ulid.Make().String(),
		Target:   target.ID(),
		URL:      url,
		Params:   params,
		OpenedAt: time.Now(),
	}}
	a.mu.Lock()
	a.current = p
	a.mu.Unlock()
	a.log.Debug().Str("view_id", p.view.ID).Str("target", p.view.Target).Msg("confirmation view opened")
	return p, nil
}

// Current returns a snapshot of the last opened view.
func (a *Activities) Current() (View, bool) {
	a.mu.Lock()
	p := a.current
	a.mu.Unlock()
	if p == nil {
		return View{}, false
	}
	return p.snapshot(), true
}

// SendEntitlements relays an entitlements message from the current view.
func (a *Activities) SendEntitlements(jwt string) error {
	p, err := a.port()
	if err != nil {
		return err
	}
	p.emitEntitlements(jwt)
	return nil
}

// Resize relays a resize request from the current view.
func (a *Activities) Resize(height int) error {
	p, err := a.port()
	if err != nil {
		return err
	}
	p.emitResize(height)
	return nil
}

func (a *Activities) port() (*Port, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil, fmt.Errorf("no confirmation view: %w", domain.ErrNotFound)
	}
	return a.current, nil
}

// Port is the channel to one headless view. It is ready as soon as it is
// opened and accepts its result immediately.
type Port struct {
	mu       sync.Mutex
	view     View
	resizeCB func(int)
	entCB    func(string)
}

func (p *Port) WhenReady(ctx context.Context) error { return ctx.Err() }

func (p *Port) AcceptResult(ctx context.Context) error { return ctx.Err() }

func (p *Port) Execute(msg any) error {
	p.mu.Lock()
	p.view.Messages = append(p.view.Messages, msg)
	p.mu.Unlock()
	return nil
}

func (p *Port) OnResizeRequest(cb func(int)) {
	p.mu.Lock()
	p.resizeCB = cb
	p.mu.Unlock()
}

func (p *Port) OnEntitlements(cb func(string)) {
	p.mu.Lock()
	p.entCB = cb
	p.mu.Unlock()
}

func (p *Port) emitEntitlements(jwt string) {
	p.mu.Lock()
	cb := p.entCB
	p.mu.Unlock()
	if cb != nil {
		cb(jwt)
	}
}

func (p *Port) emitResize(height int) {
	p.mu.Lock()
	p.view.Height = height
	cb := p.resizeCB
	p.mu.Unlock()
	if cb != nil {
		cb(height)
	}
}

func (p *Port) snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.view
	v.Messages = append([]any(nil), p.view.Messages...)
	return v
}
