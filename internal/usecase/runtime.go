// File: internal/usecase/runtime.go
package usecase

import (
	"sync"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain/ports/adapter"
	"subscribe-payflow/internal/domain/ports/repository"
)

// Deps are the collaborators shared by every flow of a runtime.
// Purchases and Errors are optional.
type Deps struct {
	PaymentClient adapter.PaymentClient
	Activities    adapter.Activities
	Page          adapter.Page
	Entitlements  adapter.EntitlementsManager
	Callbacks     adapter.Callbacks
	Events        adapter.EventManager
	Analytics     adapter.AnalyticsService
	ClientConfig  adapter.ClientConfigManager
	Storage       adapter.Storage
	Errors        adapter.ErrorReporter
	Purchases     repository.PurchaseLogRepository
}

// RuntimeConfig is the static part of the runtime configuration.
type RuntimeConfig struct {
	PublicationID   string
	FrontendBaseURL string
	WindowOpenMode  string
	PayEnvironment  string
	PlayEnvironment string
	ClientVersion   string
	InlineCTA       bool
	InlineConfigID  string
}

// Runtime owns the state that outlives a single flow: whether an in-page
// provider response is expected, whether a missing provider transaction id
// was already reported, and the inline CTA selection.
type Runtime struct {
	deps Deps
	cfg  RuntimeConfig
	log  *zerolog.Logger

	mu                  sync.Mutex
	waitingForPayClient bool
	noTxIDLogged        bool
	inlineCTA           bool
	inlineConfigID      string
	activeStart         *PayStartFlow
}

func NewRuntime(deps Deps, cfg RuntimeConfig, logger *zerolog.Logger) *Runtime {
	if cfg.FrontendBaseURL == "" {
		cfg.FrontendBaseURL = "https://news.google.com"
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "0.0.0"
	}
	return &Runtime{
		deps:           deps,
		cfg:            cfg,
		log:            logger,
		inlineCTA:      cfg.InlineCTA,
		inlineConfigID: cfg.InlineConfigID,
	}
}

func (r *Runtime) Deps() Deps            { return r.deps }
func (r *Runtime) Config() RuntimeConfig { return r.cfg }

// SetWaitingForPayClient records whether the next provider response is
// expected in-page. A response arriving while this is false came back
// through a redirect.
func (r *Runtime) SetWaitingForPayClient(v bool) {
	r.mu.Lock()
	r.waitingForPayClient = v
	r.mu.Unlock()
}

func (r *Runtime) WaitingForPayClient() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waitingForPayClient
}

// SetInlineCTA switches inline confirmation on or off for later flows.
func (r *Runtime) SetInlineCTA(enabled bool, configID string) {
	r.mu.Lock()
	r.inlineCTA = enabled
	r.inlineConfigID = configID
	r.mu.Unlock()
}

func (r *Runtime) InlineCTA() (enabled bool, configID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inlineCTA, r.inlineConfigID
}

// markNoTxIDLogged sets the sticky flag and returns its previous value.
func (r *Runtime) markNoTxIDLogged() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.noTxIDLogged
	r.noTxIDLogged = true
	return prev
}

// setActiveStartFlow remembers the flow awaiting a provider response.
func (r *Runtime) setActiveStartFlow(f *PayStartFlow) {
	r.mu.Lock()
	r.activeStart = f
	r.mu.Unlock()
}

// takeActiveStartFlow returns and forgets the flow awaiting a response.
// It is nil after a redirect.
func (r *Runtime) takeActiveStartFlow() *PayStartFlow {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.activeStart
	r.activeStart = nil
	return f
}
