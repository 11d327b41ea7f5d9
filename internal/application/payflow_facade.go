// File: internal/application/payflow_facade.go
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/infra/adapters/activity"
	"subscribe-payflow/internal/infra/adapters/payment"
	"subscribe-payflow/internal/infra/analytics"
	"subscribe-payflow/internal/infra/callbacks"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/redis"
	"subscribe-payflow/internal/usecase"
)

// Session is the pay-flow runtime of one reader with its host-side
// adapters.
type Session struct {
	ReaderID  string
	UseCase   usecase.PayflowUseCase
	Payments  *payment.Bridge
	Views     *activity.Activities
	Page      *activity.Page
	Analytics *analytics.Service

	mu       sync.Mutex
	response *model.PaymentResponse
	lastSeen time.Time
}

func (s *Session) setResponse(r *model.PaymentResponse) {
	s.mu.Lock()
	s.response = r
	s.mu.Unlock()
}

func (s *Session) lastResponse() *model.PaymentResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response
}

// StartResult is what the host returns to the page after a start.
type StartResult struct {
	FlowID        string                  `json:"flowId"`
	TransactionID string                  `json:"transactionId"`
	Pending       *payment.PendingPayment `json:"pending,omitempty"`
}

// PayflowFacade composes per-reader sessions into the operations the HTTP
// host exposes.
type PayflowFacade struct {
	shared SharedDeps
	rtCfg  usecase.RuntimeConfig
	opts   Options
	log    *zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewPayflowFacade(shared SharedDeps, rtCfg usecase.RuntimeConfig, opts Options, logger *zerolog.Logger) *PayflowFacade {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	return &PayflowFacade{
		shared:   shared,
		rtCfg:    rtCfg,
		opts:     opts,
		log:      logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Session returns the reader's session, creating it on first use.
func (f *PayflowFacade) Session(readerID string) *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[readerID]
	if !ok {
		s = f.newSession(readerID)
		f.sessions[readerID] = s
	}
	s.mu.Lock()
	s.lastSeen = f.now()
	s.mu.Unlock()
	return s
}

func (f *PayflowFacade) newSession(readerID string) *Session {
	l := f.log.With().Str("reader_id", readerID).Logger()
	cb := callbacks.New(&l)
	s := &Session{
		ReaderID:  readerID,
		Payments:  payment.NewBridge(f.opts.PayURL, f.opts.ReturnURL, &l),
		Views:     activity.NewActivities(&l),
		Page:      activity.NewPage(),
		Analytics: analytics.NewService(),
	}
	rt := usecase.NewRuntime(usecase.Deps{
		PaymentClient: s.Payments,
		Activities:    s.Views,
		Page:          s.Page,
		Entitlements:  f.shared.Entitlements,
		Callbacks:     cb,
		Events:        f.shared.Events,
		Analytics:     s.Analytics,
		ClientConfig:  f.shared.ClientConfig,
		Storage:       f.shared.Storage,
		Errors:        f.shared.Errors,
		Purchases:     f.shared.Purchases,
	}, f.rtCfg, &l)
	s.UseCase = usecase.NewPayflowUseCase(rt, &l)
	cb.OnPaymentResponse(s.setResponse)
	return s
}

// Subscribe starts a subscription purchase for the reader.
func (f *PayflowFacade) Subscribe(ctx context.Context, readerID string, req model.SubscriptionRequest) (*StartResult, error) {
	return f.start(ctx, readerID, req, false)
}

// Contribute starts a contribution purchase for the reader.
func (f *PayflowFacade) Contribute(ctx context.Context, readerID string, req model.SubscriptionRequest) (*StartResult, error) {
	return f.start(ctx, readerID, req, true)
}

func (f *PayflowFacade) start(ctx context.Context, readerID string, req model.SubscriptionRequest, contribution bool) (*StartResult, error) {
	s := f.Session(readerID)
	ctx = f.readerCtx(ctx, s)
	var (
		id  string
		err error
	)
	if contribution {
		id, err = s.UseCase.Contribute(ctx, req)
	} else {
		id, err = s.UseCase.Subscribe(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	res := &StartResult{FlowID: id, TransactionID: s.Analytics.TransactionID()}
	if p, ok := s.Payments.Pending(); ok {
		res.Pending = p
	}
	return res, nil
}

// DeliverResponse hands a provider answer to the reader's runtime.
// Deliveries for one reader never overlap.
func (f *PayflowFacade) DeliverResponse(ctx context.Context, readerID string, raw any, providerErr error, via model.Delivery) error {
	s := f.Session(readerID)
	ctx = f.readerCtx(ctx, s)
	if f.shared.Locker != nil {
		token, err := f.shared.Locker.TryLock(ctx, readerID)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.shared.Locker.Unlock(context.WithoutCancel(ctx), readerID, token); err != nil {
				logging.With(ctx, f.log).Warn().Err(err).Msg("response lock release failed")
			}
		}()
	}
	return s.Payments.Deliver(ctx, raw, providerErr, via)
}

// Result waits for the reader's latest payment response.
func (f *PayflowFacade) Result(ctx context.Context, readerID string) (*model.PurchaseResult, error) {
	resp := f.Session(readerID).lastResponse()
	if resp == nil {
		return nil, fmt.Errorf("no payment response: %w", domain.ErrNotFound)
	}
	return resp.Wait(ctx)
}

// CompletePurchase signals that the reader finished the confirmation.
func (f *PayflowFacade) CompletePurchase(ctx context.Context, readerID string) error {
	res, err := f.Result(ctx, readerID)
	if err != nil {
		return err
	}
	res.Complete()
	return nil
}

// ConfirmView returns the reader's current confirmation view.
func (f *PayflowFacade) ConfirmView(readerID string) (activity.View, bool) {
	return f.Session(readerID).Views.Current()
}

// RelayEntitlements forwards an entitlements message from the view.
func (f *PayflowFacade) RelayEntitlements(readerID, jwt string) error {
	return f.Session(readerID).Views.SendEntitlements(jwt)
}

// RegisterInlineSlot records a page slot that can host inline confirmation.
func (f *PayflowFacade) RegisterInlineSlot(readerID, slotID, attrValue string, children int) {
	f.Session(readerID).Page.AddInlineSlot(slotID, attrValue, children)
}

func (f *PayflowFacade) SetInlineCTA(readerID string, enabled bool, configID string) {
	f.Session(readerID).UseCase.SetInlineCTA(enabled, configID)
}

// Entitlements reads the reader's stored entitlements state.
func (f *PayflowFacade) Entitlements(ctx context.Context, readerID string) (redis.EntitlementsState, error) {
	if f.shared.EntitleState == nil {
		return redis.EntitlementsState{}, fmt.Errorf("entitlements state: %w", domain.ErrNotFound)
	}
	return f.shared.EntitleState.State(logging.WithReaderID(ctx, readerID))
}

// Sweep drops sessions idle for longer than the session TTL and returns
// how many were dropped.
func (f *PayflowFacade) Sweep(ctx context.Context) (int, error) {
	cutoff := f.now().Add(-f.opts.SessionTTL)
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, s := range f.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

func (f *PayflowFacade) readerCtx(ctx context.Context, s *Session) context.Context {
	ctx = logging.WithReaderID(ctx, s.ReaderID)
	ctx = logging.WithPublicationID(ctx, f.rtCfg.PublicationID)
	return logging.WithTransactionID(ctx, s.Analytics.TransactionID())
}
