//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/domain/ports/adapter"
	"subscribe-payflow/internal/domain/ports/repository"
	"subscribe-payflow/internal/usecase"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func strPtr(s string) *string { return &s }

// recorder keeps the cross-collaborator call order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentClient ----

type startCall struct {
	Req  *model.PaymentDataRequest
	Opts model.PaymentOptions
}

type MockPaymentClient struct {
	mu       sync.Mutex
	Starts   []startCall
	StartErr error
	Handler  adapter.ResponseHandler
}

var _ adapter.PaymentClient = (*MockPaymentClient)(nil)

func (m *MockPaymentClient) Start(ctx context.Context, req *model.PaymentDataRequest, opts model.PaymentOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Starts = append(m.Starts, startCall{Req: req, Opts: opts})
	return m.StartErr
}

func (m *MockPaymentClient) OnResponse(h adapter.ResponseHandler) { m.Handler = h }

// ---- Mock Page / Element ----

type MockElement struct {
	id       string
	attrs    map[string]string
	Children int
}

var _ adapter.Element = (*MockElement)(nil)

func (e *MockElement) ID() string              { return e.id }
func (e *MockElement) Attr(name string) string { return e.attrs[name] }
func (e *MockElement) ClearChildren()          { e.Children = 0 }

type MockPage struct {
	Slots        []*MockElement
	DialogFrames int
}

var _ adapter.Page = (*MockPage)(nil)

func (p *MockPage) FindInlineSlot(attr, configID string) adapter.Element {
	for _, el := range p.Slots {
		if model.InlineSlotMatches(el.Attr(attr), configID) {
			return el
		}
	}
	return nil
}

func (p *MockPage) NewDialogFrame() adapter.Element {
	p.DialogFrames++
	return &MockElement{id: fmt.Sprintf("dialog-%d", p.DialogFrames)}
}

// ---- Mock Activities / Port ----

type openCall struct {
	Target adapter.Element
	URL    string
	Params map[string]any
}

type MockActivities struct {
	Opens   []openCall
	OpenErr error
	Port    *MockPort
}

var _ adapter.Activities = (*MockActivities)(nil)

func (m *MockActivities) OpenIframe(ctx context.Context, target adapter.Element, url string, params map[string]any) (adapter.ActivityPort, error) {
	m.Opens = append(m.Opens, openCall{Target: target, URL: url, Params: params})
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	return m.Port, nil
}

type MockPort struct {
	ReadyErr    error
	ReadyCh     chan struct{} // when set, WhenReady blocks until it is closed
	AcceptErr   error
	Executed    []any
	AcceptCalls int
	resizeCB    func(int)
	entCB       func(string)
}

var _ adapter.ActivityPort = (*MockPort)(nil)

func (p *MockPort) WhenReady(ctx context.Context) error {
	if p.ReadyCh != nil {
		select {
		case <-p.ReadyCh:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.ReadyErr
}
func (p *MockPort) AcceptResult(ctx context.Context) error {
	p.AcceptCalls++
	return p.AcceptErr
}
func (p *MockPort) Execute(msg any) error {
	p.Executed = append(p.Executed, msg)
	return nil
}
func (p *MockPort) OnResizeRequest(cb func(int))   { p.resizeCB = cb }
func (p *MockPort) OnEntitlements(cb func(string)) { p.entCB = cb }

// SendEntitlements simulates the view posting an entitlements message.
func (p *MockPort) SendEntitlements(jwt string) {
	if p.entCB != nil {
		p.entCB(jwt)
	}
}

// ---- Mock EntitlementsManager ----

type MockEntitlements struct {
	rec *recorder
}

var _ adapter.EntitlementsManager = (*MockEntitlements)(nil)

func (m *MockEntitlements) PushNextEntitlements(ctx context.Context, raw string) {
	m.rec.add("pushNextEntitlements:%s", raw)
}
func (m *MockEntitlements) Reset(ctx context.Context, expectPositive bool) {
	m.rec.add("reset:%v", expectPositive)
}
func (m *MockEntitlements) SetToastShown(ctx context.Context, shown bool) {
	m.rec.add("setToastShown:%v", shown)
}
func (m *MockEntitlements) BlockNextNotification(ctx context.Context) {
	m.rec.add("blockNextNotification")
}
func (m *MockEntitlements) UnblockNextNotification(ctx context.Context) {
	m.rec.add("unblockNextNotification")
}

// ---- Mock Callbacks ----

type MockCallbacks struct {
	Started       []model.SubscriptionFlow
	StartedData   []any
	Canceled      []model.SubscriptionFlow
	ConfirmOpened []adapter.ActivityPort
	Responses     []*model.PaymentResponse
	OnResponse    func(resp *model.PaymentResponse)
}

var _ adapter.Callbacks = (*MockCallbacks)(nil)

func (m *MockCallbacks) TriggerFlowStarted(flow model.SubscriptionFlow, data any) {
	m.Started = append(m.Started, flow)
	m.StartedData = append(m.StartedData, data)
}
func (m *MockCallbacks) TriggerFlowCanceled(flow model.SubscriptionFlow) {
	m.Canceled = append(m.Canceled, flow)
}
func (m *MockCallbacks) TriggerPayConfirmOpened(view adapter.ActivityPort) {
	m.ConfirmOpened = append(m.ConfirmOpened, view)
}
func (m *MockCallbacks) TriggerPaymentResponse(resp *model.PaymentResponse) {
	m.Responses = append(m.Responses, resp)
	if m.OnResponse != nil {
		m.OnResponse(resp)
	}
}

// ---- Mock EventManager ----

type loggedEvent struct {
	Kind   model.EventKind
	Public bool
	Params *model.EventParams
}

type MockEvents struct {
	mu     sync.Mutex
	Events []loggedEvent
}

var _ adapter.EventManager = (*MockEvents)(nil)

func (m *MockEvents) LogSwgEvent(ctx context.Context, kind model.EventKind, isPublic bool, params *model.EventParams) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, loggedEvent{Kind: kind, Public: isPublic, Params: params})
}

func (m *MockEvents) Kinds() []model.EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.EventKind, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Kind
	}
	return out
}

func (m *MockEvents) Find(kind model.EventKind) (loggedEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.Kind == kind {
			return e, true
		}
	}
	return loggedEvent{}, false
}

// ---- Mock AnalyticsService ----

type MockAnalytics struct {
	TxID    string
	Skus    []string
	SetTxID []string
	Labels  []string
}

var _ adapter.AnalyticsService = (*MockAnalytics)(nil)

func (m *MockAnalytics) SetSku(sku string)          { m.Skus = append(m.Skus, sku) }
func (m *MockAnalytics) SetTransactionID(id string) { m.SetTxID = append(m.SetTxID, id); m.TxID = id }
func (m *MockAnalytics) TransactionID() string      { return m.TxID }
func (m *MockAnalytics) AddLabels(labels ...string) { m.Labels = append(m.Labels, labels...) }

// ---- Mock ClientConfigManager ----

type MockClientConfig struct {
	Config    model.ClientConfig
	Err       error
	ForceLang bool
	Lang      string
}

var _ adapter.ClientConfigManager = (*MockClientConfig)(nil)

func (m *MockClientConfig) GetClientConfig(ctx context.Context) (model.ClientConfig, error) {
	return m.Config, m.Err
}
func (m *MockClientConfig) ShouldForceLangInIframes() bool { return m.ForceLang }
func (m *MockClientConfig) GetLanguage() string            { return m.Lang }

// ---- Mock Storage ----

type storageSet struct {
	Key, Value string
	Persist    bool
}

type MockStorage struct {
	Sets []storageSet
}

var _ adapter.Storage = (*MockStorage)(nil)

func (m *MockStorage) Set(ctx context.Context, key, value string, persist bool) error {
	m.Sets = append(m.Sets, storageSet{key, value, persist})
	return nil
}

// ---- Mock ErrorReporter ----

type reportedError struct {
	Msg string
	Err error
}

type MockErrors struct {
	Reported []reportedError
}

var _ adapter.ErrorReporter = (*MockErrors)(nil)

func (m *MockErrors) Error(ctx context.Context, msg string, err error) {
	m.Reported = append(m.Reported, reportedError{msg, err})
}

// =============================
// Repositories
// =============================

type MockPurchaseLog struct {
	Saved []*model.PurchaseLogEntry
}

var _ repository.PurchaseLogRepository = (*MockPurchaseLog)(nil)

func (m *MockPurchaseLog) Save(ctx context.Context, e *model.PurchaseLogEntry) error {
	m.Saved = append(m.Saved, e)
	return nil
}

func (m *MockPurchaseLog) FindByOrderID(ctx context.Context, orderID string) ([]*model.PurchaseLogEntry, error) {
	var out []*model.PurchaseLogEntry
	for _, e := range m.Saved {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockPurchaseLog) CountByOutcome(ctx context.Context) (map[model.ReconciliationKind]int64, error) {
	out := map[model.ReconciliationKind]int64{}
	for _, e := range m.Saved {
		out[e.Outcome]++
	}
	return out, nil
}

// =============================
// Fixture
// =============================

type fixture struct {
	rec          *recorder
	pay          *MockPaymentClient
	activities   *MockActivities
	port         *MockPort
	page         *MockPage
	entitlements *MockEntitlements
	callbacks    *MockCallbacks
	events       *MockEvents
	analytics    *MockAnalytics
	clientConfig *MockClientConfig
	storage      *MockStorage
	errors       *MockErrors
	purchases    *MockPurchaseLog
	rt           *usecase.Runtime
}

func newFixture(cfg usecase.RuntimeConfig) *fixture {
	rec := &recorder{}
	port := &MockPort{}
	f := &fixture{
		rec:          rec,
		pay:          &MockPaymentClient{},
		port:         port,
		activities:   &MockActivities{Port: port},
		page:         &MockPage{},
		entitlements: &MockEntitlements{rec: rec},
		callbacks:    &MockCallbacks{},
		events:       &MockEvents{},
		analytics:    &MockAnalytics{TxID: "LOCAL_TX"},
		clientConfig: &MockClientConfig{},
		storage:      &MockStorage{},
		errors:       &MockErrors{},
		purchases:    &MockPurchaseLog{},
	}
	if cfg.PublicationID == "" {
		cfg.PublicationID = "pub1"
	}
	if cfg.PayEnvironment == "" {
		cfg.PayEnvironment = "TEST"
	}
	if cfg.PlayEnvironment == "" {
		cfg.PlayEnvironment = "STAGING"
	}
	f.rt = usecase.NewRuntime(usecase.Deps{
		PaymentClient: f.pay,
		Activities:    f.activities,
		Page:          f.page,
		Entitlements:  f.entitlements,
		Callbacks:     f.callbacks,
		Events:        f.events,
		Analytics:     f.analytics,
		ClientConfig:  f.clientConfig,
		Storage:       f.storage,
		Errors:        f.errors,
		Purchases:     f.purchases,
	}, cfg, newTestLogger())
	return f
}
