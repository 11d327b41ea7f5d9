//go:build !integration

package http

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/application"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/infra/adapters/activity"
	"subscribe-payflow/internal/infra/redis"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type delivery struct {
	ReaderID string
	Raw      any
	Err      error
	Via      model.Delivery
}

type slot struct {
	ReaderID, ID, Attr string
	Children           int
}

// mockPayflow records calls and returns canned values.
type mockPayflow struct {
	mu sync.Mutex

	StartRes         *application.StartResult
	StartErr         error
	Started          []model.SubscriptionRequest
	ContributeCalled bool

	DeliverErr error
	Deliveries []delivery

	ResultRes *model.PurchaseResult
	ResultErr error

	CompleteErr error
	Completed   int

	View    activity.View
	HasView bool

	RelayErr error
	Relayed  []string

	Slots     []slot
	InlineOn  bool
	InlineCfg string

	State    redis.EntitlementsState
	StateErr error

	Readers []string
}

func (m *mockPayflow) seen(readerID string) {
	m.Readers = append(m.Readers, readerID)
}

func (m *mockPayflow) Subscribe(ctx context.Context, readerID string, req model.SubscriptionRequest) (*application.StartResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(readerID)
	m.Started = append(m.Started, req)
	return m.StartRes, m.StartErr
}

func (m *mockPayflow) Contribute(ctx context.Context, readerID string, req model.SubscriptionRequest) (*application.StartResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(readerID)
	m.Started = append(m.Started, req)
	m.ContributeCalled = true
	return m.StartRes, m.StartErr
}

func (m *mockPayflow) DeliverResponse(ctx context.Context, readerID string, raw any, providerErr error, via model.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(readerID)
	m.Deliveries = append(m.Deliveries, delivery{ReaderID: readerID, Raw: raw, Err: providerErr, Via: via})
	return m.DeliverErr
}

func (m *mockPayflow) Result(ctx context.Context, readerID string) (*model.PurchaseResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(readerID)
	return m.ResultRes, m.ResultErr
}

func (m *mockPayflow) CompletePurchase(ctx context.Context, readerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(readerID)
	m.Completed++
	return m.CompleteErr
}

func (m *mockPayflow) ConfirmView(readerID string) (activity.View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(readerID)
	return m.View, m.HasView
}

func (m *mockPayflow) RelayEntitlements(readerID, jwt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(readerID)
	m.Relayed = append(m.Relayed, jwt)
	return m.RelayErr
}

func (m *mockPayflow) RegisterInlineSlot(readerID, slotID, attrValue string, children int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Slots = append(m.Slots, slot{ReaderID: readerID, ID: slotID, Attr: attrValue, Children: children})
}

func (m *mockPayflow) SetInlineCTA(readerID string, enabled bool, configID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InlineOn = enabled
	m.InlineCfg = configID
}

func (m *mockPayflow) Entitlements(ctx context.Context, readerID string) (redis.EntitlementsState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(readerID)
	return m.State, m.StateErr
}

type mockPinger struct {
	Err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.Err }

// mockLedger serves canned purchase log reads.
type mockLedger struct {
	Entries []*model.PurchaseLogEntry
	Counts  map[model.ReconciliationKind]int64
	Err     error
	Orders  []string
}

func (m *mockLedger) FindByOrderID(ctx context.Context, orderID string) ([]*model.PurchaseLogEntry, error) {
	m.Orders = append(m.Orders, orderID)
	return m.Entries, m.Err
}

func (m *mockLedger) CountByOutcome(ctx context.Context) (map[model.ReconciliationKind]int64, error) {
	return m.Counts, m.Err
}
