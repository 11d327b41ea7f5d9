//go:build !integration

package application

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/redis"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockEvents struct {
	mu    sync.Mutex
	kinds []model.EventKind
}

func (m *mockEvents) LogSwgEvent(ctx context.Context, kind model.EventKind, isPublic bool, params *model.EventParams) {
	m.mu.Lock()
	m.kinds = append(m.kinds, kind)
	m.mu.Unlock()
}

func (m *mockEvents) has(kind model.EventKind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// mockEntitlements records calls per reader.
type mockEntitlements struct {
	mu    sync.Mutex
	calls map[string][]string
}

func (m *mockEntitlements) add(ctx context.Context, call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string][]string{}
	}
	r := logging.ReaderID(ctx)
	m.calls[r] = append(m.calls[r], call)
}

func (m *mockEntitlements) PushNextEntitlements(ctx context.Context, raw string) {
	m.add(ctx, "push:"+raw)
}
func (m *mockEntitlements) Reset(ctx context.Context, expectPositive bool) { m.add(ctx, "reset") }
func (m *mockEntitlements) SetToastShown(ctx context.Context, shown bool) { m.add(ctx, "toast") }
func (m *mockEntitlements) BlockNextNotification(ctx context.Context)     { m.add(ctx, "block") }
func (m *mockEntitlements) UnblockNextNotification(ctx context.Context)   { m.add(ctx, "unblock") }

func (m *mockEntitlements) State(ctx context.Context) (redis.EntitlementsState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return redis.EntitlementsState{ToastShown: len(m.calls[logging.ReaderID(ctx)]) > 0}, nil
}

func (m *mockEntitlements) of(reader string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls[reader]...)
}

type mockStorage struct{}

func (mockStorage) Set(ctx context.Context, key, value string, persist bool) error { return nil }

type mockClientConfig struct{}

func (mockClientConfig) GetClientConfig(ctx context.Context) (model.ClientConfig, error) {
	return model.ClientConfig{}, nil
}
func (mockClientConfig) ShouldForceLangInIframes() bool { return false }
func (mockClientConfig) GetLanguage() string            { return "" }

type mockLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	err      error
}

func (m *mockLocker) TryLock(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.locked = append(m.locked, id)
	return "tok-" + id, nil
}

func (m *mockLocker) Unlock(ctx context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocked = append(m.unlocked, token)
	return nil
}
