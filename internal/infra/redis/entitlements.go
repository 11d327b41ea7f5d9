package redis

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain/ports/adapter"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/metrics"
)

const (
	entNext           = "next"
	entExpectPositive = "expect_positive"
	entToastShown     = "toast_shown"
	entBlocked        = "notification_blocked"
)

var _ adapter.EntitlementsManager = (*EntitlementsManager)(nil)

// EntitlementsManager keeps the reader's post-purchase entitlements state in
// redis so the publisher page can pick it up after the flow returns.
type EntitlementsManager struct {
	cli    RedisClient
	prefix string
	ttl    time.Duration
	log    *zerolog.Logger
}

// EntitlementsState is the stored state of one reader.
type EntitlementsState struct {
	Next                string `json:"next,omitempty"`
	ExpectPositive      bool   `json:"expectPositive"`
	ToastShown          bool   `json:"toastShown"`
	NotificationBlocked bool   `json:"notificationBlocked"`
}

func NewEntitlementsManager(cli RedisClient, prefix string, ttl time.Duration, logger *zerolog.Logger) *EntitlementsManager {
	return &EntitlementsManager{cli: cli, prefix: prefix, ttl: ttl, log: logger}
}

func (m *EntitlementsManager) PushNextEntitlements(ctx context.Context, raw string) {
	m.set(ctx, entNext, raw)
}

// Reset drops any pending entitlements and records whether the next
// entitlements are expected to be positive.
func (m *EntitlementsManager) Reset(ctx context.Context, expectPositive bool) {
	if err := m.cli.Del(ctx, m.key(ctx, entNext), m.key(ctx, entToastShown)); err != nil {
		m.warn(ctx, err, "reset")
	}
	m.set(ctx, entExpectPositive, flag(expectPositive))
}

func (m *EntitlementsManager) SetToastShown(ctx context.Context, shown bool) {
	m.set(ctx, entToastShown, flag(shown))
}

func (m *EntitlementsManager) BlockNextNotification(ctx context.Context) {
	m.set(ctx, entBlocked, flag(true))
}

func (m *EntitlementsManager) UnblockNextNotification(ctx context.Context) {
	if err := m.cli.Del(ctx, m.key(ctx, entBlocked)); err != nil {
		m.warn(ctx, err, "unblock notification")
	}
}

// State reads the reader's stored state.
func (m *EntitlementsManager) State(ctx context.Context) (EntitlementsState, error) {
	var st EntitlementsState
	next, err := m.cli.Get(ctx, m.key(ctx, entNext))
	switch {
	case err == nil:
		metrics.IncCacheRequest("entitlements", "hit")
		st.Next = next
	case IsNil(err):
		metrics.IncCacheRequest("entitlements", "miss")
	default:
		return st, err
	}
	for name, dst := range map[string]*bool{
		entExpectPositive: &st.ExpectPositive,
		entToastShown:     &st.ToastShown,
		entBlocked:        &st.NotificationBlocked,
	} {
		v, err := m.cli.Get(ctx, m.key(ctx, name))
		if err != nil && !IsNil(err) {
			return st, err
		}
		*dst = v == "1"
	}
	return st, nil
}

func (m *EntitlementsManager) set(ctx context.Context, name, value string) {
	if err := m.cli.Set(ctx, m.key(ctx, name), value, m.ttl); err != nil {
		m.warn(ctx, err, name)
	}
}

func (m *EntitlementsManager) warn(ctx context.Context, err error, op string) {
	logging.With(ctx, m.log).Warn().Err(err).Str("op", op).Msg("entitlements state write failed")
}

func (m *EntitlementsManager) key(ctx context.Context, name string) string {
	return key(m.prefix, "entitlements", readerOf(ctx), name)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
