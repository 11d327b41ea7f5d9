package redis

import (
	"context"
	"time"

	"subscribe-payflow/internal/domain/ports/adapter"
	"subscribe-payflow/internal/infra/logging"
)

const anonymousReader = "anonymous"

var _ adapter.Storage = (*Storage)(nil)

// Storage keeps reader-scoped values. Values that should not outlive the
// session expire after the session TTL.
type Storage struct {
	cli        RedisClient
	prefix     string
	sessionTTL time.Duration
}

func NewStorage(cli RedisClient, prefix string, sessionTTL time.Duration) *Storage {
	return &Storage{cli: cli, prefix: prefix, sessionTTL: sessionTTL}
}

func (s *Storage) Set(ctx context.Context, name, value string, persistAcrossSessions bool) error {
	ttl := s.sessionTTL
	if persistAcrossSessions {
		ttl = 0
	}
	return s.cli.Set(ctx, s.key(ctx, name), value, ttl)
}

// Get returns the stored value, "" when absent.
func (s *Storage) Get(ctx context.Context, name string) (string, error) {
	v, err := s.cli.Get(ctx, s.key(ctx, name))
	if IsNil(err) {
		return "", nil
	}
	return v, err
}

func (s *Storage) key(ctx context.Context, name string) string {
	return key(s.prefix, "storage", readerOf(ctx), name)
}

func readerOf(ctx context.Context) string {
	if id := logging.ReaderID(ctx); id != "" {
		return id
	}
	return anonymousReader
}
