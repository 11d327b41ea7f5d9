// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"subscribe-payflow/internal/domain"
)

// ResponseLock serializes delivery of the same provider response. A
// redirect can be replayed by a reload while the first delivery is still
// being processed.
type ResponseLock struct {
	cli    RedisClient
	prefix string
	ttl    time.Duration
	tries  int
	wait   time.Duration
}

func NewResponseLock(c RedisClient, prefix string, ttl time.Duration) *ResponseLock {
	return &ResponseLock{cli: c, prefix: prefix, ttl: ttl, tries: 5, wait: 50 * time.Millisecond}
}

// TryLock acquires the lock for id and returns the token needed to release
// it. It returns domain.ErrResponseInFlight when another holder keeps it.
func (l *ResponseLock) TryLock(ctx context.Context, id string) (string, error) {
	token := uuid.NewString()
	k := key(l.prefix, "response_lock", id)
	for i := 0; i < l.tries; i++ {
		ok, err := l.cli.SetNX(ctx, k, token, l.ttl)
		if err != nil {
			continue
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(l.wait):
		}
	}
	return "", domain.ErrResponseInFlight
}

func (l *ResponseLock) Unlock(ctx context.Context, id, token string) error {
	_, err := l.cli.DelIfEquals(ctx, key(l.prefix, "response_lock", id), token)
	return err
}
