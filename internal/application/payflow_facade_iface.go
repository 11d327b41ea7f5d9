package application

import (
	"context"
	"time"

	"subscribe-payflow/internal/domain/ports/adapter"
	"subscribe-payflow/internal/domain/ports/repository"
	"subscribe-payflow/internal/infra/redis"
)

// ---- small interfaces to decouple the facade from concrete adapters ----

// ResponseLocker serializes response delivery per reader.
type ResponseLocker interface {
	TryLock(ctx context.Context, id string) (string, error)
	Unlock(ctx context.Context, id, token string) error
}

// EntitlementsReader exposes the stored post-purchase state of a reader.
type EntitlementsReader interface {
	State(ctx context.Context) (redis.EntitlementsState, error)
}

// SharedDeps are the collaborators every reader session shares.
type SharedDeps struct {
	Events       adapter.EventManager
	Entitlements adapter.EntitlementsManager
	Storage      adapter.Storage
	ClientConfig adapter.ClientConfigManager
	Errors       adapter.ErrorReporter
	Purchases    repository.PurchaseLogRepository

	// optional
	Locker       ResponseLocker
	EntitleState EntitlementsReader
}

// Options configure the provider hand-off of each session.
type Options struct {
	PayURL     string
	ReturnURL  string
	SessionTTL time.Duration
}
