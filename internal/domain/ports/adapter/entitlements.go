package adapter

import "context"

// EntitlementsManager tracks the reader's entitlements after a purchase.
// Implementations log their own transport failures; none of these calls
// may fail a purchase flow.
type EntitlementsManager interface {
	PushNextEntitlements(ctx context.Context, raw string)
	Reset(ctx context.Context, expectPositive bool)
	SetToastShown(ctx context.Context, shown bool)
	BlockNextNotification(ctx context.Context)
	UnblockNextNotification(ctx context.Context)
}

// Storage is the reader-scoped key/value store.
type Storage interface {
	Set(ctx context.Context, key, value string, persistAcrossSessions bool) error
}

// Storage keys.
const (
	StorageKeyUserToken = "USER_TOKEN"
)
