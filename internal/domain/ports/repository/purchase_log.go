package repository

import (
	"context"

	"subscribe-payflow/internal/domain/model"
)

// -----------------------------
// Purchase ledger
// -----------------------------

// PurchaseLogRepository keeps an append-only record of decoded purchases
// and their transaction id reconciliation.
type PurchaseLogRepository interface {
	Save(ctx context.Context, e *model.PurchaseLogEntry) error
	FindByOrderID(ctx context.Context, orderID string) ([]*model.PurchaseLogEntry, error)
	CountByOutcome(ctx context.Context) (map[model.ReconciliationKind]int64, error)
}
