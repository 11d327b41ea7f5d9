package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/domain/ports/repository"
)

type executor interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

var _ executor = (*pgxpool.Pool)(nil)

type PurchaseLogRepo struct {
	db executor
}

func NewPurchaseLogRepo(db *pgxpool.Pool) *PurchaseLogRepo {
	return &PurchaseLogRepo{db: db}
}

var _ repository.PurchaseLogRepository = (*PurchaseLogRepo)(nil)

func (r *PurchaseLogRepo) Save(ctx context.Context, e *model.PurchaseLogEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	raw := e.Raw
	if raw == "" {
		raw = "{}"
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO purchase_events (
			id, flow_id, order_id, sku, product_type, old_sku,
			local_transaction_id, provider_transaction_id, outcome,
			redirect, has_entitlements, raw, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12::jsonb,$13)
	`, e.ID, e.FlowID, e.OrderID, e.SKU, string(e.ProductType), e.OldSKU,
		e.LocalTransactionID, e.ProviderTransactionID, string(e.Outcome),
		e.Redirect, e.HasEntitlements, raw, e.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}

// FindByOrderID lists the entries of one order, oldest first.
func (r *PurchaseLogRepo) FindByOrderID(ctx context.Context, orderID string) ([]*model.PurchaseLogEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, flow_id, order_id, sku, product_type, old_sku,
		       local_transaction_id, provider_transaction_id, outcome,
		       redirect, has_entitlements, raw::text, created_at
		FROM purchase_events WHERE order_id=$1 ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.PurchaseLogEntry
	for rows.Next() {
		var (
			e           model.PurchaseLogEntry
			productType string
			outcome     string
		)
		if err := rows.Scan(&e.ID, &e.FlowID, &e.OrderID, &e.SKU, &productType, &e.OldSKU,
			&e.LocalTransactionID, &e.ProviderTransactionID, &outcome,
			&e.Redirect, &e.HasEntitlements, &e.Raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ProductType = model.ProductType(productType)
		e.Outcome = model.ReconciliationKind(outcome)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *PurchaseLogRepo) CountByOutcome(ctx context.Context) (map[model.ReconciliationKind]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT outcome, COUNT(*) FROM purchase_events GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[model.ReconciliationKind]int64{}
	for rows.Next() {
		var (
			outcome string
			n       int64
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[model.ReconciliationKind(outcome)] = n
	}
	return out, rows.Err()
}
