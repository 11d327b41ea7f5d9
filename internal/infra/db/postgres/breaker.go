package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/domain/ports/repository"
)

var _ repository.PurchaseLogRepository = (*BreakerPurchaseLog)(nil)

// BreakerPurchaseLog guards ledger calls with a circuit breaker. While the
// breaker is open calls fail fast with gobreaker.ErrOpenState.
type BreakerPurchaseLog struct {
	inner repository.PurchaseLogRepository
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerPurchaseLog trips after failures consecutive errors and retries
// again after timeout. Duplicate saves and missing rows are not failures.
func NewBreakerPurchaseLog(inner repository.PurchaseLogRepository, failures uint32, timeout time.Duration, logger *zerolog.Logger) *BreakerPurchaseLog {
	if failures == 0 {
		failures = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BreakerPurchaseLog{
		inner: inner,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "purchase_log",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, domain.ErrAlreadyExists) || errors.Is(err, domain.ErrNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

func (b *BreakerPurchaseLog) Save(ctx context.Context, e *model.PurchaseLogEntry) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.Save(ctx, e)
	})
	return err
}

func (b *BreakerPurchaseLog) FindByOrderID(ctx context.Context, orderID string) ([]*model.PurchaseLogEntry, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.FindByOrderID(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return out.([]*model.PurchaseLogEntry), nil
}

func (b *BreakerPurchaseLog) CountByOutcome(ctx context.Context) (map[model.ReconciliationKind]int64, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.CountByOutcome(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.(map[model.ReconciliationKind]int64), nil
}

// State reports the breaker state: closed, half-open or open.
func (b *BreakerPurchaseLog) State() string { return b.cb.State().String() }
