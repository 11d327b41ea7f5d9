// File: internal/infra/analytics/analytics.go
package analytics

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/domain/ports/adapter"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/metrics"
)

var (
	_ adapter.EventManager     = (*EventManager)(nil)
	_ adapter.AnalyticsService = (*Service)(nil)
	_ adapter.ErrorReporter    = (*ErrorReporter)(nil)
)

// EventManager writes analytics events to the event log and counts them.
type EventManager struct {
	log *zerolog.Logger
}

func NewEventManager(logger *zerolog.Logger) *EventManager {
	l := logger.With().Str("component", "swg_events").Logger()
	return &EventManager{log: &l}
}

func (m *EventManager) LogSwgEvent(ctx context.Context, kind model.EventKind, isPublic bool, params *model.EventParams) {
	metrics.IncSwgEvent(string(kind), isPublic)
	ev := logging.With(ctx, m.log).Info().
		Str("event_id", ulid.Make().String()).
		Str("event", string(kind)).
		Bool("public", isPublic)
	if params != nil {
		ev = ev.Interface("params", params)
	}
	ev.Msg("swg event")
}

// Service is the analytics context of one reader. The local transaction id
// is generated on construction.
type Service struct {
	mu     sync.Mutex
	sku    string
	txID   string
	labels []string
}

func NewService() *Service {
	return &Service{txID: uuid.NewString()}
}

func (s *Service) SetSku(sku string) {
	s.mu.Lock()
	s.sku = sku
	s.mu.Unlock()
}

func (s *Service) Sku() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sku
}

func (s *Service) SetTransactionID(id string) {
	s.mu.Lock()
	s.txID = id
	s.mu.Unlock()
}

func (s *Service) TransactionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txID
}

// AddLabels appends labels, skipping ones already present.
func (s *Service) AddLabels(labels ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range labels {
		dup := false
		for _, have := range s.labels {
			if have == l {
				dup = true
				break
			}
		}
		if !dup {
			s.labels = append(s.labels, l)
		}
	}
}

func (s *Service) Labels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.labels...)
}

// ErrorReporter logs unexpected errors at error level.
type ErrorReporter struct {
	log *zerolog.Logger
}

func NewErrorReporter(logger *zerolog.Logger) *ErrorReporter {
	return &ErrorReporter{log: logger}
}

func (r *ErrorReporter) Error(ctx context.Context, msg string, err error) {
	logging.With(ctx, r.log).Error().Err(err).Msg(msg)
}
