package adapter

import (
	"context"

	"subscribe-payflow/internal/domain/model"
)

// EventManager records analytics events. A nil params means no parameters.
type EventManager interface {
	LogSwgEvent(ctx context.Context, kind model.EventKind, isPublic bool, params *model.EventParams)
}

// AnalyticsService holds the analytics context of the current reader.
type AnalyticsService interface {
	SetSku(sku string)
	SetTransactionID(id string)
	TransactionID() string
	AddLabels(labels ...string)
}

// ErrorReporter forwards unexpected errors to the error sink.
type ErrorReporter interface {
	Error(ctx context.Context, msg string, err error)
}
