// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"subscribe-payflow/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New creates a zerolog logger configured from config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. Sampling can be enabled to reduce noise in prod.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var base zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || dev {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	if cfg.Sampling && !dev {
		// Simple sampling: keep first 100, then 1 every 100 thereafter.
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled
	}
	return &base
}

type ctxKey string

const (
	ctxTraceID ctxKey = "trace_id"
	ctxFlowID  ctxKey = "flow_id"
	ctxTxID    ctxKey = "transaction_id"
	ctxPubID   ctxKey = "publication_id"
	ctxReader  ctxKey = "reader_id"
)

// With attaches the flow fields carried by ctx (trace_id, flow_id,
// transaction_id, publication_id, reader_id).
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	for _, k := range []ctxKey{ctxTraceID, ctxFlowID, ctxTxID, ctxPubID, ctxReader} {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			l = l.Str(string(k), v)
		}
	}
	logger := l.Logger()
	return &logger
}

// TraceDuration logs start and end with elapsed duration at TRACE level.
// Usage: defer logging.TraceDuration(logger, "PayStartFlow.Start")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		elapsed := time.Since(start)
		logger.Trace().Str("method", name).Dur("duration", elapsed).Msg("finish")
	}
}

// Redact hides tokens when not in dev; keep short/preview.
func Redact(s string, dev bool) string {
	if dev {
		return s
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-2:]
}

// Helpers to put IDs into context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxTraceID, id)
}
func WithFlowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxFlowID, id)
}
func WithTransactionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxTxID, id)
}
func WithPublicationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxPubID, id)
}

func WithReaderID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxReader, id)
}

// FlowID returns the flow id carried by ctx, or "".
func FlowID(ctx context.Context) string {
	v, _ := ctx.Value(ctxFlowID).(string)
	return v
}

// ReaderID returns the reader id carried by ctx, or "".
func ReaderID(ctx context.Context) string {
	v, _ := ctx.Value(ctxReader).(string)
	return v
}

// Expose global (optional). Prefer injection where possible.
var Global = log.Logger
