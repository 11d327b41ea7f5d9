package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"subscribe-payflow/internal/application"
	"subscribe-payflow/internal/config"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/infra/adapters/activity"
	"subscribe-payflow/internal/infra/redis"
)

// Payflow is the facade surface the host exposes.
type Payflow interface {
	Subscribe(ctx context.Context, readerID string, req model.SubscriptionRequest) (*application.StartResult, error)
	Contribute(ctx context.Context, readerID string, req model.SubscriptionRequest) (*application.StartResult, error)
	DeliverResponse(ctx context.Context, readerID string, raw any, providerErr error, via model.Delivery) error
	Result(ctx context.Context, readerID string) (*model.PurchaseResult, error)
	CompletePurchase(ctx context.Context, readerID string) error
	ConfirmView(readerID string) (activity.View, bool)
	RelayEntitlements(readerID, jwt string) error
	RegisterInlineSlot(readerID, slotID, attrValue string, children int)
	SetInlineCTA(readerID string, enabled bool, configID string)
	Entitlements(ctx context.Context, readerID string) (redis.EntitlementsState, error)
}

var _ Payflow = (*application.PayflowFacade)(nil)

// Ledger is the read side of the purchase log.
type Ledger interface {
	FindByOrderID(ctx context.Context, orderID string) ([]*model.PurchaseLogEntry, error)
	CountByOutcome(ctx context.Context) (map[model.ReconciliationKind]int64, error)
}

// Pinger reports the health of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	cfg     config.HTTPConfig
	metrics config.MetricsConfig
	payflow Payflow
	ledger  Ledger
	checks  map[string]Pinger
	log     *zerolog.Logger
	server  *http.Server
}

// NewServer builds the host. The ledger routes are only mounted when ledger
// is non-nil.
func NewServer(cfg config.HTTPConfig, metricsCfg config.MetricsConfig, payflow Payflow, ledger Ledger, checks map[string]Pinger, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		metrics: metricsCfg,
		payflow: payflow,
		ledger:  ledger,
		checks:  checks,
		log:     logger,
	}
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   s.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", readerHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}).Handler)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/health", s.handleHealth)
	if s.metrics.Enabled {
		r.Handle(s.metrics.Path, promhttp.Handler())
	}
	if s.ledger != nil {
		r.Route("/ledger", func(r chi.Router) {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, s.cfg.RateWindow))
			r.Get("/outcomes", s.handleOutcomes)
			r.Get("/orders/{orderID}", s.handleOrder)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.RateLimit, s.cfg.RateWindow))
		r.Use(s.readerID)

		r.Post("/subscribe", s.handleStart(false))
		r.Post("/contribute", s.handleStart(true))
		r.Post("/inline-cta", s.handleInlineCTA)
		r.Get("/entitlements", s.handleEntitlements)

		r.Route("/pay", func(r chi.Router) {
			r.Post("/response", s.handlePayResponse)
			r.Get("/redirect", s.handlePayRedirect)
			r.Get("/result", s.handleResult)
			r.Post("/complete", s.handleComplete)
			r.Get("/confirm", s.handleConfirmView)
			r.Post("/confirm/entitlements", s.handleConfirmEntitlements)
		})
	})
	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
