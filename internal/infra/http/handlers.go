package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/infra/adapters/payment"
	"subscribe-payflow/internal/infra/codec"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/metrics"
)

const maxBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// payResponseBody is the page's relay of a provider answer. Exactly one of
// Response or Error is expected.
type payResponseBody struct {
	Response    json.RawMessage `json:"response"`
	Error       string          `json:"error"`
	ProductType string          `json:"productType"`
}

type inlineSlot struct {
	ID       string `json:"id"`
	Attr     string `json:"attr"`
	Children int    `json:"children"`
}

type inlineCTABody struct {
	Enabled  bool         `json:"enabled"`
	ConfigID string       `json:"configId"`
	Slots    []inlineSlot `json:"slots"`
}

type entitlementsBody struct {
	JWT string `json:"jwt"`
}

type resultBody struct {
	OrderID               string              `json:"orderId,omitempty"`
	SKU                   string              `json:"sku,omitempty"`
	ProductType           model.ProductType   `json:"productType"`
	OldSKU                *string             `json:"oldSku,omitempty"`
	ProviderTransactionID *string             `json:"providerTransactionId,omitempty"`
	OneTime               bool                `json:"oneTime"`
	Email                 string              `json:"email,omitempty"`
	Entitlements          []model.Entitlement `json:"entitlements,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, c := range s.checks {
		if err := c.Ping(ctx); err != nil {
			status[name] = "down"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "up"
	}
	writeJSON(w, code, status)
}

type outcomeSummary struct {
	Total    int64                              `json:"total"`
	Outcomes map[model.ReconciliationKind]int64 `json:"outcomes"`
}

// handleOutcomes summarizes the purchase log by reconciliation outcome.
func (s *Server) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	counts, err := s.ledger.CountByOutcome(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum := outcomeSummary{Outcomes: counts}
	if sum.Outcomes == nil {
		sum.Outcomes = map[model.ReconciliationKind]int64{}
	}
	for _, n := range counts {
		sum.Total += n
	}
	writeJSON(w, http.StatusOK, sum)
}

type ledgerEntry struct {
	ID                    string                   `json:"id"`
	FlowID                string                   `json:"flowId"`
	OrderID               string                   `json:"orderId"`
	SKU                   string                   `json:"sku"`
	ProductType           model.ProductType        `json:"productType"`
	OldSKU                *string                  `json:"oldSku,omitempty"`
	LocalTransactionID    string                   `json:"localTransactionId"`
	ProviderTransactionID *string                  `json:"providerTransactionId,omitempty"`
	Outcome               model.ReconciliationKind `json:"outcome"`
	Redirect              bool                     `json:"redirect"`
	HasEntitlements       bool                     `json:"hasEntitlements"`
	CreatedAt             time.Time                `json:"createdAt"`
}

// handleOrder lists the ledger entries recorded for one order.
func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	entries, err := s.ledger.FindByOrderID(r.Context(), orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(entries) == 0 {
		s.writeError(w, r, fmt.Errorf("order %q: %w", orderID, domain.ErrNotFound))
		return
	}
	out := make([]ledgerEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntry{
			ID:                    e.ID,
			FlowID:                e.FlowID,
			OrderID:               e.OrderID,
			SKU:                   e.SKU,
			ProductType:           e.ProductType,
			OldSKU:                e.OldSKU,
			LocalTransactionID:    e.LocalTransactionID,
			ProviderTransactionID: e.ProviderTransactionID,
			Outcome:               e.Outcome,
			Redirect:              e.Redirect,
			HasEntitlements:       e.HasEntitlements,
			CreatedAt:             e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStart(contribution bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.SubscriptionRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
			return
		}
		start := s.payflow.Subscribe
		if contribution {
			start = s.payflow.Contribute
		}
		res, err := start(r.Context(), readerFrom(r), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// handlePayResponse accepts a provider answer relayed by the page.
func (s *Server) handlePayResponse(w http.ResponseWriter, r *http.Request) {
	const endpoint = "response"
	started := time.Now()
	var body payResponseBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		observePayResponse(endpoint, "fail", "bad_json", started)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}

	var raw any
	var providerErr error
	switch {
	case body.Error == payment.ErrorCanceled:
		providerErr = domain.NewAbortError("payment canceled", body.ProductType)
	case body.Error != "":
		providerErr = &domain.ProviderError{Err: errors.New(body.Error), ProductType: body.ProductType}
	case len(body.Response) == 0 || string(body.Response) == "null":
		providerErr = &domain.ProviderError{Err: domain.ErrMalformedResponse}
	default:
		var err error
		if raw, err = decodeRelayed(body.Response); err != nil {
			observePayResponse(endpoint, "fail", "bad_json", started)
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid response"})
			return
		}
	}
	s.deliver(w, r, endpoint, raw, providerErr, model.DeliveryInPage, started)
}

// decodeRelayed keeps a string envelope as is and decodes an object with
// numbers preserved as json.Number.
func decodeRelayed(msg json.RawMessage) (any, error) {
	var envelope string
	if err := json.Unmarshal(msg, &envelope); err == nil {
		return envelope, nil
	}
	return codec.DecodeJSONObject(msg)
}

// handlePayRedirect accepts the provider's redirect-mode return.
func (s *Server) handlePayRedirect(w http.ResponseWriter, r *http.Request) {
	raw, providerErr := payment.ParseReturn(r.URL.Query())
	s.deliver(w, r, "redirect", raw, providerErr, model.DeliveryRedirect, time.Now())
}

func (s *Server) deliver(w http.ResponseWriter, r *http.Request, endpoint string, raw any, providerErr error, via model.Delivery, started time.Time) {
	if err := s.payflow.DeliverResponse(r.Context(), readerFrom(r), raw, providerErr, via); err != nil {
		observePayResponse(endpoint, "fail", "handler_error", started)
		s.writeError(w, r, err)
		return
	}
	observePayResponse(endpoint, "ok", "", started)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.payflow.Result(r.Context(), readerFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultBody(res))
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if err := s.payflow.CompletePurchase(r.Context(), readerFrom(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfirmView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.payflow.ConfirmView(readerFrom(r))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no confirmation view"})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleConfirmEntitlements(w http.ResponseWriter, r *http.Request) {
	var body entitlementsBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil || body.JWT == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "jwt is required"})
		return
	}
	if err := s.payflow.RelayEntitlements(readerFrom(r), body.JWT); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInlineCTA(w http.ResponseWriter, r *http.Request) {
	var body inlineCTABody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}
	reader := readerFrom(r)
	for _, sl := range body.Slots {
		if sl.ID == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "slot id is required"})
			return
		}
		s.payflow.RegisterInlineSlot(reader, sl.ID, sl.Attr, sl.Children)
	}
	s.payflow.SetInlineCTA(reader, body.Enabled, body.ConfigID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEntitlements(w http.ResponseWriter, r *http.Request) {
	st, err := s.payflow.Entitlements(r.Context(), readerFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func toResultBody(res *model.PurchaseResult) resultBody {
	sku, _ := res.Receipt.SKU()
	out := resultBody{
		OrderID:               res.Receipt.OrderID(),
		SKU:                   sku,
		ProductType:           res.Classification.ProductType,
		OldSKU:                res.Classification.OldSKU,
		ProviderTransactionID: res.ProviderTransactionID,
		OneTime:               res.IsOneTime(),
	}
	if res.Identity != nil {
		out.Email = res.Identity.Email
	}
	if res.Entitlements != nil {
		out.Entitlements = res.Entitlements.Entitlements
	}
	return out
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var pe *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrResponseInFlight),
		errors.Is(err, domain.ErrFlowState),
		errors.Is(err, domain.ErrSurfaceNotReady):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMalformedResponse),
		errors.Is(err, domain.ErrInvalidEnvelope):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.As(err, &pe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	ev := logging.With(r.Context(), s.log).Warn()
	if code >= http.StatusInternalServerError {
		ev = logging.With(r.Context(), s.log).Error()
	}
	ev.Err(err).Int("status", code).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func observePayResponse(endpoint, result, reason string, started time.Time) {
	metrics.PayResponseRequests.WithLabelValues(endpoint, result, reason).Inc()
	metrics.PayResponseDuration.WithLabelValues(endpoint, result).Observe(time.Since(started).Seconds())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
