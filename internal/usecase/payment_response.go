// File: internal/usecase/payment_response.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/metrics"
)

// PaymentResponseHandler processes provider responses: it reconciles the
// transaction id, decodes the payload, reports the outcome and starts the
// complete flow.
type PaymentResponseHandler struct {
	rt      *Runtime
	decoder *ResponseDecoder

	// newCompleteFlow is replaceable in tests.
	newCompleteFlow func(rt *Runtime) *PayCompleteFlow
}

func NewPaymentResponseHandler(rt *Runtime, decoder *ResponseDecoder) *PaymentResponseHandler {
	return &PaymentResponseHandler{rt: rt, decoder: decoder, newCompleteFlow: NewPayCompleteFlow}
}

// Register installs the handler on the payment client.
func (h *PaymentResponseHandler) Register() {
	h.rt.Deps().PaymentClient.OnResponse(h.Handle)
}

// Handle processes one provider response. Cancellations return nil; other
// rejections and undecodable payloads are returned after being reported.
// Either way the outcome is delivered to the publisher's PaymentResponse.
// A redirect delivery is always the redirect path; an in-page delivery is
// the redirect path only when no purchase was awaited.
func (h *PaymentResponseHandler) Handle(ctx context.Context, raw any, respErr error, via model.Delivery) error {
	deps := h.rt.Deps()
	log := logging.With(ctx, h.rt.log)

	deps.Entitlements.BlockNextNotification(ctx)
	resp := model.NewPaymentResponse()
	deps.Callbacks.TriggerPaymentResponse(resp)

	start := h.rt.takeActiveStartFlow()
	if respErr != nil {
		return h.reject(ctx, resp, start, respErr)
	}

	isRedirect := via == model.DeliveryRedirect || !h.rt.WaitingForPayClient()
	h.rt.SetWaitingForPayClient(false)

	cf := h.newCompleteFlow(h.rt)
	bg := context.WithoutCancel(ctx)
	res, err := h.decoder.Decode(raw, func() {
		if err := cf.Complete(bg); err != nil {
			log.Error().Err(err).Msg("complete flow failed")
		}
	})
	if err != nil {
		reason := "envelope"
		if errors.Is(err, domain.ErrMalformedResponse) {
			reason = "malformed"
		}
		metrics.IncDecodeFailure(reason)
		return h.reject(ctx, resp, start, err)
	}

	outcome := h.reconcile(ctx, res.ProviderTransactionID, isRedirect)

	sku, _ := res.Receipt.SKU()
	flow := res.Classification.ProductType.Flow()
	clientConfig, err := deps.ClientConfig.GetClientConfig(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("client config unavailable; using defaults for payment complete events")
	}
	if clientConfig.UseUpdatedOfferFlows {
		deps.Events.LogSwgEvent(ctx, model.EventPayPaymentComplete, true, model.NewEventParams(sku, "", ""))
	}
	deps.Events.LogSwgEvent(ctx, model.ActionPaymentComplete, true, model.NewEventParams(sku, flow, ""))
	completeEvent := model.EventSubscriptionPaymentComplete
	if flow == model.SubscriptionFlowContribute {
		completeEvent = model.EventContributionPaymentComplete
	}
	deps.Events.LogSwgEvent(ctx, completeEvent, true, model.NewEventParams(sku, flow, ""))

	h.record(ctx, res, sku, outcome, isRedirect, cf.ID())
	if start != nil {
		_ = start.Resolve(StartFulfilled)
	}
	metrics.IncFlowOutcome(string(flow), "completed")

	resp.Resolve(res)

	if err := cf.Start(ctx, res); err != nil {
		log.Error().Err(err).Msg("failed to start complete flow")
	}
	return nil
}

func (h *PaymentResponseHandler) reject(ctx context.Context, resp *model.PaymentResponse, start *PayStartFlow, err error) error {
	deps := h.rt.Deps()
	log := logging.With(ctx, h.rt.log)
	resp.Reject(err)

	if domain.IsAbort(err) {
		flow := model.ProductTypeOrDefault(domain.AbortProductType(err)).Flow()
		deps.Callbacks.TriggerFlowCanceled(flow)
		deps.Events.LogSwgEvent(ctx, model.ActionUserCanceledPayflow, true, model.NewEventParams("", "", ""))
		if start != nil {
			_ = start.Resolve(StartCanceled)
		}
		metrics.IncFlowOutcome(string(flow), "canceled")
		log.Info().Str("flow", string(flow)).Msg("payment flow canceled by user")
		return nil
	}

	deps.Events.LogSwgEvent(ctx, model.EventPaymentFailed, false, model.NewEventParams("", "", ""))
	if deps.Errors != nil {
		deps.Errors.Error(ctx, "Pay failed", err)
	}
	flow := model.ProductTypeOrDefault(domain.AbortProductType(err)).Flow()
	if start != nil {
		flow = start.productType.Flow()
		_ = start.Resolve(StartFailed)
	}
	metrics.IncFlowOutcome(string(flow), "failed")
	log.Error().Err(err).Msg("payment failed")
	return err
}

// reconcile classifies the provider transaction id, emits its event and
// updates the analytics context.
func (h *PaymentResponseHandler) reconcile(ctx context.Context, provider *string, isRedirect bool) model.ReconciliationOutcome {
	deps := h.rt.Deps()
	local := deps.Analytics.TransactionID()

	var outcome model.ReconciliationOutcome
	if !isRedirect && (provider == nil || *provider == "") {
		outcome = Reconcile(local, nil, false, h.rt.markNoTxIDLogged())
	} else {
		outcome = Reconcile(local, provider, isRedirect, false)
	}

	kind, params := EventFor(outcome)
	deps.Events.LogSwgEvent(ctx, kind, true, params)
	if outcome.Kind == model.ReconciliationCannotConfirm && outcome.NewID != "" {
		deps.Analytics.SetTransactionID(outcome.NewID)
	}
	metrics.IncReconciliation(string(outcome.Kind))
	return outcome
}

func (h *PaymentResponseHandler) record(ctx context.Context, res *model.PurchaseResult, sku string, outcome model.ReconciliationOutcome, isRedirect bool, flowID string) {
	repo := h.rt.Deps().Purchases
	if repo == nil {
		return
	}
	e := &model.PurchaseLogEntry{
		ID:                    uuid.NewString(),
		FlowID:                flowID,
		OrderID:               res.Receipt.OrderID(),
		SKU:                   sku,
		ProductType:           res.Classification.ProductType,
		OldSKU:                res.Classification.OldSKU,
		LocalTransactionID:    h.rt.Deps().Analytics.TransactionID(),
		ProviderTransactionID: res.ProviderTransactionID,
		Outcome:               outcome.Kind,
		Redirect:              isRedirect,
		HasEntitlements:       res.Entitlements != nil,
		Raw:                   res.Raw,
		CreatedAt:             time.Now(),
	}
	if err := repo.Save(ctx, e); err != nil {
		logging.With(ctx, h.rt.log).Warn().Err(err).Msg("failed to record purchase")
	}
}
