// File: internal/usecase/pay_start_flow.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/metrics"
)

type StartFlowState string

const (
	StartIdle      StartFlowState = "idle"
	StartRequested StartFlowState = "requested"
	StartFulfilled StartFlowState = "fulfilled"
	StartCanceled  StartFlowState = "canceled"
	StartFailed    StartFlowState = "failed"
)

// PayStartFlow hands a subscription request to the payment provider.
// The outcome arrives later through the response handler, which moves the
// flow to a terminal state.
type PayStartFlow struct {
	rt          *Runtime
	req         model.SubscriptionRequest
	productType model.ProductType
	id          string
	now         func() time.Time

	mu    sync.Mutex
	state StartFlowState
}

func NewPayStartFlow(rt *Runtime, req model.SubscriptionRequest, productType model.ProductType) *PayStartFlow {
	if productType == "" {
		productType = model.ProductTypeSubscription
	}
	return &PayStartFlow{
		rt:          rt,
		req:         req,
		productType: productType,
		id:          uuid.NewString(),
		now:         time.Now,
		state:       StartIdle,
	}
}

func (f *PayStartFlow) ID() string { return f.id }

func (f *PayStartFlow) State() StartFlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Start validates the request, emits the start notifications and calls the
// payment provider.
func (f *PayStartFlow) Start(ctx context.Context) error {
	ctx = logging.WithFlowID(ctx, f.id)
	log := logging.With(ctx, f.rt.log)
	defer logging.TraceDuration(log, "PayStartFlow.Start")()

	f.mu.Lock()
	if f.state != StartIdle {
		f.mu.Unlock()
		return fmt.Errorf("start flow in state %s: %w", f.state, domain.ErrFlowState)
	}
	f.mu.Unlock()

	if err := f.req.Validate(); err != nil {
		return fmt.Errorf("subscription request: %w", err)
	}

	deps := f.rt.Deps()
	cfg := f.rt.Config()
	clientConfig, err := deps.ClientConfig.GetClientConfig(ctx)
	if err != nil {
		return fmt.Errorf("get client config: %w", err)
	}

	swg := f.normalize(cfg.PublicationID, clientConfig)
	flow := f.productType.Flow()

	deps.Callbacks.TriggerFlowStarted(flow, f.req)
	if swg.OldSKU != "" {
		deps.Analytics.SetSku(swg.OldSKU)
	}

	deps.Events.LogSwgEvent(ctx, model.ActionPaymentFlowStarted, true, model.NewEventParams(swg.SKUID, "", ""))
	providerStarted := model.ActionPlayPaymentFlowStarted
	if clientConfig.UseUpdatedOfferFlows {
		providerStarted = model.ActionPayPaymentFlowStarted
	}
	deps.Events.LogSwgEvent(ctx, providerStarted, true, model.NewEventParams(swg.SKUID, "", ""))

	f.rt.SetWaitingForPayClient(true)
	request := &model.PaymentDataRequest{
		APIVersion:            model.PaymentAPIVersion,
		AllowedPaymentMethods: []string{model.PaymentMethodCard},
		Environment:           cfg.PayEnvironment,
		PlayEnvironment:       cfg.PlayEnvironment,
		Swg:                   swg,
		Internal: model.InternalPayData{
			StartTimeMs: f.now().UnixMilli(),
			ProductType: f.productType,
		},
	}
	opts := model.PaymentOptions{
		ForceRedirect:      cfg.WindowOpenMode == model.WindowOpenRedirect,
		ForceDisableNative: clientConfig.ForceDisableNative(),
	}
	if err := deps.PaymentClient.Start(ctx, request, opts); err != nil {
		f.setState(StartFailed)
		return fmt.Errorf("payment client start: %w", err)
	}

	f.setState(StartRequested)
	f.rt.setActiveStartFlow(f)
	metrics.IncFlowStarted(string(flow))
	log.Info().
		Str("sku", swg.SKUID).
		Str("flow", string(flow)).
		Bool("force_redirect", opts.ForceRedirect).
		Msg("payment flow started")
	return nil
}

// Resolve moves a requested flow to its terminal state.
func (f *PayStartFlow) Resolve(state StartFlowState) error {
	switch state {
	case StartFulfilled, StartCanceled, StartFailed:
	default:
		return fmt.Errorf("resolve to %s: %w", state, domain.ErrInvalidArgument)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StartRequested {
		return fmt.Errorf("resolve flow in state %s: %w", f.state, domain.ErrFlowState)
	}
	f.state = state
	return nil
}

func (f *PayStartFlow) setState(s StartFlowState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// normalize builds the provider swg block from the request.
func (f *PayStartFlow) normalize(publicationID string, cc model.ClientConfig) model.SwgPaymentData {
	swg := model.SwgPaymentData{
		SKUID:         f.req.SKU,
		PublicationID: f.req.PublicationID,
		OldSKU:        f.req.OldSKU,
		Metadata:      f.req.Metadata,
		SwgVersion:    cc.PaySwgVersion,
	}
	if swg.PublicationID == "" {
		swg.PublicationID = publicationID
	}
	if f.req.OneTime {
		swg.PaymentRecurrence = model.RecurrenceOneTime
	}
	if swg.OldSKU != "" {
		swg.ReplaceSKUProrationMode = model.ProrationModeMapping[model.ProrationImmediateWithTimeProration]
		if f.req.ReplaceSKUProrationMode != "" {
			swg.ReplaceSKUProrationMode = model.ProrationModeMapping[f.req.ReplaceSKUProrationMode]
		}
	}
	return swg
}
