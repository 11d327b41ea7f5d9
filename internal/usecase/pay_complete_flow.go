// File: internal/usecase/pay_complete_flow.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/domain/ports/adapter"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/metrics"
)

const payConfirmPath = "/swg/ui/v1/payconfirmiframe"

type SurfaceKind string

const (
	SurfaceDialog SurfaceKind = "dialog"
	SurfaceInline SurfaceKind = "inline"
	SurfaceNone   SurfaceKind = "none"
)

// ConfirmationSurface is where the confirmation view is shown. Element is
// nil for SurfaceNone.
type ConfirmationSurface struct {
	Kind    SurfaceKind
	Element adapter.Element
}

type CompleteFlowState string

const (
	CompleteIdle      CompleteFlowState = "idle"
	CompleteReady     CompleteFlowState = "ready"
	CompleteCompleted CompleteFlowState = "completed"
)

// PayCompleteFlow confirms a decoded purchase with the reader and
// propagates the new entitlements.
type PayCompleteFlow struct {
	rt *Runtime
	id string

	mu           sync.Mutex
	state        CompleteFlowState
	surface      ConfirmationSurface
	port         adapter.ActivityPort
	result       *model.PurchaseResult
	clientConfig model.ClientConfig
	sku          string
	ctaMode      model.CtaMode

	// settled is closed when Start returns, ready or not.
	settled    chan struct{}
	settleOnce sync.Once
}

func NewPayCompleteFlow(rt *Runtime) *PayCompleteFlow {
	return &PayCompleteFlow{rt: rt, id: uuid.NewString(), state: CompleteIdle, settled: make(chan struct{})}
}

func (f *PayCompleteFlow) ID() string { return f.id }

func (f *PayCompleteFlow) State() CompleteFlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *PayCompleteFlow) Surface() ConfirmationSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.surface
}

// Start opens the confirmation surface for res and waits until it is
// ready. With inline mode on and no matching slot no surface is opened and
// the flow is ready immediately.
func (f *PayCompleteFlow) Start(ctx context.Context, res *model.PurchaseResult) error {
	if res == nil {
		return fmt.Errorf("complete flow: nil result: %w", domain.ErrInvalidArgument)
	}
	ctx = logging.WithFlowID(ctx, f.id)
	log := logging.With(ctx, f.rt.log)
	defer logging.TraceDuration(log, "PayCompleteFlow.Start")()

	f.mu.Lock()
	if f.state != CompleteIdle {
		f.mu.Unlock()
		return fmt.Errorf("start complete flow in state %s: %w", f.state, domain.ErrFlowState)
	}
	f.result = res
	f.mu.Unlock()
	defer f.settleOnce.Do(func() { close(f.settled) })

	deps := f.rt.Deps()
	cfg := f.rt.Config()
	f.rt.SetWaitingForPayClient(true)

	if res.SwgUserToken != nil && *res.SwgUserToken != "" {
		if err := deps.Storage.Set(ctx, adapter.StorageKeyUserToken, *res.SwgUserToken, true); err != nil {
			log.Warn().Err(err).Msg("failed to persist user token")
		}
	}

	sku, err := res.Receipt.SKU()
	if err != nil {
		log.Debug().Err(err).Msg("purchase data not parseable; continuing without sku")
		sku = ""
	}
	if sku != "" {
		deps.Analytics.SetSku(sku)
	}

	clientConfig, err := deps.ClientConfig.GetClientConfig(ctx)
	if err != nil {
		return fmt.Errorf("get client config: %w", err)
	}

	deps.Entitlements.Reset(ctx, true)
	params := map[string]any{
		"_client":                   "SwG " + cfg.ClientVersion,
		"publicationId":             cfg.PublicationID,
		"productType":               string(res.Classification.ProductType),
		"isSubscriptionUpdate":      res.Classification.IsSubscriptionUpdate(),
		"isOneTime":                 res.IsOneTime(),
		"useUpdatedConfirmUi":       clientConfig.UseUpdatedOfferFlows,
		"skipAccountCreationScreen": clientConfig.SkipAccountCreationScreen,
	}
	switch {
	case res.Identity != nil && res.Entitlements != nil:
		params["idToken"] = res.Identity.IDToken
		deps.Entitlements.PushNextEntitlements(ctx, res.Entitlements.Raw)
	case res.Identity != nil:
		params["loginHint"] = res.Identity.Email
	}

	inline, _ := f.rt.InlineCTA()
	ctaMode := model.CtaModePopup
	if inline {
		ctaMode = model.CtaModeInline
	}
	deps.Events.LogSwgEvent(ctx, model.ImpressionAccountChanged, true, model.NewEventParams(sku, "", ctaMode))

	surface := f.resolveSurface()
	metrics.IncConfirmSurface(string(surface.Kind))

	f.mu.Lock()
	f.surface = surface
	f.clientConfig = clientConfig
	f.sku = sku
	f.ctaMode = ctaMode
	f.mu.Unlock()

	if surface.Kind == SurfaceNone {
		log.Info().Msg("inline confirmation slot not found; skipping confirmation view")
		f.setState(CompleteReady)
		return nil
	}

	port, err := deps.Activities.OpenIframe(ctx, surface.Element, f.confirmURL(surface.Kind == SurfaceInline), params)
	if err != nil {
		return fmt.Errorf("open confirmation view: %w", err)
	}
	port.OnResizeRequest(func(height int) {
		log.Debug().Int("height", height).Msg("confirmation view resize requested")
	})
	bg := context.WithoutCancel(ctx)
	port.OnEntitlements(func(jwt string) {
		if jwt == "" {
			return
		}
		deps.Entitlements.PushNextEntitlements(bg, jwt)
	})
	deps.Callbacks.TriggerPayConfirmOpened(port)

	f.mu.Lock()
	f.port = port
	f.mu.Unlock()

	if err := port.WhenReady(ctx); err != nil {
		return fmt.Errorf("confirmation view not ready: %w", err)
	}
	f.setState(CompleteReady)
	log.Info().Str("surface", string(surface.Kind)).Str("sku", sku).Msg("confirmation view ready")
	return nil
}

// Complete finishes account creation and acknowledges the purchase. It
// waits for Start to settle, so it may be called while the confirmation
// view is still opening. If ctx ends first the flow is left untouched.
func (f *PayCompleteFlow) Complete(ctx context.Context) error {
	ctx = logging.WithFlowID(ctx, f.id)
	log := logging.With(ctx, f.rt.log)

	select {
	case <-f.settled:
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrSurfaceNotReady, ctx.Err())
	}

	f.mu.Lock()
	if f.state != CompleteReady {
		state := f.state
		f.mu.Unlock()
		if state == CompleteCompleted {
			return fmt.Errorf("complete flow already completed: %w", domain.ErrFlowState)
		}
		return domain.ErrSurfaceNotReady
	}
	port, cc, res := f.port, f.clientConfig, f.result
	params := model.NewEventParams(f.sku, res.Classification.ProductType.Flow(), f.ctaMode)
	f.mu.Unlock()

	deps := f.rt.Deps()
	deps.Events.LogSwgEvent(ctx, model.ActionAccountCreated, true, params)
	deps.Entitlements.UnblockNextNotification(ctx)

	if port != nil {
		if !cc.SkipAccountCreationScreen {
			if err := port.Execute(adapter.AccountCreationRequest{Complete: true}); err != nil {
				log.Warn().Err(err).Msg("failed to send account creation request")
			}
		}
		if err := port.AcceptResult(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Debug().Err(err).Msg("confirmation result not accepted")
		}
	}

	deps.Events.LogSwgEvent(ctx, model.ActionAccountAcknowledged, true, params)
	deps.Entitlements.SetToastShown(ctx, true)

	f.setState(CompleteCompleted)
	log.Info().Str("order_id", res.Receipt.OrderID()).Msg("purchase confirmed")
	return nil
}

func (f *PayCompleteFlow) resolveSurface() ConfirmationSurface {
	page := f.rt.Deps().Page
	enabled, configID := f.rt.InlineCTA()
	if !enabled {
		return ConfirmationSurface{Kind: SurfaceDialog, Element: page.NewDialogFrame()}
	}
	if configID == "" {
		return ConfirmationSurface{Kind: SurfaceNone}
	}
	el := page.FindInlineSlot(model.InlineCTAAttr, configID)
	if el == nil {
		return ConfirmationSurface{Kind: SurfaceNone}
	}
	el.ClearChildren()
	return ConfirmationSurface{Kind: SurfaceInline, Element: el}
}

func (f *PayCompleteFlow) confirmURL(inline bool) string {
	cfg := f.rt.Config()
	cc := f.rt.Deps().ClientConfig

	var b strings.Builder
	b.WriteString(strings.TrimRight(cfg.FrontendBaseURL, "/"))
	b.WriteString(payConfirmPath)
	b.WriteString("?_=_")
	if cc.ShouldForceLangInIframes() {
		if lang := cc.GetLanguage(); lang != "" {
			b.WriteString("&hl=" + url.QueryEscape(lang))
		}
	}
	if inline {
		b.WriteString("&ctaMode=" + string(model.CtaModeInline))
	}
	return b.String()
}

func (f *PayCompleteFlow) setState(s CompleteFlowState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}
