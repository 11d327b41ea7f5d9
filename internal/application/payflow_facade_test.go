//go:build !integration

package application

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/infra/codec"
	"subscribe-payflow/internal/usecase"
)

type fixture struct {
	facade       *PayflowFacade
	events       *mockEvents
	entitlements *mockEntitlements
	locker       *mockLocker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{events: &mockEvents{}, entitlements: &mockEntitlements{}, locker: &mockLocker{}}
	fx.facade = NewPayflowFacade(SharedDeps{
		Events:       fx.events,
		Entitlements: fx.entitlements,
		Storage:      mockStorage{},
		ClientConfig: mockClientConfig{},
		Locker:       fx.locker,
		EntitleState: fx.entitlements,
	}, usecase.RuntimeConfig{PublicationID: "pub1", WindowOpenMode: model.WindowOpenRedirect},
		Options{PayURL: "https://pay.example/ui", ReturnURL: "https://host/return", SessionTTL: time.Minute},
		newTestLogger())
	return fx
}

func providerEnvelope(t *testing.T) string {
	t.Helper()
	env, err := codec.EncodeEnvelope(map[string]any{
		"swgCallbackData": map[string]any{
			"purchaseData":       `{"orderId":"ORDER","productId":"sku1"}`,
			"signedEntitlements": "ENT.JWT.SIG",
		},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return env
}

func TestPayflowFacade_Subscribe(t *testing.T) {
	fx := newFixture(t)

	res, err := fx.facade.Subscribe(context.Background(), "r1", model.SubscriptionRequest{SKU: "sku1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.FlowID == "" || res.TransactionID == "" {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Pending == nil || res.Pending.RedirectURL == "" || res.Pending.Request.Swg.SKUID != "sku1" {
		t.Errorf("unexpected pending payment %+v", res.Pending)
	}

	other, _ := fx.facade.Contribute(context.Background(), "r2", model.SubscriptionRequest{SKU: "sku2"})
	if other.TransactionID == res.TransactionID {
		t.Error("expected readers to have distinct transaction ids")
	}
	if other.Pending.Request.Internal.ProductType != model.ProductTypeContribution {
		t.Errorf("unexpected product type %s", other.Pending.Request.Internal.ProductType)
	}
}

func TestPayflowFacade_DeliverAndComplete(t *testing.T) {
	// --- Arrange ---
	fx := newFixture(t)
	ctx := context.Background()
	if _, err := fx.facade.Result(ctx, "r1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before a response, got %v", err)
	}
	_, _ = fx.facade.Subscribe(ctx, "r1", model.SubscriptionRequest{SKU: "sku1"})

	// --- Act ---
	err := fx.facade.DeliverResponse(ctx, "r1", providerEnvelope(t), nil, model.DeliveryRedirect)

	// --- Assert ---
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !fx.events.has(model.EventGpayCannotConfirmTxID) || fx.events.has(model.EventGpayNoTxID) {
		t.Error("expected the redirect return to be reconciled as a redirect")
	}
	if !reflect.DeepEqual(fx.locker.locked, []string{"r1"}) || !reflect.DeepEqual(fx.locker.unlocked, []string{"tok-r1"}) {
		t.Errorf("unexpected locking %v %v", fx.locker.locked, fx.locker.unlocked)
	}
	view, ok := fx.facade.ConfirmView("r1")
	if !ok || view.Params["productType"] != "SUBSCRIPTION" {
		t.Fatalf("unexpected view %+v", view)
	}
	if _, ok := fx.facade.ConfirmView("r2"); ok {
		t.Error("expected no view for another reader")
	}
	if err := fx.facade.RelayEntitlements("r1", "VIEW.JWT"); err != nil {
		t.Fatalf("relay: %v", err)
	}
	res, err := fx.facade.Result(ctx, "r1")
	if err != nil || res.Receipt.OrderID() != "ORDER" {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
	if err := fx.facade.CompletePurchase(ctx, "r1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	want := []string{"block", "reset", "push:VIEW.JWT", "unblock", "toast"}
	if got := fx.entitlements.of("r1"); !reflect.DeepEqual(got, want) {
		t.Errorf("entitlements calls = %v, want %v", got, want)
	}
	if !fx.events.has(model.ActionAccountAcknowledged) {
		t.Error("expected the purchase to be acknowledged")
	}
	st, err := fx.facade.Entitlements(ctx, "r1")
	if err != nil || !st.ToastShown {
		t.Errorf("unexpected entitlements state %+v, %v", st, err)
	}
}

func TestPayflowFacade_DeliverInPage(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_, _ = fx.facade.Subscribe(ctx, "r1", model.SubscriptionRequest{SKU: "sku1"})

	if err := fx.facade.DeliverResponse(ctx, "r1", providerEnvelope(t), nil, model.DeliveryInPage); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if !fx.events.has(model.EventGpayNoTxID) {
		t.Error("expected the missing transaction id to be reported")
	}
	if fx.events.has(model.EventGpayCannotConfirmTxID) {
		t.Error("expected the in-page response to skip the redirect path")
	}
}

func TestPayflowFacade_DeliverCancellation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_, _ = fx.facade.Contribute(ctx, "r1", model.SubscriptionRequest{SKU: "sku1"})

	if err := fx.facade.DeliverResponse(ctx, "r1", nil, domain.NewAbortError("closed", "UI_CONTRIBUTION"), model.DeliveryInPage); err != nil {
		t.Fatalf("expected nil for a cancellation, got %v", err)
	}
	if !fx.events.has(model.ActionUserCanceledPayflow) {
		t.Error("expected the cancel event")
	}
	if _, err := fx.facade.Result(ctx, "r1"); !domain.IsAbort(err) {
		t.Errorf("expected the result to carry the abort, got %v", err)
	}
}

func TestPayflowFacade_LockContention(t *testing.T) {
	fx := newFixture(t)
	fx.locker.err = domain.ErrResponseInFlight
	err := fx.facade.DeliverResponse(context.Background(), "r1", "x", nil, model.DeliveryInPage)
	if !errors.Is(err, domain.ErrResponseInFlight) {
		t.Errorf("expected ErrResponseInFlight, got %v", err)
	}
}

func TestPayflowFacade_InlineSlot(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.facade.RegisterInlineSlot("r1", "slot-1", "cfg1", 2)
	fx.facade.SetInlineCTA("r1", true, "cfg1")
	_, _ = fx.facade.Subscribe(ctx, "r1", model.SubscriptionRequest{SKU: "sku1"})

	if err := fx.facade.DeliverResponse(ctx, "r1", providerEnvelope(t), nil, model.DeliveryInPage); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	view, ok := fx.facade.ConfirmView("r1")
	if !ok || view.Target != "slot-1" {
		t.Errorf("expected the inline slot as target, got %+v", view)
	}
}

func TestPayflowFacade_Sweep(t *testing.T) {
	fx := newFixture(t)
	now := time.Now()
	fx.facade.now = func() time.Time { return now }
	fx.facade.Session("old")
	now = now.Add(2 * time.Minute)
	fx.facade.Session("fresh")

	n, err := fx.facade.Sweep(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("expected one swept session, got %d, %v", n, err)
	}
	fx.facade.mu.Lock()
	_, oldKept := fx.facade.sessions["old"]
	_, freshKept := fx.facade.sessions["fresh"]
	fx.facade.mu.Unlock()
	if oldKept || !freshKept {
		t.Errorf("unexpected sessions after sweep: old=%v fresh=%v", oldKept, freshKept)
	}
}
