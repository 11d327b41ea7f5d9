package model

// EventKind names an analytics event.
type EventKind string

const (
	ActionPaymentFlowStarted         EventKind = "ACTION_PAYMENT_FLOW_STARTED"
	ActionPlayPaymentFlowStarted     EventKind = "ACTION_PLAY_PAYMENT_FLOW_STARTED"
	ActionPayPaymentFlowStarted      EventKind = "ACTION_PAY_PAYMENT_FLOW_STARTED"
	ActionPaymentComplete            EventKind = "ACTION_PAYMENT_COMPLETE"
	ActionUserCanceledPayflow        EventKind = "ACTION_USER_CANCELED_PAYFLOW"
	ActionAccountCreated             EventKind = "ACTION_ACCOUNT_CREATED"
	ActionAccountAcknowledged        EventKind = "ACTION_ACCOUNT_ACKNOWLEDGED"
	ImpressionAccountChanged         EventKind = "IMPRESSION_ACCOUNT_CHANGED"
	EventPaymentFailed               EventKind = "EVENT_PAYMENT_FAILED"
	EventPayPaymentComplete          EventKind = "EVENT_PAY_PAYMENT_COMPLETE"
	EventSubscriptionPaymentComplete EventKind = "EVENT_SUBSCRIPTION_PAYMENT_COMPLETE"
	EventContributionPaymentComplete EventKind = "EVENT_CONTRIBUTION_PAYMENT_COMPLETE"
	EventConfirmTxID                 EventKind = "EVENT_CONFIRM_TX_ID"
	EventChangedTxID                 EventKind = "EVENT_CHANGED_TX_ID"
	EventGpayNoTxID                  EventKind = "EVENT_GPAY_NO_TX_ID"
	EventGpayCannotConfirmTxID       EventKind = "EVENT_GPAY_CANNOT_CONFIRM_TX_ID"
)

type CtaMode string

const (
	CtaModePopup  CtaMode = "CTA_MODE_POPUP"
	CtaModeInline CtaMode = "CTA_MODE_INLINE"
)

// EventParams are the optional parameters attached to an analytics event.
// A nil *EventParams means "no parameters".
type EventParams struct {
	SKU               string           `json:"sku"`
	SubscriptionFlow  SubscriptionFlow `json:"subscriptionFlow,omitempty"`
	CtaMode           CtaMode          `json:"ctaMode,omitempty"`
	GpayTransactionID string           `json:"gpayTransactionId,omitempty"`
	HadLogged         *bool            `json:"hadLogged,omitempty"`
}

// NewEventParams builds the common sku/flow/cta-mode parameter set. An empty
// cta mode defaults to popup.
func NewEventParams(sku string, flow SubscriptionFlow, mode CtaMode) *EventParams {
	if mode == "" {
		mode = CtaModePopup
	}
	return &EventParams{SKU: sku, SubscriptionFlow: flow, CtaMode: mode}
}
