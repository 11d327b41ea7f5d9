package adapter

import "subscribe-payflow/internal/domain/model"

// Callbacks notifies the publisher about flow progress.
type Callbacks interface {
	TriggerFlowStarted(flow model.SubscriptionFlow, data any)
	TriggerFlowCanceled(flow model.SubscriptionFlow)
	TriggerPayConfirmOpened(view ActivityPort)
	TriggerPaymentResponse(resp *model.PaymentResponse)
}
