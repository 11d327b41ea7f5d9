package model

import "subscribe-payflow/internal/domain"

type SubscriptionFlow string

const (
	SubscriptionFlowSubscribe  SubscriptionFlow = "subscribe"
	SubscriptionFlowContribute SubscriptionFlow = "contribute"
)

// ReplaceSKUProrationMode is how the provider prorates a sku replacement.
type ReplaceSKUProrationMode string

const (
	ProrationImmediateWithTimeProration   ReplaceSKUProrationMode = "IMMEDIATE_WITH_TIME_PRORATION"
	ProrationImmediateWithChargeProration ReplaceSKUProrationMode = "IMMEDIATE_WITH_CHARGE_PRORATION"
	ProrationImmediateWithoutProration    ReplaceSKUProrationMode = "IMMEDIATE_WITHOUT_PRORATION"
	ProrationDeferred                     ReplaceSKUProrationMode = "DEFERRED"
)

// ProrationModeMapping holds the provider enumerants for each proration mode.
var ProrationModeMapping = map[ReplaceSKUProrationMode]int{
	ProrationImmediateWithTimeProration:   1,
	ProrationImmediateWithChargeProration: 2,
	ProrationImmediateWithoutProration:    3,
	ProrationDeferred:                     4,
}

// Payment recurrence enumerants.
const (
	RecurrenceAuto    = 1
	RecurrenceOneTime = 2
)

// SubscriptionRequest is what the publisher asks to buy.
type SubscriptionRequest struct {
	SKU                     string                  `json:"skuId"`
	OldSKU                  string                  `json:"oldSku,omitempty"`
	ReplaceSKUProrationMode ReplaceSKUProrationMode `json:"replaceSkuProrationMode,omitempty"`
	OneTime                 bool                    `json:"oneTime,omitempty"`
	Metadata                map[string]any          `json:"metadata,omitempty"`
	PublicationID           string                  `json:"publicationId,omitempty"`
}

// Validate checks the request before any provider call.
func (r SubscriptionRequest) Validate() error {
	if r.SKU == "" {
		return domain.ErrInvalidArgument
	}
	if r.ReplaceSKUProrationMode != "" {
		if _, ok := ProrationModeMapping[r.ReplaceSKUProrationMode]; !ok {
			return domain.ErrInvalidArgument
		}
	}
	return nil
}
