package model

// PaymentDataRequest is the request handed to the payment provider.
type PaymentDataRequest struct {
	APIVersion            int             `json:"apiVersion"`
	AllowedPaymentMethods []string        `json:"allowedPaymentMethods"`
	Environment           string          `json:"environment"`
	PlayEnvironment       string          `json:"playEnvironment"`
	Swg                   SwgPaymentData  `json:"swg"`
	Internal              InternalPayData `json:"i"`
}

// SwgPaymentData is the purchase part of the provider request.
type SwgPaymentData struct {
	SKUID                   string         `json:"skuId"`
	PublicationID           string         `json:"publicationId"`
	OldSKU                  string         `json:"oldSku,omitempty"`
	ReplaceSKUProrationMode int            `json:"replaceSkuProrationMode,omitempty"`
	PaymentRecurrence       int            `json:"paymentRecurrence,omitempty"`
	Metadata                map[string]any `json:"metadata,omitempty"`
	SwgVersion              string         `json:"swgVersion,omitempty"`
}

type InternalPayData struct {
	StartTimeMs int64       `json:"startTimeMs"`
	ProductType ProductType `json:"productType"`
}

// PaymentOptions tune how the provider surfaces its UI.
type PaymentOptions struct {
	ForceRedirect      bool `json:"forceRedirect"`
	ForceDisableNative bool `json:"forceDisableNative"`
}

const (
	PaymentAPIVersion  = 1
	PaymentMethodCard  = "CARD"
	WindowOpenRedirect = "redirect"
	WindowOpenAuto     = "auto"
)
