package model

import (
	"encoding/json"
	"fmt"
	"sync"

	"subscribe-payflow/internal/domain"
)

type ProductType string

const (
	ProductTypeSubscription ProductType = "SUBSCRIPTION"
	// ProductTypeContribution is the one-time contribution product.
	ProductTypeContribution ProductType = "UI_CONTRIBUTION"
)

// Flow returns the flow tag used by callbacks and analytics for the product.
func (p ProductType) Flow() SubscriptionFlow {
	if p == ProductTypeContribution {
		return SubscriptionFlowContribute
	}
	return SubscriptionFlowSubscribe
}

// ProductTypeOrDefault maps a wire value to a ProductType, defaulting to
// SUBSCRIPTION for anything unknown or empty.
func ProductTypeOrDefault(s string) ProductType {
	if ProductType(s) == ProductTypeContribution {
		return ProductTypeContribution
	}
	return ProductTypeSubscription
}

// PurchaseReceipt is the provider's purchase data, kept verbatim.
type PurchaseReceipt struct {
	Raw       string // opaque JSON, usually {"orderId": ...}
	Signature string
}

type receiptFields struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
}

// SKU extracts the product id from the receipt. An unparseable receipt
// returns ErrUnparseableReceipt; callers treat that as "no sku".
func (r PurchaseReceipt) SKU() (string, error) {
	if r.Raw == "" {
		return "", nil
	}
	var f receiptFields
	if err := json.Unmarshal([]byte(r.Raw), &f); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnparseableReceipt, err)
	}
	return f.ProductID, nil
}

// OrderID extracts the order id, "" when absent or unparseable.
func (r PurchaseReceipt) OrderID() string {
	var f receiptFields
	if json.Unmarshal([]byte(r.Raw), &f) != nil {
		return ""
	}
	return f.OrderID
}

// Identity is the user decoded from the id token payload.
type Identity struct {
	IDToken       string
	ID            string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
	PictureURL    string
}

type Entitlement struct {
	Source            string   `json:"source"`
	Products          []string `json:"products,omitempty"`
	SubscriptionToken string   `json:"subscriptionToken,omitempty"`
}

// EntitlementsSnapshot wraps the signed entitlements token and its records.
type EntitlementsSnapshot struct {
	Raw          string
	Entitlements []Entitlement
}

type ProductClassification struct {
	ProductType ProductType
	OldSKU      *string
}

// IsSubscriptionUpdate reports whether the purchase replaced an existing sku.
func (c ProductClassification) IsSubscriptionUpdate() bool {
	return c.OldSKU != nil && *c.OldSKU != ""
}

// PurchaseResult is the decoded provider response. It is built once by the
// decoder and owned by the complete flow afterwards.
type PurchaseResult struct {
	Raw                   string
	Receipt               PurchaseReceipt
	Identity              *Identity
	Entitlements          *EntitlementsSnapshot
	Classification        ProductClassification
	SwgUserToken          *string
	ProviderTransactionID *string
	PaymentRecurrence     *int
	RequestMetadata       map[string]any

	completeOnce sync.Once
	onComplete   func()
}

// Complete signals the provider that confirmation finished. Only the first
// call has an effect.
func (r *PurchaseResult) Complete() {
	r.completeOnce.Do(func() {
		if r.onComplete != nil {
			r.onComplete()
		}
	})
}

// SetCompletionCallback binds the completion callback. It has no effect
// once Complete has run.
func (r *PurchaseResult) SetCompletionCallback(fn func()) { r.onComplete = fn }

// IsOneTime reports whether the purchase was a one-time payment.
func (r *PurchaseResult) IsOneTime() bool {
	return r.PaymentRecurrence != nil && *r.PaymentRecurrence == RecurrenceOneTime
}
