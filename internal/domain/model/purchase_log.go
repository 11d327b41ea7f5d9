package model

import "time"

// PurchaseLogEntry is one row of the purchase ledger.
type PurchaseLogEntry struct {
	ID                    string
	FlowID                string
	OrderID               string
	SKU                   string
	ProductType           ProductType
	OldSKU                *string
	LocalTransactionID    string
	ProviderTransactionID *string
	Outcome               ReconciliationKind
	Redirect              bool
	HasEntitlements       bool
	Raw                   string
	CreatedAt             time.Time
}
