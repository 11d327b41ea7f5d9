package model

type ReconciliationKind string

const (
	ReconciliationNoTxID        ReconciliationKind = "no_tx_id"
	ReconciliationConfirmed     ReconciliationKind = "confirmed"
	ReconciliationChanged       ReconciliationKind = "changed"
	ReconciliationCannotConfirm ReconciliationKind = "cannot_confirm_redirect"
)

// ReconciliationOutcome classifies the provider's transaction id against the
// one generated when the flow started. Fields other than Kind are only set
// for the variant that carries them.
type ReconciliationOutcome struct {
	Kind ReconciliationKind

	AlreadyLogged bool   // NoTxID
	NewID         string // Changed; CannotConfirm when the provider sent one
}

func NoTxIDFromProvider(alreadyLogged bool) ReconciliationOutcome {
	return ReconciliationOutcome{Kind: ReconciliationNoTxID, AlreadyLogged: alreadyLogged}
}

func ConfirmedMatch() ReconciliationOutcome {
	return ReconciliationOutcome{Kind: ReconciliationConfirmed}
}

func ChangedMismatch(newID string) ReconciliationOutcome {
	return ReconciliationOutcome{Kind: ReconciliationChanged, NewID: newID}
}

func CannotConfirmRedirectPath(providerID string) ReconciliationOutcome {
	return ReconciliationOutcome{Kind: ReconciliationCannotConfirm, NewID: providerID}
}
