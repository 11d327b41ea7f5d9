// File: internal/usecase/reconciler.go
package usecase

import "subscribe-payflow/internal/domain/model"

// Reconcile classifies the provider transaction id against the local one.
// The checks run in order: redirect path, missing id, equal, different.
func Reconcile(local string, provider *string, isRedirect, alreadyLogged bool) model.ReconciliationOutcome {
	if isRedirect {
		if provider != nil {
			return model.CannotConfirmRedirectPath(*provider)
		}
		return model.CannotConfirmRedirectPath("")
	}
	if provider == nil || *provider == "" {
		return model.NoTxIDFromProvider(alreadyLogged)
	}
	if *provider == local {
		return model.ConfirmedMatch()
	}
	return model.ChangedMismatch(*provider)
}

// EventFor maps an outcome to the analytics event reporting it.
func EventFor(o model.ReconciliationOutcome) (model.EventKind, *model.EventParams) {
	switch o.Kind {
	case model.ReconciliationCannotConfirm:
		return model.EventGpayCannotConfirmTxID, nil
	case model.ReconciliationNoTxID:
		hadLogged := o.AlreadyLogged
		return model.EventGpayNoTxID, &model.EventParams{HadLogged: &hadLogged}
	case model.ReconciliationChanged:
		return model.EventChangedTxID, &model.EventParams{GpayTransactionID: o.NewID}
	default:
		return model.EventConfirmTxID, nil
	}
}
