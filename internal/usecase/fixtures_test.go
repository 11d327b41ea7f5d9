//go:build !integration

package usecase_test

import "subscribe-payflow/internal/domain/model"

const (
	// {"swgCallbackData":{purchaseData, purchaseDataSignature, idToken, signedEntitlements}}
	integrDataString = "eyJzd2dDYWxsYmFja0RhdGEiOnsicHVyY2hhc2VEYXRhIjoie1wib3JkZXJJZFwiOlwiT1JERVJcIn0iLCJwdXJjaGFzZURhdGFTaWduYXR1cmUiOiJQRF9TSUciLCJpZFRva2VuIjoiZXlKaGJHY2lPaUpTVXpJMU5pSXNJblI1Y0NJNklrcFhWQ0o5LmV5SnpkV0lpT2lKSlJGOVVUMHNpZlEuU0lHIiwic2lnbmVkRW50aXRsZW1lbnRzIjoiZXlKaGJHY2lPaUpJVXpJMU5pSXNJblI1Y0NJNklrcFhWQ0o5LmV5SmxiblJwZEd4bGJXVnVkSE1pT2x0N0luTnZkWEpqWlNJNklsUkZVMVFpZlYxOS5TSUcifX0="
	// same without signedEntitlements
	integrDataStringNoEntitlements = "eyJzd2dDYWxsYmFja0RhdGEiOnsicHVyY2hhc2VEYXRhIjoie1wib3JkZXJJZFwiOlwiT1JERVJcIn0iLCJwdXJjaGFzZURhdGFTaWduYXR1cmUiOiJQRF9TSUciLCJpZFRva2VuIjoiZXlKaGJHY2lPaUpTVXpJMU5pSXNJblI1Y0NJNklrcFhWQ0o5LmV5SnpkV0lpT2lKSlJGOVVUMHNpZlEuU0lHIn19"

	emptyIDToken   = "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJJRF9UT0sifQ.SIG"
	entitlementJWT = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJlbnRpdGxlbWVudHMiOlt7InNvdXJjZSI6IlRFU1QifV19.SIG"

	userIDToken     = "ID_TOK"
	userEmail       = "test@example.org"
	rawEntitlements = "RaW"
)

// swgCallbackData is the decoded purchase block of integrDataString.
func swgCallbackData(withEntitlements bool) map[string]any {
	m := map[string]any{
		"purchaseData":          `{"orderId":"ORDER"}`,
		"purchaseDataSignature": "PD_SIG",
		"idToken":               emptyIDToken,
	}
	if withEntitlements {
		m["signedEntitlements"] = entitlementJWT
	}
	return m
}

// integrDataObjDecoded mirrors integrDataString as an already decoded object.
func integrDataObjDecoded(withEntitlements bool) map[string]any {
	return map[string]any{"swgCallbackData": swgCallbackData(withEntitlements)}
}

func integrDataObj(withEntitlements bool) map[string]any {
	s := integrDataString
	if !withEntitlements {
		s = integrDataStringNoEntitlements
	}
	return map[string]any{"integratorClientCallbackData": s}
}

// defaultPurchaseResult is a decoded subscription with identity and entitlements.
func defaultPurchaseResult() *model.PurchaseResult {
	return &model.PurchaseResult{
		Raw:            "{}",
		Receipt:        model.PurchaseReceipt{},
		Identity:       &model.Identity{IDToken: userIDToken, Email: userEmail},
		Entitlements:   &model.EntitlementsSnapshot{Raw: rawEntitlements},
		Classification: model.ProductClassification{ProductType: model.ProductTypeSubscription},
	}
}
