package codec

import (
	"bytes"
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"

	"subscribe-payflow/internal/domain/model"
)

// IdentityClaims are the user claims inside an id token.
type IdentityClaims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// DecodeIdentity decodes an id token into an Identity. It returns nil for
// an empty or unparseable token.
func DecodeIdentity(idToken string) *model.Identity {
	if idToken == "" {
		return nil
	}
	var c IdentityClaims
	if !DecodeCompactClaims(idToken, &c) {
		return nil
	}
	return &model.Identity{
		IDToken:       idToken,
		ID:            c.Subject,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		Name:          c.Name,
		GivenName:     c.GivenName,
		FamilyName:    c.FamilyName,
		PictureURL:    c.Picture,
	}
}

// EntitlementsClaims is the payload of a signed entitlements token. The
// entitlements field may be a list or a single record.
type EntitlementsClaims struct {
	Entitlements entitlementList `json:"entitlements"`
}

type entitlementList []model.Entitlement

func (l *entitlementList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		var list []model.Entitlement
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
	var one model.Entitlement
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*l = entitlementList{one}
	return nil
}

// DecodeEntitlements decodes a signed entitlements token. It returns nil
// for an empty token. An unparseable payload keeps the raw token with no
// records.
func DecodeEntitlements(signed string) *model.EntitlementsSnapshot {
	if signed == "" {
		return nil
	}
	snap := &model.EntitlementsSnapshot{Raw: signed}
	var c EntitlementsClaims
	if DecodeCompactClaims(signed, &c) {
		snap.Entitlements = c.Entitlements
	}
	return snap
}
