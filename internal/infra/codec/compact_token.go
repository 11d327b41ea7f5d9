package codec

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeCompactToken returns the payload of a header.payload.signature
// token, or nil if the token has fewer than two segments or the payload is
// not a JSON object. Header and signature are ignored.
func DecodeCompactToken(token string) map[string]any {
	var m map[string]any
	if !DecodeCompactClaims(token, &m) || m == nil {
		return nil
	}
	return m
}

// DecodeCompactClaims unmarshals the token payload into dst and reports
// whether that succeeded.
func DecodeCompactClaims(token string, dst any) bool {
	raw, ok := payloadSegment(token)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func payloadSegment(token string) ([]byte, bool) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, false
	}
	// tolerate the standard alphabet as well
	seg := strings.NewReplacer("+", "-", "/", "_").Replace(parts[1])
	raw, err := segmentParser.DecodeSegment(seg)
	if err != nil {
		return nil, false
	}
	return raw, true
}
