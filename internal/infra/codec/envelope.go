// Package codec decodes the envelopes and compact tokens exchanged with the
// payment provider. Nothing here verifies signatures.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"subscribe-payflow/internal/domain"
)

// IntegratorKey wraps a base64 envelope inside an outer JSON object.
const IntegratorKey = "integratorClientCallbackData"

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeBase64JSON decodes a base64 string (either alphabet, padding
// optional) holding a JSON object.
func DecodeBase64JSON(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", domain.ErrInvalidEnvelope)
	}
	var (
		raw []byte
		err error
	)
	for _, enc := range base64Encodings {
		if raw, err = enc.DecodeString(s); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64: %v", domain.ErrInvalidEnvelope, err)
	}
	return DecodeJSONObject(raw)
}

// DecodeJSONObject parses a JSON object. Numbers are kept as json.Number so
// re-encoding is lossless.
func DecodeJSONObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal envelope: %v", domain.ErrInvalidEnvelope, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: not a JSON object", domain.ErrInvalidEnvelope)
	}
	return m, nil
}

// NormalizeEnvelope reduces any accepted input to a string envelope or a
// JSON object. Strings and objects pass through, byte slices become
// strings, and anything else is round-tripped through encoding/json.
func NormalizeEnvelope(input any) (any, error) {
	switch v := input.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil input", domain.ErrInvalidEnvelope)
	case string, map[string]any:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return DecodeJSONObject(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to marshal input: %v", domain.ErrInvalidEnvelope, err)
		}
		return DecodeJSONObject(raw)
	}
}

// DecodeEnvelope turns any accepted envelope into its JSON object. A string
// is base64 of a JSON object. An object that only wraps an integrator
// envelope is unwrapped, any other object is used as is.
func DecodeEnvelope(input any) (map[string]any, error) {
	v, err := NormalizeEnvelope(input)
	if err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok {
		return DecodeBase64JSON(s)
	}
	m := v.(map[string]any)
	if wrapped, ok := m[IntegratorKey].(string); ok && wrapped != "" {
		return DecodeBase64JSON(wrapped)
	}
	return m, nil
}

// EncodeEnvelope converts v to base64-encoded JSON.
func EncodeEnvelope(v any) (string, error) {
	raw, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// CanonicalJSON marshals v with sorted object keys and no HTML escaping.
// Equal values always produce identical output.
func CanonicalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
