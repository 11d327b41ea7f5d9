// File: internal/usecase/response_decoder.go
package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/domain"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/infra/codec"
)

const swgCallbackKey = "swgCallbackData"

// envelope is a provider payload split into the purchase block and the
// object carrying request metadata around it.
type envelope struct {
	outer map[string]any
	block map[string]any
}

// shapeDetector recognizes one physical payload encoding. ok reports a
// match; a matching detector may still fail to decode.
type shapeDetector struct {
	name   string
	detect func(raw any) (env envelope, ok bool, err error)
}

// Detectors run in order and the first match wins. The last one accepts
// any object.
var shapeDetectors = []shapeDetector{
	{name: "string_envelope", detect: detectStringEnvelope},
	{name: "integrator_wrapped", detect: detectIntegratorWrapped},
	{name: "swg_nested", detect: detectSwgNested},
	{name: "top_level", detect: detectTopLevel},
}

// ResponseDecoder turns provider payloads into purchase results.
type ResponseDecoder struct {
	log *zerolog.Logger
}

func NewResponseDecoder(logger *zerolog.Logger) *ResponseDecoder {
	return &ResponseDecoder{log: logger}
}

// Decode parses raw into a PurchaseResult bound to complete. It fails with
// ErrMalformedResponse for nil input and ErrInvalidEnvelope when an
// encoded envelope cannot be decoded. Missing optional fields never fail.
func (d *ResponseDecoder) Decode(raw any, complete func()) (*model.PurchaseResult, error) {
	if raw == nil {
		return nil, domain.ErrMalformedResponse
	}
	obj, err := codec.NormalizeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}

	var env envelope
	for _, s := range shapeDetectors {
		e, ok, err := s.detect(obj)
		if err != nil {
			return nil, fmt.Errorf("decode payment response (%s): %w", s.name, err)
		}
		if ok {
			d.log.Debug().Str("shape", s.name).Msg("payment response shape detected")
			env = e
			break
		}
	}
	if env.block == nil {
		return nil, domain.ErrMalformedResponse
	}

	canonical, err := codec.CanonicalJSON(env.block)
	if err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}

	res := &model.PurchaseResult{
		Raw: canonical,
		Receipt: model.PurchaseReceipt{
			Raw:       receiptString(env.block["purchaseData"]),
			Signature: stringField(env.block, "purchaseDataSignature"),
		},
		Identity:              codec.DecodeIdentity(stringField(env.block, "idToken")),
		Entitlements:          codec.DecodeEntitlements(stringField(env.block, "signedEntitlements")),
		Classification:        classify(env.outer),
		SwgUserToken:          firstStringPtr("swgUserToken", env.block, env.outer),
		ProviderTransactionID: firstStringPtr("googleTransactionId", env.outer, env.block),
	}
	if swg := nestedObject(env.outer, "paymentRequest", "swg"); swg != nil {
		res.PaymentRecurrence = intField(swg["paymentRecurrence"])
		if md, ok := swg["metadata"].(map[string]any); ok {
			res.RequestMetadata = md
		}
	}
	res.SetCompletionCallback(complete)
	return res, nil
}

// classify resolves product type and old sku. The request-nested product
// type wins over the top-level one.
func classify(outer map[string]any) model.ProductClassification {
	pt := stringField(outer, "productType")
	if nested := stringField(nestedObject(outer, "paymentRequest", "i"), "productType"); nested != "" {
		pt = nested
	}
	c := model.ProductClassification{ProductType: model.ProductTypeOrDefault(pt)}
	if old := stringField(nestedObject(outer, "paymentRequest", "swg"), "oldSku"); old != "" {
		c.OldSKU = &old
	}
	return c
}

func detectStringEnvelope(raw any) (envelope, bool, error) {
	s, ok := raw.(string)
	if !ok {
		return envelope{}, false, nil
	}
	m, err := codec.DecodeEnvelope(s)
	if err != nil {
		return envelope{}, true, err
	}
	return splitDecoded(m), true, nil
}

func detectIntegratorWrapped(raw any) (envelope, bool, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return envelope{}, false, nil
	}
	wrapped, ok := obj[codec.IntegratorKey].(string)
	if !ok || wrapped == "" {
		return envelope{}, false, nil
	}
	m, err := codec.DecodeEnvelope(obj)
	if err != nil {
		return envelope{}, true, err
	}
	inner := splitDecoded(m)
	// request metadata lives on the wrapper
	return envelope{outer: obj, block: inner.block}, true, nil
}

func detectSwgNested(raw any) (envelope, bool, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return envelope{}, false, nil
	}
	switch swg := obj[swgCallbackKey].(type) {
	case map[string]any:
		return envelope{outer: obj, block: swg}, true, nil
	case string:
		m, err := codec.DecodeBase64JSON(swg)
		if err != nil {
			return envelope{}, true, err
		}
		return envelope{outer: obj, block: splitDecoded(m).block}, true, nil
	}
	return envelope{}, false, nil
}

func detectTopLevel(raw any) (envelope, bool, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return envelope{}, false, nil
	}
	return envelope{outer: obj, block: obj}, true, nil
}

// splitDecoded separates a decoded envelope into its purchase block and
// the surrounding object.
func splitDecoded(m map[string]any) envelope {
	if block, ok := m[swgCallbackKey].(map[string]any); ok {
		return envelope{outer: m, block: block}
	}
	return envelope{outer: m, block: m}
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func firstStringPtr(key string, ms ...map[string]any) *string {
	for _, m := range ms {
		if s, ok := m[key].(string); ok {
			return &s
		}
	}
	return nil
}

func nestedObject(m map[string]any, path ...string) map[string]any {
	cur := m
	for _, p := range path {
		if cur == nil {
			return nil
		}
		next, _ := cur[p].(map[string]any)
		cur = next
	}
	return cur
}

// receiptString returns purchase data as its JSON text. Providers send it
// as a string; an object is re-encoded.
func receiptString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		s, err := codec.CanonicalJSON(t)
		if err != nil {
			return ""
		}
		return s
	}
}

func intField(v any) *int {
	var n int
	switch t := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(t.String())
		if err != nil {
			return nil
		}
		n = i
	case float64:
		n = int(t)
	case int:
		n = t
	case string:
		i, err := strconv.Atoi(t)
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}
