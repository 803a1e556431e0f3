package payment

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Accessor reads one candidate location out of a decoded JSON object.
type Accessor func(m map[string]any) (any, bool)

// Path walks nested objects: Path("data", "pix", "qrcode").
func Path(keys ...string) Accessor {
	return func(m map[string]any) (any, bool) {
		var cur any = m
		for _, k := range keys {
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			cur, ok = obj[k]
			if !ok {
				return nil, false
			}
		}
		if cur == nil {
			return nil, false
		}
		return cur, true
	}
}

// Field is an ordered list of candidate locations for one logical value.
// The first candidate holding a usable value wins.
type Field []Accessor

// Keys builds a Field from dotted paths ("data.transaction_id").
func Keys(paths ...string) Field {
	f := make(Field, 0, len(paths))
	for _, p := range paths {
		f = append(f, Path(strings.Split(p, ".")...))
	}
	return f
}

// String returns the first candidate that renders as a non-empty scalar.
func (f Field) String(m map[string]any) *string {
	if m == nil {
		return nil
	}
	for _, get := range f {
		v, ok := get(m)
		if !ok {
			continue
		}
		if s, ok := scalarString(v); ok && s != "" {
			return &s
		}
	}
	return nil
}

// Number coerces the first present candidate. A value that is not a
// finite number yields nil.
func (f Field) Number(m map[string]any) *float64 {
	if m == nil {
		return nil
	}
	for _, get := range f {
		if v, ok := get(m); ok {
			return ToNumber(v)
		}
	}
	return nil
}

// ToNumber accepts JSON numbers, Go numeric types and numeric strings
// ("12.5", " 12,5 "). NaN, infinities and anything unparsable give nil.
func ToNumber(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// ResultFields is a provider's lookup table for charge responses.
type ResultFields struct {
	TransactionID Field
	Status        Field
	QRCode        Field
}

// Result builds a ChargeResult from a successful provider response.
// external_id is echoed from the request, never read back.
func (rf ResultFields) Result(provider, externalID string, raw any) *ChargeResult {
	body, _ := raw.(map[string]any)

	status := DefaultStatus
	if s := rf.Status.String(body); s != nil {
		status = *s
	}

	return &ChargeResult{
		Provider:      provider,
		ExternalID:    externalID,
		TransactionID: rf.TransactionID.String(body),
		Status:        status,
		QRCode:        rf.QRCode.String(body),
		Raw:           raw,
	}
}

// WebhookFields is a provider's lookup table for inbound notifications.
type WebhookFields struct {
	TransactionID Field
	ExternalID    Field
	Status        Field
	Fee           Field
	NetAmount     Field
	Total         Field
	EndToEnd      Field
}

// Normalize never fails: anything missing or malformed comes back nil.
func (wf WebhookFields) Normalize(payload map[string]any) WebhookEvent {
	return WebhookEvent{
		TransactionID: wf.TransactionID.String(payload),
		ExternalID:    wf.ExternalID.String(payload),
		Status:        wf.Status.String(payload),
		Fee:           wf.Fee.Number(payload),
		NetAmount:     wf.NetAmount.Number(payload),
		Total:         wf.Total.Number(payload),
		EndToEnd:      wf.EndToEnd.String(payload),
		Raw:           payload,
	}
}
