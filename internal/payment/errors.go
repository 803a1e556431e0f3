package payment

import (
	"errors"
	"fmt"
	"strings"

	"pixbot/internal/transport"
)

type Kind string

const (
	KindHTTP    Kind = "HTTP"
	KindNetwork Kind = "NETWORK"
	KindConfig  Kind = "CONFIG"
	KindUnknown Kind = "UNKNOWN"
)

// Meta is caller context attached to an error (step, external_id, amount).
type Meta map[string]any

// requestIDHeaders are checked in order for an upstream request id.
var requestIDHeaders = []string{"x-request-id", "x-correlation-id", "cf-ray"}

// ProviderError is the single error shape adapters return. HTTPStatus is
// set if and only if Kind is KindHTTP.
type ProviderError struct {
	Provider     string
	Kind         Kind
	Message      string
	HTTPStatus   *int
	RequestID    *string
	ResponseData any
	Meta         Meta
	Err          error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.Err }

// NewConfigError reports missing or invalid settings, detected before any
// network call.
func NewConfigError(provider, message string, meta Meta) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     KindConfig,
		Message:  fmt.Sprintf("%s: %s", provider, message),
		Meta:     copyMeta(meta),
	}
}

// Translate converts a transport failure into a ProviderError. fallback is
// the kind used when the error is neither an HTTP response nor a network
// failure; an empty or HTTP fallback becomes KindUnknown.
func Translate(provider string, err error, meta Meta, fallback Kind) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}

	var terr *transport.Error
	if errors.As(err, &terr) && terr.Response != nil {
		resp := terr.Response
		status := resp.Status

		msg := fmt.Sprintf("%s request failed: HTTP %d", provider, status)
		if resp.StatusText != "" {
			msg += " " + resp.StatusText
		}
		if detail := providerMessage(resp.Data); detail != "" {
			msg += " - " + detail
		}

		return &ProviderError{
			Provider:     provider,
			Kind:         KindHTTP,
			Message:      msg,
			HTTPStatus:   &status,
			RequestID:    requestID(resp),
			ResponseData: resp.Data,
			Meta:         copyMeta(meta),
			Err:          err,
		}
	}

	if terr != nil && terr.RequestSent {
		reason := "no response received"
		if terr.Err != nil {
			reason = terr.Err.Error()
		}
		return &ProviderError{
			Provider: provider,
			Kind:     KindNetwork,
			Message:  fmt.Sprintf("%s network error: %s", provider, reason),
			Meta:     copyMeta(meta),
			Err:      err,
		}
	}

	kind := fallback
	if kind == "" || kind == KindHTTP {
		kind = KindUnknown
	}
	msg := fmt.Sprintf("%s: unexpected error", provider)
	if err != nil && err.Error() != "" {
		msg = fmt.Sprintf("%s: %s", provider, err.Error())
	}
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Message:  msg,
		Meta:     copyMeta(meta),
		Err:      err,
	}
}

// IsKind reports whether err is a ProviderError of the given kind.
func IsKind(err error, kind Kind) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Kind == kind
}

func providerMessage(data any) string {
	switch v := data.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, key := range []string{"message", "error", "details"} {
			if s := messageValue(v[key]); s != "" {
				return s
			}
		}
	}
	return ""
}

func messageValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if s, ok := t["message"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	if s, ok := scalarString(v); ok {
		return s
	}
	return ""
}

func requestID(resp *transport.Response) *string {
	if resp.Header == nil {
		return nil
	}
	for _, h := range requestIDHeaders {
		if v := strings.TrimSpace(resp.Header.Get(h)); v != "" {
			return &v
		}
	}
	return nil
}

func copyMeta(meta Meta) Meta {
	out := make(Meta, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
