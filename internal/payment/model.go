package payment

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultStatus is reported when a provider response carries no status.
const DefaultStatus = "PENDING"

// ErrAmountOutOfRange is returned for amounts whose centavo count does not
// fit in an int64.
var ErrAmountOutOfRange = errors.New("amount out of range")

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Amount is a BRL value in major units (reais). Providers convert it
// explicitly with Cents or Decimal.
type Amount struct {
	value decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d}
}

func NewAmountFromCents(cents int64) Amount {
	return Amount{value: decimal.New(cents, -2)}
}

// NewAmountFromString parses a major-unit amount such as "12.34" or "12,34".
func NewAmountFromString(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	a := Amount{value: d}
	if err := a.Validate(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// Validate rejects amounts Cents cannot represent.
func (a Amount) Validate() error {
	if a.value.Shift(2).Round(0).Abs().GreaterThan(maxCents) {
		return fmt.Errorf("%w: %s", ErrAmountOutOfRange, a.value.String())
	}
	return nil
}

// Cents rounds half away from zero to the nearest centavo. Callers check
// Validate first; out-of-range values do not fit.
func (a Amount) Cents() int64 {
	return a.value.Shift(2).Round(0).IntPart()
}

func (a Amount) Decimal() decimal.Decimal {
	return a.value.Round(2)
}

func (a Amount) IsPositive() bool {
	return a.value.IsPositive()
}

func (a Amount) String() string {
	return a.value.StringFixed(2)
}

type Payer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Phone    string `json:"phone,omitempty"`
}

// ChargeRequest is the input of CreatePix. Settings holds per-call
// overrides of provider configuration (base_url, credentials, ...).
type ChargeRequest struct {
	Amount      Amount
	ExternalID  string
	Payer       Payer
	Meta        map[string]any
	CallbackURL string
	Settings    map[string]string
}

type ChargeResult struct {
	Provider      string  `json:"provider"`
	ExternalID    string  `json:"external_id"`
	TransactionID *string `json:"transaction_id"`
	Status        string  `json:"status"`
	QRCode        *string `json:"qrcode"`
	Raw           any     `json:"raw"`
}

// WebhookEvent is the provider-neutral view of an inbound notification.
// Every field a payload does not carry is nil.
type WebhookEvent struct {
	TransactionID *string        `json:"transaction_id"`
	ExternalID    *string        `json:"external_id"`
	Status        *string        `json:"status"`
	Fee           *float64       `json:"fee"`
	NetAmount     *float64       `json:"net_amount"`
	Total         *float64       `json:"total"`
	EndToEnd      *string        `json:"end_to_end"`
	Raw           map[string]any `json:"raw"`
}
