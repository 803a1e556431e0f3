// Package pixflow adapts the PixFlow charge API, authenticated with a
// static API key.
package pixflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pixbot/internal/config"
	"pixbot/internal/logger"
	"pixbot/internal/payment"
	"pixbot/internal/transport"

	"go.uber.org/zap"
)

const (
	Name = config.ProviderPixFlow

	defaultBaseURL    = "https://api.pixflow.io"
	defaultCreatePath = "/v1/pix/charges"
	defaultAuthHeader = "Authorization"
	defaultTimeout    = 30 * time.Second
)

// AmountUnit selects how the charge amount is serialized.
type AmountUnit string

const (
	UnitDecimal AmountUnit = "decimal"
	UnitCents   AmountUnit = "cents"
)

var paid = payment.PaidStatuses("PAID", "CONCLUDED", "CONCLUIDA", "CONFIRMED", "RECEIVED", "SETTLED")

var resultFields = payment.ResultFields{
	TransactionID: payment.Keys("id", "charge_id", "chargeId", "transaction_id", "data.id", "charge.id"),
	Status:        payment.Keys("status", "data.status", "charge.status"),
	QRCode: payment.Keys(
		"pix.copy_paste", "pix.copyPaste", "pix.emv", "pix.qr_code",
		"qr_code", "qrcode", "emv",
		"data.pix.copy_paste", "data.qr_code", "charge.pix.emv",
	),
}

var webhookFields = payment.WebhookFields{
	TransactionID: payment.Keys("id", "charge_id", "chargeId", "data.id", "charge.id"),
	ExternalID:    payment.Keys("external_reference", "externalReference", "reference", "data.external_reference", "charge.external_reference"),
	Status:        payment.Keys("status", "data.status", "charge.status"),
	Fee:           payment.Keys("fee", "fees", "data.fee", "charge.fee"),
	NetAmount:     payment.Keys("net_amount", "netAmount", "liquid_amount", "data.net_amount"),
	Total:         payment.Keys("amount", "total", "paid_amount", "data.amount", "charge.amount"),
	EndToEnd:      payment.Keys("end_to_end_id", "endToEndId", "e2e_id", "pix.end_to_end_id", "data.end_to_end_id", "charge.pix.end_to_end_id"),
}

type Adapter struct {
	poster   transport.Poster
	provider config.Settings
	general  config.Settings
}

func New(poster transport.Poster, provider, general config.Settings) *Adapter {
	return &Adapter{
		poster:   poster,
		provider: provider,
		general:  general,
	}
}

func (a *Adapter) Name() string { return Name }

type settings struct {
	baseURL    string
	apiKey     string
	createPath string
	unit       AmountUnit
	authHeader string
	timeout    time.Duration
}

func (a *Adapter) resolve(call map[string]string) settings {
	r := config.Resolver{
		ProviderName: Name,
		Call:         call,
		Provider:     a.provider,
		General:      a.general,
	}

	path := r.String("create_path", defaultCreatePath)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return settings{
		baseURL:    strings.TrimRight(r.String("base_url", defaultBaseURL), "/"),
		apiKey:     r.String("api_key", ""),
		createPath: path,
		unit:       AmountUnit(strings.ToLower(r.String("amount_unit", string(UnitDecimal)))),
		authHeader: r.String("auth_header", defaultAuthHeader),
		timeout:    r.Duration("timeout", defaultTimeout),
	}
}

func (s settings) headers() map[string]string {
	if strings.EqualFold(s.authHeader, defaultAuthHeader) {
		return map[string]string{defaultAuthHeader: "Bearer " + s.apiKey}
	}
	return map[string]string{s.authHeader: s.apiKey}
}

// amount renders the charge amount in the configured unit.
func (s settings) amount(a payment.Amount) (any, error) {
	switch s.unit {
	case UnitDecimal:
		return json.Number(a.Decimal().StringFixed(2)), nil
	case UnitCents:
		if err := a.Validate(); err != nil {
			return nil, err
		}
		return a.Cents(), nil
	default:
		return nil, fmt.Errorf("unsupported amount_unit %q", s.unit)
	}
}

type customerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Phone    string `json:"phone,omitempty"`
}

type chargeBody struct {
	Amount            any            `json:"amount"`
	ExternalReference string         `json:"external_reference"`
	Customer          customerBody   `json:"customer"`
	PostbackURL       string         `json:"postback_url,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

func (a *Adapter) CreatePix(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	s := a.resolve(req.Settings)

	log := logger.FromCtx(ctx,
		zap.String("provider", Name),
		zap.String("external_id", req.ExternalID),
		zap.String("amount", req.Amount.String()),
		zap.String("amount_unit", string(s.unit)),
		zap.String("base_url", s.baseURL),
	)

	meta := payment.Meta{
		"step":        "create_charge",
		"external_id": req.ExternalID,
	}

	if s.apiKey == "" {
		log.Error("pixflow api key not configured")
		return nil, payment.NewConfigError(Name, "api_key is required", meta)
	}

	amount, err := s.amount(req.Amount)
	if err != nil {
		log.Error("pixflow amount unit invalid", zap.Error(err))
		return nil, payment.NewConfigError(Name, err.Error(), meta)
	}
	meta["amount"] = amount

	body := chargeBody{
		Amount:            amount,
		ExternalReference: req.ExternalID,
		Customer: customerBody{
			Name:     req.Payer.Name,
			Email:    req.Payer.Email,
			Document: req.Payer.Document,
			Phone:    req.Payer.Phone,
		},
		PostbackURL: req.CallbackURL,
		Metadata:    req.Meta,
	}

	log.Info("Sending charge request to pixflow", logger.Secret("api_key", s.apiKey))

	resp, err := a.poster.Post(ctx, s.baseURL+s.createPath, body, transport.Options{
		Headers: s.headers(),
		Timeout: s.timeout,
	})
	if err != nil {
		perr := payment.Translate(Name, err, meta, payment.KindUnknown)
		log.Error("pixflow charge failed",
			zap.String("kind", string(perr.Kind)),
			zap.Error(perr),
		)
		return nil, perr
	}

	res := resultFields.Result(Name, req.ExternalID, resp.Data)

	log.Info("pixflow charge created",
		zap.Stringp("transaction_id", res.TransactionID),
		zap.String("status", res.Status),
		zap.Bool("has_qrcode", res.QRCode != nil),
	)
	return res, nil
}

func (a *Adapter) NormalizeWebhook(payload map[string]any) payment.WebhookEvent {
	return webhookFields.Normalize(payload)
}

func (a *Adapter) IsPaidStatus(status string) bool {
	return paid.Match(status)
}
