// Package pixhub adapts the PixHub deposit API. Calls authenticate with a
// bearer token obtained from a client-credentials login and reused for up
// to ten minutes; amounts are sent in integer centavos.
package pixhub

import (
	"context"
	"strings"
	"time"

	"pixbot/internal/config"
	"pixbot/internal/logger"
	"pixbot/internal/payment"
	"pixbot/internal/transport"

	"go.uber.org/zap"
)

const (
	Name = config.ProviderPixHub

	defaultBaseURL = "https://api.pixhub.com.br"
	defaultTimeout = 30 * time.Second

	loginPath   = "/api/auth/login"
	depositPath = "/api/payments/deposit"
)

var paid = payment.PaidStatuses("PAID", "COMPLETED", "CONFIRMED", "SUCCESS", "APPROVED")

var loginFields = payment.Keys("token", "access_token", "accessToken", "data.token", "data.access_token")

var resultFields = payment.ResultFields{
	TransactionID: payment.Keys("transaction_id", "transactionId", "id", "data.transaction_id", "data.transactionId", "data.id"),
	Status:        payment.Keys("status", "data.status"),
	QRCode:        payment.Keys("qrcode", "qr_code", "pix.qrcode", "pix.copy_paste", "data.qrcode", "data.qr_code", "data.pix.qrcode"),
}

var webhookFields = payment.WebhookFields{
	TransactionID: payment.Keys("transaction_id", "transactionId", "id", "data.transaction_id", "data.transactionId", "data.id"),
	ExternalID:    payment.Keys("external_id", "externalId", "data.external_id", "data.externalId"),
	Status:        payment.Keys("status", "data.status"),
	Fee:           payment.Keys("fee", "data.fee"),
	NetAmount:     payment.Keys("net_amount", "netAmount", "data.net_amount", "data.netAmount"),
	Total:         payment.Keys("total", "amount", "data.total", "data.amount"),
	EndToEnd:      payment.Keys("end_to_end_id", "endToEndId", "end_to_end", "e2e_id", "data.end_to_end_id", "data.endToEndId"),
}

type Adapter struct {
	poster   transport.Poster
	provider config.Settings
	general  config.Settings
	tokens   *payment.TokenCache
	now      func() time.Time
}

type Option func(*Adapter)

// WithClock replaces time.Now for token expiry.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// New builds an adapter over the provider-scoped and general settings
// layers; per-call overrides arrive in ChargeRequest.Settings.
func New(poster transport.Poster, provider, general config.Settings, opts ...Option) *Adapter {
	a := &Adapter{
		poster:   poster,
		provider: provider,
		general:  general,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.tokens = payment.NewTokenCache(payment.DefaultTokenTTL, a.now)
	return a
}

func (a *Adapter) Name() string { return Name }

type settings struct {
	baseURL      string
	clientID     string
	clientSecret string
	timeout      time.Duration
}

func (a *Adapter) resolve(call map[string]string) settings {
	r := config.Resolver{
		ProviderName: Name,
		Call:         call,
		Provider:     a.provider,
		General:      a.general,
	}
	return settings{
		baseURL:      strings.TrimRight(r.String("base_url", defaultBaseURL), "/"),
		clientID:     r.String("client_id", ""),
		clientSecret: r.String("client_secret", ""),
		timeout:      r.Duration("timeout", defaultTimeout),
	}
}

type payerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Phone    string `json:"phone,omitempty"`
}

type depositBody struct {
	Amount      int64          `json:"amount"`
	ExternalID  string         `json:"external_id"`
	Payer       payerBody      `json:"payer"`
	CallbackURL string         `json:"callbackUrl,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

func (a *Adapter) CreatePix(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	s := a.resolve(req.Settings)

	log := logger.FromCtx(ctx,
		zap.String("provider", Name),
		zap.String("external_id", req.ExternalID),
		zap.String("base_url", s.baseURL),
	)

	if err := req.Amount.Validate(); err != nil {
		log.Error("pixhub amount rejected", zap.Error(err))
		return nil, payment.NewConfigError(Name, err.Error(), payment.Meta{
			"step":        "deposit",
			"external_id": req.ExternalID,
			"amount":      req.Amount.String(),
		})
	}
	cents := req.Amount.Cents()
	log = log.With(zap.Int64("amount_cents", cents))

	loginMeta := payment.Meta{
		"step":        "login",
		"external_id": req.ExternalID,
		"amount":      cents,
	}

	if s.clientID == "" || s.clientSecret == "" {
		log.Error("pixhub credentials not configured")
		return nil, payment.NewConfigError(Name, "client_id and client_secret are required", loginMeta)
	}

	token, err := a.tokens.Token(ctx, s.baseURL+"|"+s.clientID, func(ctx context.Context) (string, error) {
		return a.login(ctx, s, loginMeta)
	})
	if err != nil {
		log.Error("pixhub authentication failed", zap.Error(err))
		return nil, payment.Translate(Name, err, loginMeta, payment.KindUnknown)
	}

	body := depositBody{
		Amount:     cents,
		ExternalID: req.ExternalID,
		Payer: payerBody{
			Name:     req.Payer.Name,
			Email:    req.Payer.Email,
			Document: req.Payer.Document,
			Phone:    req.Payer.Phone,
		},
		CallbackURL: req.CallbackURL,
		Meta:        req.Meta,
	}

	log.Info("Sending deposit request to pixhub")

	resp, err := a.poster.Post(ctx, s.baseURL+depositPath, body, transport.Options{
		Headers: map[string]string{"Authorization": "Bearer " + token},
		Timeout: s.timeout,
	})
	if err != nil {
		perr := payment.Translate(Name, err, payment.Meta{
			"step":        "deposit",
			"external_id": req.ExternalID,
			"amount":      cents,
		}, payment.KindUnknown)
		log.Error("pixhub deposit failed",
			zap.String("kind", string(perr.Kind)),
			zap.Error(perr),
		)
		return nil, perr
	}

	res := resultFields.Result(Name, req.ExternalID, resp.Data)

	log.Info("pixhub deposit created",
		zap.Stringp("transaction_id", res.TransactionID),
		zap.String("status", res.Status),
		zap.Bool("has_qrcode", res.QRCode != nil),
	)
	return res, nil
}

func (a *Adapter) login(ctx context.Context, s settings, meta payment.Meta) (string, error) {
	log := logger.FromCtx(ctx,
		zap.String("provider", Name),
		logger.Secret("client_id", s.clientID),
	)
	log.Info("Requesting pixhub access token")

	resp, err := a.poster.Post(ctx, s.baseURL+loginPath, map[string]string{
		"client_id":     s.clientID,
		"client_secret": s.clientSecret,
	}, transport.Options{Timeout: s.timeout})
	if err != nil {
		return "", payment.Translate(Name, err, meta, payment.KindUnknown)
	}

	body, _ := resp.Data.(map[string]any)
	token := loginFields.String(body)
	if token == nil {
		log.Error("pixhub login response has no token")
		return "", payment.ErrMissingToken
	}
	return *token, nil
}

func (a *Adapter) NormalizeWebhook(payload map[string]any) payment.WebhookEvent {
	return webhookFields.Normalize(payload)
}

func (a *Adapter) IsPaidStatus(status string) bool {
	return paid.Match(status)
}
