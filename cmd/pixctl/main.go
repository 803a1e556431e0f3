package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"pixbot/internal/config"
	"pixbot/internal/logger"
	"pixbot/internal/payment"
	"pixbot/internal/payment/pixflow"
	"pixbot/internal/payment/pixhub"
	"pixbot/internal/transport"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	registry, clients := newRegistry(cfg)

	ctx := logger.EnsureRequestID(context.Background())
	err = run(ctx, registry, os.Args[1:], os.Stdin, os.Stdout)
	for name, client := range clients {
		logger.FromCtx(ctx).Debug("outbound calls", zap.String("provider", name), zap.Any("stats", client.Stats()))
	}
	if err != nil {
		logger.FromCtx(ctx).Debug("pixctl failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRegistry gives every provider its own client so one upstream's
// limiter and breaker never gate another's calls. opts are applied first.
func newRegistry(cfg *config.Config, opts ...transport.ClientOption) (*payment.Registry, map[string]*transport.Client) {
	clients := make(map[string]*transport.Client, 2)
	for _, name := range []string{config.ProviderPixHub, config.ProviderPixFlow} {
		clientOpts := append([]transport.ClientOption{}, opts...)
		clientOpts = append(clientOpts,
			transport.WithRateLimit(cfg.Transport.RateLimit, cfg.Transport.RateBurst),
			transport.WithBreaker(name, cfg.Transport.BreakerFailures, cfg.Transport.BreakerCooldown),
		)
		clients[name] = transport.NewClient(clientOpts...)
	}

	registry := payment.NewRegistry(
		pixhub.New(clients[config.ProviderPixHub], cfg.Provider(config.ProviderPixHub), cfg.General),
		pixflow.New(clients[config.ProviderPixFlow], cfg.Provider(config.ProviderPixFlow), cfg.General),
	)
	return registry, clients
}

func run(ctx context.Context, registry *payment.Registry, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: pixctl <charge|webhook|providers> [flags]")
	}

	switch args[0] {
	case "charge":
		return runCharge(ctx, registry, args[1:], stdout)
	case "webhook":
		return runWebhook(registry, args[1:], stdin, stdout)
	case "providers":
		for _, name := range registry.Names() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	default:
		return fmt.Errorf("unknown command: %s (use 'charge', 'webhook' or 'providers')", args[0])
	}
}

// settingFlags collects repeated -set key=value flags.
type settingFlags map[string]string

func (s settingFlags) String() string { return fmt.Sprint(map[string]string(s)) }

func (s settingFlags) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	s[strings.TrimSpace(key)] = value
	return nil
}

func runCharge(ctx context.Context, registry *payment.Registry, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("charge", flag.ContinueOnError)
	providerName := fs.String("provider", pixhub.Name, "payment provider")
	amountStr := fs.String("amount", "", "amount in reais, e.g. 12.34")
	externalID := fs.String("external-id", "", "correlation id (generated when empty)")
	name := fs.String("name", "", "payer name")
	email := fs.String("email", "", "payer email")
	document := fs.String("document", "", "payer CPF/CNPJ")
	phone := fs.String("phone", "", "payer phone")
	callback := fs.String("callback", "", "webhook callback URL")
	settings := settingFlags{}
	fs.Var(settings, "set", "per-call provider setting key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	provider, err := registry.Get(*providerName)
	if err != nil {
		return err
	}

	amount, err := payment.NewAmountFromString(*amountStr)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}

	if *externalID == "" {
		*externalID = uuid.NewString()
	}

	req := payment.ChargeRequest{
		Amount:     amount,
		ExternalID: *externalID,
		Payer: payment.Payer{
			Name:     *name,
			Email:    *email,
			Document: *document,
			Phone:    *phone,
		},
		CallbackURL: *callback,
		Settings:    settings,
	}

	res, err := provider.CreatePix(ctx, req)
	if err != nil {
		return describe(err)
	}
	return writeJSON(stdout, res)
}

func runWebhook(registry *payment.Registry, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("webhook", flag.ContinueOnError)
	providerName := fs.String("provider", pixhub.Name, "payment provider")
	file := fs.String("file", "", "payload file (stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	provider, err := registry.Get(*providerName)
	if err != nil {
		return err
	}

	in := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", *file, err)
		}
		defer f.Close()
		in = f
	}

	var payload map[string]any
	dec := json.NewDecoder(in)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return fmt.Errorf("webhook payload must be a JSON object: %w", err)
	}
	if payload == nil {
		return errors.New("webhook payload must be a JSON object")
	}

	event := provider.NormalizeWebhook(payload)
	paid := event.Status != nil && provider.IsPaidStatus(*event.Status)

	return writeJSON(stdout, struct {
		Provider string               `json:"provider"`
		Paid     bool                 `json:"paid"`
		Event    payment.WebhookEvent `json:"event"`
	}{provider.Name(), paid, event})
}

func describe(err error) error {
	var perr *payment.ProviderError
	if !errors.As(err, &perr) {
		return err
	}
	prefix := fmt.Sprintf("[%s]", perr.Kind)
	if perr.HTTPStatus != nil {
		prefix += fmt.Sprintf(" status=%d", *perr.HTTPStatus)
	}
	if perr.RequestID != nil {
		prefix += fmt.Sprintf(" request_id=%s", *perr.RequestID)
	}
	return fmt.Errorf("%s %w", prefix, err)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
