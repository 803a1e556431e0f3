// Package payment holds the contract shared by PIX provider adapters and
// the helpers they are built from.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownProvider = errors.New("unknown payment provider")

type Provider interface {
	Name() string
	CreatePix(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	NormalizeWebhook(payload map[string]any) WebhookEvent
	IsPaidStatus(status string) bool
}

// Registry maps provider names to adapters. Picking one per transaction
// is up to the caller.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Provider) {
	r.providers[normalizeName(p.Name())] = p
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
