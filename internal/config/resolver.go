package config

import (
	"strings"
	"time"
)

// Resolver looks a setting up across three layers. Call overrides
// Provider, which overrides General; General keys carry the provider
// prefix ("pixhub_base_url").
type Resolver struct {
	ProviderName string
	Call         Settings
	Provider     Settings
	General      Settings
}

// String returns the first non-blank value for key, or def.
func (r Resolver) String(key, def string) string {
	if v, ok := lookup(r.Call, key); ok {
		return v
	}
	if v, ok := lookup(r.Provider, key); ok {
		return v
	}
	if r.ProviderName != "" {
		if v, ok := lookup(r.General, r.ProviderName+"_"+key); ok {
			return v
		}
	}
	return def
}

// Duration parses the resolved value; an unparsable value yields def.
func (r Resolver) Duration(key string, def time.Duration) time.Duration {
	v := r.String(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func lookup(s Settings, key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}
