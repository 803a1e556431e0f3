package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names used as env prefixes and general-settings key prefixes.
const (
	ProviderPixHub  = "pixhub"
	ProviderPixFlow = "pixflow"
)

// Settings is one layer of provider configuration keyed by setting name
// (base_url, client_id, api_key, ...).
type Settings map[string]string

type TransportConfig struct {
	RateLimit       float64
	RateBurst       int
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type Config struct {
	AppEnv          string
	BotSettingsFile string
	Providers       map[string]Settings
	General         Settings
	Transport       TransportConfig
}

var providerKeys = map[string][]string{
	ProviderPixHub:  {"base_url", "client_id", "client_secret", "timeout"},
	ProviderPixFlow: {"base_url", "api_key", "create_path", "amount_unit", "auth_header", "timeout"},
}

// LoadConfig reads .env (if present), the process environment and the
// general bot settings file. A missing settings file leaves the general
// layer empty.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:          os.Getenv("APP_ENV"),
		BotSettingsFile: os.Getenv("BOT_SETTINGS_FILE"),
		Providers:       make(map[string]Settings, len(providerKeys)),
		General:         Settings{},
		Transport: TransportConfig{
			RateLimit:       envFloat("HTTP_RATE_LIMIT", 0),
			RateBurst:       envInt("HTTP_RATE_BURST", 1),
			BreakerFailures: envUint32("HTTP_BREAKER_FAILURES", 5),
			BreakerCooldown: envDuration("HTTP_BREAKER_COOLDOWN", 30*time.Second),
		},
	}

	for provider, keys := range providerKeys {
		layer := Settings{}
		for _, key := range keys {
			if v := os.Getenv(envName(provider, key)); v != "" {
				layer[key] = v
			}
		}
		cfg.Providers[provider] = layer
	}

	if cfg.BotSettingsFile != "" {
		general, err := LoadBotSettings(cfg.BotSettingsFile)
		if err != nil {
			return nil, err
		}
		cfg.General = general
	}

	return cfg, nil
}

// LoadBotSettings parses a KEY=VALUE bot settings file. Keys are lower-cased
// so PIXHUB_BASE_URL and pixhub_base_url are the same setting.
func LoadBotSettings(path string) (Settings, error) {
	raw, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	out := make(Settings, len(raw))
	for k, v := range raw {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out, nil
}

// Provider returns the provider-scoped layer, never nil.
func (c *Config) Provider(name string) Settings {
	if c == nil || c.Providers[name] == nil {
		return Settings{}
	}
	return c.Providers[name]
}

func envName(provider, key string) string {
	return strings.ToUpper(provider + "_" + key)
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

// envUint32 falls back to def for negative or oversized values.
func envUint32(key string, def uint32) uint32 {
	v, err := strconv.ParseUint(strings.TrimSpace(os.Getenv(key)), 10, 32)
	if err != nil {
		return def
	}
	return uint32(v)
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}
