package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		dir := t.TempDir()
		settingsFile := filepath.Join(dir, "bot.env")
		require.NoError(t, os.WriteFile(settingsFile, []byte("PIXHUB_BASE_URL=https://general.example\npixflow_api_key=gen-key\n"), 0o600))

		t.Setenv("APP_ENV", "test")
		t.Setenv("BOT_SETTINGS_FILE", settingsFile)
		t.Setenv("PIXHUB_BASE_URL", "https://hub.example")
		t.Setenv("PIXHUB_CLIENT_ID", "cid")
		t.Setenv("PIXHUB_CLIENT_SECRET", "csecret")
		t.Setenv("PIXFLOW_API_KEY", "pf-key")
		t.Setenv("PIXFLOW_AMOUNT_UNIT", "cents")
		t.Setenv("HTTP_RATE_LIMIT", "5")
		t.Setenv("HTTP_BREAKER_COOLDOWN", "1m")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "https://hub.example", cfg.Provider(ProviderPixHub)["base_url"])
		assert.Equal(t, "cid", cfg.Provider(ProviderPixHub)["client_id"])
		assert.Equal(t, "csecret", cfg.Provider(ProviderPixHub)["client_secret"])
		assert.Equal(t, "pf-key", cfg.Provider(ProviderPixFlow)["api_key"])
		assert.Equal(t, "cents", cfg.Provider(ProviderPixFlow)["amount_unit"])
		assert.Equal(t, "https://general.example", cfg.General["pixhub_base_url"])
		assert.Equal(t, "gen-key", cfg.General["pixflow_api_key"])
		assert.Equal(t, 5.0, cfg.Transport.RateLimit)
		assert.Equal(t, time.Minute, cfg.Transport.BreakerCooldown)
		assert.Equal(t, uint32(5), cfg.Transport.BreakerFailures)
	})

	t.Run("Missing settings file", func(t *testing.T) {
		t.Setenv("BOT_SETTINGS_FILE", filepath.Join(t.TempDir(), "nope.env"))

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("Negative breaker failures keep the default", func(t *testing.T) {
		t.Setenv("BOT_SETTINGS_FILE", "")
		t.Setenv("HTTP_BREAKER_FAILURES", "-3")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, uint32(5), cfg.Transport.BreakerFailures)
	})

	t.Run("Zero breaker failures disables it", func(t *testing.T) {
		t.Setenv("BOT_SETTINGS_FILE", "")
		t.Setenv("HTTP_BREAKER_FAILURES", "0")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Zero(t, cfg.Transport.BreakerFailures)
	})

	t.Run("Unknown provider layer is empty", func(t *testing.T) {
		var cfg *Config
		assert.NotNil(t, cfg.Provider("other"))
		assert.Empty(t, cfg.Provider("other"))
	})
}

func TestResolver(t *testing.T) {
	r := Resolver{
		ProviderName: ProviderPixHub,
		Call:         Settings{"base_url": "https://call", "client_id": "  "},
		Provider:     Settings{"base_url": "https://provider", "client_id": "provider-id"},
		General:      Settings{"pixhub_base_url": "https://general", "pixhub_client_id": "general-id", "pixhub_client_secret": "general-secret"},
	}

	t.Run("Call layer wins", func(t *testing.T) {
		assert.Equal(t, "https://call", r.String("base_url", "https://default"))
	})

	t.Run("Blank call value falls through to provider", func(t *testing.T) {
		assert.Equal(t, "provider-id", r.String("client_id", ""))
	})

	t.Run("General layer uses provider prefix", func(t *testing.T) {
		assert.Equal(t, "general-secret", r.String("client_secret", ""))
	})

	t.Run("Default when nothing is set", func(t *testing.T) {
		assert.Equal(t, "fallback", r.String("missing", "fallback"))
	})

	t.Run("Nil layers", func(t *testing.T) {
		assert.Equal(t, "d", Resolver{}.String("base_url", "d"))
	})

	t.Run("Duration", func(t *testing.T) {
		d := Resolver{Call: Settings{"timeout": "5s", "bad": "soon"}}
		assert.Equal(t, 5*time.Second, d.Duration("timeout", time.Minute))
		assert.Equal(t, time.Minute, d.Duration("bad", time.Minute))
		assert.Equal(t, time.Minute, d.Duration("absent", time.Minute))
	})
}
