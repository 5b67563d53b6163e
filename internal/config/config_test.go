package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c := context.Background()

	t.Run("given no config file should use defaults", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		cfg, err := Load(c, "medkit-missing")
		require.NoError(t, err)

		assert.Equal(t, "production", cfg.Application.Env)
		assert.Equal(t, SessionDriverSqlite, cfg.Session.Driver)
		assert.Equal(t, "sessionId", cfg.Session.Key)
		assert.Equal(t, 30*time.Second, cfg.Api.Timeout)
		assert.Equal(t, uint32(5), cfg.Api.Breaker.MaxConsecutiveFailures)
		assert.Equal(t, "1500", cfg.Pricing.ShippingFee.String())
		assert.Equal(t, "0.08", cfg.Pricing.TaxRate.String())
		assert.False(t, cfg.Cache.CatalogEnabled)
		assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
		assert.Equal(t, "otel-collector:4317", cfg.Otel.Endpoint())
	})

	t.Run("given environment should override defaults", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("MEDKIT_PRICING_TAX_RATE", "0.1")
		t.Setenv("MEDKIT_API_TIMEOUT", "10s")
		t.Setenv("MEDKIT_SESSION_DRIVER", SessionDriverMemory)

		cfg, err := Load(c, "medkit-missing")
		require.NoError(t, err)

		assert.Equal(t, "0.1", cfg.Pricing.TaxRate.String())
		assert.Equal(t, 10*time.Second, cfg.Api.Timeout)
		assert.Equal(t, SessionDriverMemory, cfg.Session.Driver)
	})

	t.Run("given config file in home should read it", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		dir := filepath.Join(home, ".medkit")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		content := []byte(`
api:
  base_url: http://localhost:8080
session:
  driver: redis
cache:
  catalog_enabled: true
  ttl: 30s
pricing:
  shipping_fee: 2000
`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "medkit-test.yaml"), content, 0o600))

		cfg, err := Load(c, "medkit-test")
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8080", cfg.Api.BaseURL)
		assert.Equal(t, SessionDriverRedis, cfg.Session.Driver)
		assert.True(t, cfg.Cache.CatalogEnabled)
		assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
		assert.Equal(t, "2000", cfg.Pricing.ShippingFee.String())
		assert.Equal(t, "0.08", cfg.Pricing.TaxRate.String())
	})

	t.Run("given unknown session driver should return error", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("MEDKIT_SESSION_DRIVER", "mongo")

		_, err := Load(c, "medkit-missing")
		assert.ErrorContains(t, err, "invalid session.driver=mongo")
	})

	t.Run("given negative tax rate should return error", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("MEDKIT_PRICING_TAX_RATE", "-0.08")

		_, err := Load(c, "medkit-missing")
		assert.Error(t, err)
	})
}

func TestContext(t *testing.T) {
	c := context.Background()

	_, err := FromContext(c)
	assert.ErrorIs(t, err, ErrConfigNotFound)

	cfg := &Config{Session: Session{Driver: SessionDriverMemory}}
	got, err := FromContext(AttachToContext(c, cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
