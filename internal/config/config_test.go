package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habscollection/storefront/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.Storage)
	assert.Equal(t, "gbp", cfg.Currency)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9000"
storage: memory
kafka:
  enabled: true
  brokers: ["kafka-1:9092", "kafka-2:9092"]
stripe:
  publishable_key: pk_test_yaml
currency: usd
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.Storage)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "pk_test_yaml", cfg.Stripe.PublishableKey)
	assert.Equal(t, "usd", cfg.Currency)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: [unclosed"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("STORAGE", "memory")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092,broker-b:9092")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_env")
	t.Setenv("EMAIL_USER", "shop@example.com")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "sk_test_env", cfg.Stripe.SecretKey)
	assert.Equal(t, 2525, cfg.SMTP.Port)

	// A configured mail account switches SMTP on.
	assert.True(t, cfg.SMTP.Enabled)
	assert.Equal(t, "shop@example.com", cfg.SMTP.Username)
}

func TestInvalidSMTPPort(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")

	_, err := config.Load("")
	assert.Error(t, err)
}
