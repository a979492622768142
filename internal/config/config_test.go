package config_test

import (
	"testing"

	"app/internal/config"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("PORT", "8080")
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DB", "storefront")
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("ADMIN_SECRET", "s3cret")
	t.Setenv("GO_ENV", "dev")
	t.Setenv("FE_URL", "http://localhost:3000")
	t.Setenv("CHECKOUT_WEBHOOK_URL", "https://hooks.example/orders")

	//任意項目は外の環境に引きずられないよう空へ戻す
	t.Setenv("POSTGRES_SSLMODE", "")
	t.Setenv("CONTACT_WEBHOOK_URL", "")
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("SUBMIT_TIMEOUT_SEC", "")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	assert.NoError(t, err)

	assert.Equal(t, "disable", cfg.PostgresSSLMode)
	assert.Equal(t, 10, cfg.SubmitTimeoutSec)
	//問い合わせの転送先は未指定なら注文と同じWebhook
	assert.Equal(t, "https://hooks.example/orders", cfg.ContactWebhookURL)
}

func TestLoad_SSLModePassedThrough(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_SSLMODE", "require")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "require", cfg.PostgresSSLMode)
}

func TestLoad_MissingAdminSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_SECRET")
}
