package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("ADDRESS", ":9090")
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("FRONTEND_BASE_URL", "https://app.example.com")
	t.Setenv("EMAIL_ADDRESS", "noreply@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
	t.Setenv("MAIL_SEND_TIMEOUT", "5s")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, c.EndpointAddrHTTP, ":9090")
	assert.Equal(t, c.DatabaseDSN, "postgres://env")
	assert.Equal(t, c.SecretKey, "env-secret")
	assert.Equal(t, c.FrontendBaseURL, "https://app.example.com")
	assert.Equal(t, c.SMTPUsername, "noreply@example.com")
	assert.Equal(t, c.SMTPPassword, "app-password")
	assert.Equal(t, c.MailSendTimeout, 5*time.Second)

	// the SMTP username doubles as the From address unless overridden
	assert.Equal(t, c.EmailFrom, "noreply@example.com")
}

func TestParseEnv_EmptyValuesKeepDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, c.EndpointAddrHTTP, ":8080")
	assert.Equal(t, c.SMTPHost, "smtp.gmail.com")
}

func TestParseEnv_EmailFromOverride(t *testing.T) {
	t.Setenv("EMAIL_ADDRESS", "smtp-user@example.com")
	t.Setenv("EMAIL_FROM", "support@example.com")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, c.SMTPUsername, "smtp-user@example.com")
	assert.Equal(t, c.EmailFrom, "support@example.com")
}
