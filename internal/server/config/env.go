package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config values from the environment, loading an optional
// .env file first. Variables that are unset or empty leave the current
// values untouched.
//
// Recognized variables:
//
//	ADDRESS           HTTP bind address
//	DATABASE_DSN      PostgreSQL DSN
//	SECRET_KEY        JWT signing secret
//	FRONTEND_BASE_URL frontend origin for CORS and reset links
//	SMTP_HOST / SMTP_PORT
//	EMAIL_ADDRESS     SMTP username, also the From address unless
//	                  EMAIL_FROM is set
//	EMAIL_PASSWORD    SMTP password (app password for Gmail)
//	EMAIL_FROM        From address override
//	MAIL_SEND_TIMEOUT duration, e.g. "10s"
func parseEnv(config *Config) {
	// Try to load a .env file but don't fail if it doesn't exist.
	_ = godotenv.Load()

	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("FRONTEND_BASE_URL"); v != "" {
		config.FrontendBaseURL = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		config.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		config.SMTPPort = v
	}
	if v := os.Getenv("EMAIL_ADDRESS"); v != "" {
		config.SMTPUsername = v
		if config.EmailFrom == "" {
			config.EmailFrom = v
		}
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		config.SMTPPassword = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		config.EmailFrom = v
	}
	if v := os.Getenv("MAIL_SEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.MailSendTimeout = d
		}
	}
}
