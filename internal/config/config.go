package config

import "os"

type Config struct {
	DatabasePath string
	Port         string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// DeliveryMode is "group" or "per_recipient"
	DeliveryMode string
	// DueCycleCronSpec drives the periodic due check, default every minute
	DueCycleCronSpec string

	LogLevel    string
	Environment string
}

func Load() *Config {
	return &Config{
		DatabasePath:     getEnv("DATABASE_PATH", "./chorebot.db"),
		Port:             getEnv("PORT", "3000"),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", "+15555555555"),
		DeliveryMode:     getEnv("DELIVERY_MODE", "per_recipient"),
		DueCycleCronSpec: getEnv("DUE_CYCLE_CRON_SPEC", "* * * * *"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Environment:      getEnv("ENVIRONMENT", "development"),
	}
}

// MockMode reports whether the transport should fake sends. Mirrors the
// credentials check: no account SID means there is nothing to call.
func (c *Config) MockMode() bool {
	return c.TwilioAccountSID == ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
