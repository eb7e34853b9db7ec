package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                string
	AllowOrigins        string
	JWTSecret           string
	JWTTTLHours         int
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePricePro      string
	StripePriceUltra    string
	ReqTimeoutSec       int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:                getenv("PORT", "8080"),
		AllowOrigins:        getenv("ALLOW_ORIGINS", "*"),
		JWTSecret:           getenv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTLHours:         atoi("JWT_TTL_HOURS", 72),
		StripeSecretKey:     getenv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getenv("STRIPE_WEBHOOK_SECRET", ""),
		StripePricePro:      getenv("STRIPE_PRICE_PRO", ""),
		StripePriceUltra:    getenv("STRIPE_PRICE_ULTRA", ""),
		ReqTimeoutSec:       atoi("REQUEST_TIMEOUT_SECONDS", 30),
	}
}
