package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// Payment provider configuration
	PaystackSecretKey   string // used for HMAC verification of x-paystack-signature
	StripeWebhookSecret string // mandatory for the Stripe webhook endpoint

	// Admin API configuration
	AdminAPIKey string

	// App backend callback configuration (premium.updated notifications)
	CallbackURL    string
	CallbackSecret string

	// Operator alerting (Brevo email)
	BrevoAPIKey    string
	AlertFromEmail string
	AlertToEmail   string

	// Projection integrity sweep
	SweepIntervalMinutes int

	ServiceName string
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	AppConfig = &Config{
		Port:                 getEnv("PORT", "8080"),
		Mode:                 getEnv("GIN_MODE", "debug"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		PaystackSecretKey:    getEnv("PAYSTACK_SECRET_KEY", ""),
		StripeWebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		AdminAPIKey:          getEnv("ADMIN_API_KEY", ""),
		CallbackURL:          getEnv("CALLBACK_URL", ""),
		CallbackSecret:       getEnv("CALLBACK_SECRET", ""),
		BrevoAPIKey:          getEnv("BREVO_API_KEY", ""),
		AlertFromEmail:       getEnv("ALERT_FROM_EMAIL", ""),
		AlertToEmail:         getEnv("ALERT_TO_EMAIL", ""),
		SweepIntervalMinutes: getEnvInt("SWEEP_INTERVAL_MINUTES", 60),
		ServiceName:          getEnv("SERVICE_NAME", "Premium Subscription Service"),
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
