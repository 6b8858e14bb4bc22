package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment string
	FrontendURL string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Stripe configuration
	StripeAPIKey        string
	StripeWebhookSecret string
	StripeCurrency      string
	StripeLocale        string
	StripeTimeout       time.Duration

	// Ticket pricing and limits
	GeneralPrice       int
	ReservedPrice      int
	MaxTicketsPerOrder int
	ProductName        string

	// Mail configuration
	MailFromAddress string
	MailFromName    string
	MailSendTimeout time.Duration

	// Rate limiting
	RateLimitPerMinute int
	WebhookEventTTL    time.Duration

	// Monitoring
	EnableMetrics bool

	// Initial admin account, created on startup when both are set
	AdminEmail    string
	AdminPassword string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "production"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Stripe
		StripeAPIKey:        getEnv("STRIPE_API_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeCurrency:      getEnv("STRIPE_CURRENCY", "jpy"),
		StripeLocale:        getEnv("STRIPE_LOCALE", "ja"),
		StripeTimeout:       getEnvAsDuration("STRIPE_TIMEOUT", "10s"),

		// Tickets
		GeneralPrice:       getEnvAsInt("GENERAL_PRICE", 4500),
		ReservedPrice:      getEnvAsInt("RESERVED_PRICE", 5500),
		MaxTicketsPerOrder: getEnvAsInt("MAX_TICKETS_PER_ORDER", 10),
		ProductName:        getEnv("PRODUCT_NAME", "easel LIVE"),

		// Mail
		MailFromAddress: getEnv("MAIL_FROM_ADDRESS", ""),
		MailFromName:    getEnv("MAIL_FROM_NAME", "easel"),
		MailSendTimeout: getEnvAsDuration("MAIL_SEND_TIMEOUT", "30s"),

		// Rate limiting
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
		WebhookEventTTL:    getEnvAsDuration("WEBHOOK_EVENT_TTL", "24h"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),

		// Admin bootstrap
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
