package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	StripeSecretKey  string
	StripeWebhookKey string
	MongoURI         string
	MongoDatabase    string
	Currency         string
	SuccessURL       string
	CancelURL        string
	AllowedOrigins   []string
	RedisURL         string // optional webhook dedupe cache
	OrderSNSTopicARN string // optional order_recorded events
	StripeTimeout    time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments inject env vars directly
	_ = godotenv.Load()

	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")

	cfg := &Config{
		Port:             getEnv("PORT", "8089"),
		StripeSecretKey:  os.Getenv("STRIPE_API_KEY"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDatabase:    getEnv("MONGO_DB", "checkout"),
		Currency:         strings.ToLower(getEnv("CHECKOUT_CURRENCY", "eur")),
		SuccessURL:       getEnv("CHECKOUT_SUCCESS_URL", frontendURL+"/success"),
		CancelURL:        getEnv("CHECKOUT_CANCEL_URL", frontendURL+"/cart"),
		AllowedOrigins:   splitOrigins(getEnv("ALLOWED_ORIGINS", frontendURL)),
		RedisURL:         os.Getenv("REDIS_URL"),
		OrderSNSTopicARN: os.Getenv("ORDER_SNS_TOPIC_ARN"),
		StripeTimeout:    time.Duration(getEnvInt("STRIPE_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	var missing []string
	if cfg.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_API_KEY")
	}
	if cfg.StripeWebhookKey == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(strings.TrimSuffix(o, "/"))
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
