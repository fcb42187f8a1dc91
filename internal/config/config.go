package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Auth    AuthConfig
	Backend BackendConfig
	Gateway GatewayConfig
	Redis   RedisConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Env             string
	ShutdownTimeout time.Duration
}

type SessionConfig struct {
	Secret string
}

type AuthConfig struct {
	// Secret shared with the external session provider that signs
	// buyer tokens. This service only verifies; it never issues.
	SigningSecret string
}

type BackendConfig struct {
	BaseURL      string
	ServiceToken string
}

type GatewayConfig struct {
	SecretKey   string
	BaseURL     string
	Currency    string
	CallbackURL string
	WebhookURL  string
}

type RedisConfig struct {
	URL      string // Full redis URL; takes precedence over the individual fields
	Addr     string
	Password string
	DB       int
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "localhost"),
			Env:             getEnv("ENV", "development"),
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Auth: AuthConfig{
			SigningSecret: getEnv("AUTH_SIGNING_SECRET", ""),
		},
		Backend: BackendConfig{
			BaseURL:      getEnv("TICKETING_API_URL", "http://localhost:9000/api/v1"),
			ServiceToken: getEnv("TICKETING_API_TOKEN", ""),
		},
		Gateway: GatewayConfig{
			SecretKey:   getEnv("GATEWAY_SECRET_KEY", ""),
			BaseURL:     getEnv("GATEWAY_BASE_URL", "https://api.paystack.co"),
			Currency:    getEnv("GATEWAY_CURRENCY", "KES"),
			CallbackURL: getEnv("GATEWAY_CALLBACK_URL", "http://localhost:8080/payment/callback"),
			WebhookURL:  getEnv("GATEWAY_WEBHOOK_URL", "http://localhost:8080/payment/webhook"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	if config.Server.Env == "production" {
		if config.Auth.SigningSecret == "" {
			return nil, fmt.Errorf("AUTH_SIGNING_SECRET is required in production")
		}
		if config.Backend.ServiceToken == "" {
			return nil, fmt.Errorf("TICKETING_API_TOKEN is required in production")
		}
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
