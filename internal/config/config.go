// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"finvest-api/pkg/db"
)

// SMTPConfig holds outbound email configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Enabled  bool
}

// MarketConfig holds market-data API configuration.
type MarketConfig struct {
	BaseURL string
	APIKey  string
}

// MediaConfig holds object-storage upload configuration.
type MediaConfig struct {
	BaseURL   string
	UploadKey string
	Folder    string
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	SMTP       SMTPConfig
	Market     MarketConfig
	Media      MediaConfig

	SessionTTL time.Duration // lifetime of an issued bearer token
	OrderTTL   time.Duration // time a checkout order stays payable
}

// LoadConfig loads configuration from environment variables, after loading
// an optional .env file. It returns an AppConfig instance or an error if
// any variable is malformed. Missing variables fall back to development
// defaults.
func LoadConfig() (*AppConfig, error) {
	// Best effort; a missing .env file is fine in production.
	_ = godotenv.Load()

	serverPort := getEnv("SERVER_PORT", "8080")

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	orderTTL, err := time.ParseDuration(getEnv("ORDER_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ORDER_TTL: %w", err)
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "finvestdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     smtpPort,
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@finvest.local"),
			Enabled:  getEnv("SMTP_HOST", "") != "",
		},
		Market: MarketConfig{
			BaseURL: getEnv("MARKET_API_URL", "https://finnhub.io/api/v1"),
			APIKey:  getEnv("MARKET_API_KEY", ""),
		},
		Media: MediaConfig{
			BaseURL:   getEnv("MEDIA_API_URL", ""),
			UploadKey: getEnv("MEDIA_API_KEY", ""),
			Folder:    getEnv("MEDIA_FOLDER", "finvest"),
		},
		SessionTTL: sessionTTL,
		OrderTTL:   orderTTL,
	}, nil
}

// getEnv returns the value of the environment variable or the fallback.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
