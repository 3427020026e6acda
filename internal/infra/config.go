package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	AdpilerBaseURL    string
	AdpilerToken      string
	PreviewDomain     string
	PaidDefault       bool
	ForcedMode        string
	CampaignCode      string
	DefaultClientID   string
	DefaultCampaignID string
	MappingCSVPath    string
	WebhookSecret     string
	SourceBaseURL     string
	SourceAPIKey      string
	SourceAPIToken    string
	DatabaseURL       string
	GeoIPDBPath       string
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		AdpilerBaseURL:    os.Getenv("ADPILER_BASE_URL"),
		AdpilerToken:      os.Getenv("ADPILER_TOKEN"),
		PreviewDomain:     getEnv("PREVIEW_DOMAIN", "preview.adpiler.com"),
		PaidDefault:       getEnvBool("PAID_DEFAULT", true),
		ForcedMode:        os.Getenv("FORCED_MODE"),
		CampaignCode:      os.Getenv("CAMPAIGN_CODE"),
		DefaultClientID:   os.Getenv("DEFAULT_CLIENT_ID"),
		DefaultCampaignID: os.Getenv("DEFAULT_CAMPAIGN_ID"),
		MappingCSVPath:    os.Getenv("MAPPING_CSV_PATH"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		SourceBaseURL:     getEnv("SOURCE_BASE_URL", "https://api.trello.com/1"),
		SourceAPIKey:      os.Getenv("SOURCE_API_KEY"),
		SourceAPIToken:    os.Getenv("SOURCE_API_TOKEN"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.AdpilerBaseURL == "" {
		return nil, fmt.Errorf("ADPILER_BASE_URL is required")
	}

	if cfg.AdpilerToken == "" {
		return nil, fmt.Errorf("ADPILER_TOKEN is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
