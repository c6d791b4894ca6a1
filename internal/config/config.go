package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime settings for the clinicdesk services.
// Values come from the environment, with an optional .env file for
// local development.
type Config struct {
	// APIBaseURL is the base URL of the clinic backend, including any
	// path prefix (e.g. https://api.clinic.example/api).
	APIBaseURL string

	// APIToken is the optional bearer token attached to every
	// outgoing request.
	APIToken string

	// DoctorID scopes patient list calls to a doctor context.
	DoctorID string

	// CSRFCookieName is the cookie the backend sets on the CSRF
	// handshake endpoint.
	CSRFCookieName string

	// SearchDebounce is the quiet period before a search term becomes
	// part of the active list query.
	SearchDebounce time.Duration

	GatewayPort      string
	HTTPTimeout      time.Duration
	ElasticsearchURL string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using process environment")
	}

	cfg := &Config{
		APIBaseURL:       os.Getenv("API_BASE_URL"),
		APIToken:         os.Getenv("API_TOKEN"),
		DoctorID:         getEnvOrDefault("DOCTOR_ID", "1"),
		CSRFCookieName:   getEnvOrDefault("CSRF_COOKIE_NAME", "XSRF-TOKEN"),
		GatewayPort:      getEnvOrDefault("GATEWAY_PORT", "8080"),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid API_BASE_URL: %w", err)
	}

	cfg.SearchDebounce = getDurationOrDefault("SEARCH_DEBOUNCE", 300*time.Millisecond)
	cfg.HTTPTimeout = getDurationOrDefault("HTTP_TIMEOUT", 30*time.Second)

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid duration, using default")
		return defaultValue
	}
	return d
}
