package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	MistralAPIKey  string
	MistralModel   string
	MistralTimeout int // seconds

	StoreURL        string
	StoreServiceKey string

	WebhookSecret    string
	MinContentLength int

	DispatchMaxConcurrent int

	DatabaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	storeURL := os.Getenv("STORE_URL")
	storeKey := os.Getenv("STORE_SERVICE_KEY")

	if env == "production" {
		if storeURL == "" || storeKey == "" {
			log.Printf("STORE_URL and STORE_SERVICE_KEY are required in production")
		}
		if os.Getenv("WEBHOOK_SECRET") == "" {
			log.Printf("WEBHOOK_SECRET is required in production")
		}
	}

	return Config{
		Port:                  getEnv("PORT", "8080"),
		Env:                   env,
		CORSAllowOrigin:       splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		MistralAPIKey:         getEnv("MISTRAL_API_KEY", ""),
		MistralModel:          getEnv("MISTRAL_MODEL", ""),
		MistralTimeout:        getEnvInt("MISTRAL_TIMEOUT_SECONDS", 90),
		StoreURL:              strings.TrimRight(storeURL, "/"),
		StoreServiceKey:       storeKey,
		WebhookSecret:         getEnv("WEBHOOK_SECRET", ""),
		MinContentLength:      getEnvInt("MIN_CONTENT_LENGTH", 100),
		DispatchMaxConcurrent: getEnvInt("DISPATCH_MAX_CONCURRENT", 0),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
