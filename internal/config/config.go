package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	OpenAIAPIKey string
	OpenAIModel  string

	// Pipeline tuning
	MaxTurnLatency   time.Duration
	TopResponses     int
	ProfileCacheTTL  time.Duration
	CORSAllowOrigins []string

	// Turn detection
	SilenceHold   time.Duration
	SilenceEnergy float64

	// Persona selection. The score threshold and track-record bonus are
	// unvalidated tunables carried from the production calibration; kept
	// configurable rather than baked in.
	PersonaScoreThreshold float64
	PersonaHistoryBonus   float64
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		MaxTurnLatency:   getEnvAsDuration("MAX_TURN_LATENCY", 3000*time.Millisecond),
		TopResponses:     getEnvAsInt("TOP_RESPONSES", 5),
		ProfileCacheTTL:  getEnvAsDuration("PROFILE_CACHE_TTL", time.Hour),
		CORSAllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", nil),

		SilenceHold:   getEnvAsDuration("VAD_SILENCE_HOLD", 650*time.Millisecond),
		SilenceEnergy: getEnvAsFloat("VAD_SILENCE_ENERGY", 500),

		PersonaScoreThreshold: getEnvAsFloat("PERSONA_SCORE_THRESHOLD", 0.3),
		PersonaHistoryBonus:   getEnvAsFloat("PERSONA_HISTORY_BONUS", 1.1),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
