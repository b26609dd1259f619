package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ovo-video-backend/pkg/logger"
)

type Config struct {
	Database DatabaseConfig
	Auth     AuthConfig
	Server   ServerConfig
	CORS     CORSConfig
}

type DatabaseConfig struct {
	Driver   string // mysql or sqlite
	Host     string
	Port     string
	User     string
	Password string
	Database string
	DSN      string // used directly for sqlite
}

type AuthConfig struct {
	// DefaultSecret is the signing fallback used when the settings row has no
	// encrypt_key. Shipping the stock value to production is unsafe; the
	// server logs a warning every time the fallback is hit.
	DefaultSecret      string
	BearerTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	CaptchaExpiry      time.Duration
}

type ServerConfig struct {
	Port     string
	GinMode  string
	LogLevel string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "mysql"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "ovo_video"),
			DSN:      getEnv("DB_DSN", "ovo_video.db"),
		},
		Auth: AuthConfig{
			DefaultSecret:      getEnv("AUTH_DEFAULT_SECRET", "ovo_default_secret_key"),
			BearerTokenExpiry:  parseDuration(getEnv("BEARER_TOKEN_EXPIRY", "168h"), 168*time.Hour),
			RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "720h"), 720*time.Hour),
			CaptchaExpiry:      parseDuration(getEnv("CAPTCHA_EXPIRY", "5m"), 5*time.Minute),
		},
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			GinMode:  getEnv("GIN_MODE", "debug"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		logger.Warnf("Invalid duration format %q, using default %s", s, defaultValue)
		return defaultValue
	}
	return duration
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}
