package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	// DatabaseURL selects the Postgres backend when set; otherwise the
	// service runs on a local SQLite file at DatabasePath.
	DatabaseURL  string
	DatabasePath string

	UploadDir string

	SessionSecret string
	SessionTTL    time.Duration

	// AdminEmail is the single privileged identity. Admin status is
	// re-derived from the session username on every request.
	AdminEmail string

	AzureEndpoint string
	AzureKey      string

	RedisURL string
}

func Load() *Config {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabasePath: getEnv("DATABASE_PATH", "suppliers.db"),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		SessionSecret: getEnv("SESSION_SECRET", "tradelinkpro-secret-key"),

		AdminEmail: getEnv("ADMIN_EMAIL", "alexandrebetonpro@gmail.com"),

		AzureEndpoint: os.Getenv("AZURE_ENDPOINT"),
		AzureKey:      os.Getenv("AZURE_KEY"),

		RedisURL: os.Getenv("REDIS_URL"),
	}

	ttlHours := 24 * 7
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			ttlHours = hours
		}
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
