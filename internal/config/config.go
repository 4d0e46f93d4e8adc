package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string // empty means the in-memory store
	SnapshotPath   string // optional JSON snapshot file for the memory store
	JWTSecret      string
	AdminCode      string // authorization code for order cancellation
	Timezone       string // calendar day for order numbering and reports
	AllowedOrigins []string
}

func Load() *Config {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		SnapshotPath: getEnv("SNAPSHOT_PATH", ""),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AdminCode:    getEnv("ADMIN_CODE", "0000"),
		Timezone:     getEnv("TIMEZONE", "America/Lima"),
		AllowedOrigins: splitList(getEnv(
			"ALLOWED_ORIGINS",
			"http://localhost:3000,http://localhost:5173",
		)),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
