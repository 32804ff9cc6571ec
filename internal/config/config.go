package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string
	Env  string

	MongoURI      string
	MongoDatabase string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// ObserverEmail is carbon-copied on every outbound vehicle email.
	ObserverEmail string

	// ScanSchedule is a cron spec for the daily expiration scan, evaluated
	// in Timezone.
	ScanSchedule string
	Timezone     string
	SendTimeout  time.Duration

	JWTSecret string
	JWTExpiry time.Duration

	StaticDir string

	// Optional initial account, seeded at startup when both are set.
	AdminUsername string
	AdminPassword string
	AdminFullName string
}

func Load() Config {
	cfg := Config{
		Port: getEnv("PORT", "8000"),
		Env:  getEnv("ENV", "development"),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "fleet_management"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 465),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "fleet@localhost"),

		ObserverEmail: getEnv("OBSERVER_EMAIL", ""),

		ScanSchedule: getEnv("SCAN_SCHEDULE", "0 8 * * *"),
		Timezone:     getEnv("TIMEZONE", "Europe/Warsaw"),
		SendTimeout:  30 * time.Second,

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiry: 24 * time.Hour,

		StaticDir: getEnv("STATIC_DIR", "./web"),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminFullName: getEnv("ADMIN_FULL_NAME", "Administrator"),
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}
