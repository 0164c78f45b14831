package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the API reads from the environment. Secrets come
// from the deployment environment or a local .env file.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	MongoURI      string
	MongoDatabase string

	JWTSecret string

	// ProjectID is the deployment identifier; the notification from-address
	// is derived from it.
	ProjectID string

	AllowedOrigins []string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	S3Bucket     string
	S3Region     string
	PhotoBaseURL string

	ReminderInterval time.Duration
	ReminderWindow   time.Duration
}

func Load() *Config {
	return &Config{
		Port:     getEnv("API_PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "hospital"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ProjectID: getEnv("PROJECT_ID", "hospital"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		S3Bucket:     os.Getenv("S3_BUCKET"),
		S3Region:     getEnv("AWS_REGION", "eu-west-3"),
		PhotoBaseURL: os.Getenv("PHOTO_BASE_URL"),

		ReminderInterval: getDuration("REMINDER_INTERVAL", 5*time.Minute),
		ReminderWindow:   getDuration("REMINDER_WINDOW", 15*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
