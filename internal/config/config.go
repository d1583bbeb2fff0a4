package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Server
	ServerPort string
	ServerHost string

	// Database
	DatabaseURL  string
	DatabaseType string // "postgres" or "sqlite"

	// JWT
	JWTSecret     string
	JWTExpiration int // hours

	// Sadiq e-signature provider
	SadiqBaseURL       string
	SadiqAPIKey        string
	SadiqSigningURL    string // human-facing signing page base
	NdaValidityMonths  int    // 0 means agreements never expire
	SadiqStatusCacheS  int    // seconds a polled envelope status stays cached

	// Redis (envelope status cache; optional)
	RedisAddr     string
	RedisPassword string

	// Stripe deposit
	StripeSecretKey      string
	StripePublishableKey string
	DepositAmount        int64  // in minor units
	DepositCurrency      string // e.g. "sar"

	// Storage
	UploadDir string

	// Email
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string

	// App
	AppURL     string
	AppName    string
	AdminEmail string
}

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		// Database
		DatabaseURL:  getEnv("DATABASE_URL", "wathiq.db"),
		DatabaseType: getEnv("DATABASE_TYPE", "sqlite"),

		// JWT
		JWTSecret:     getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTExpiration: getEnvInt("JWT_EXPIRATION", 72),

		// Sadiq
		SadiqBaseURL:      getEnv("SADIQ_BASE_URL", "https://sandbox-api.sadq.sa"),
		SadiqAPIKey:       getEnv("SADIQ_API_KEY", ""),
		SadiqSigningURL:   getEnv("SADIQ_SIGNING_URL", "https://sandbox.sadq.sa/sign"),
		NdaValidityMonths: getEnvInt("NDA_VALIDITY_MONTHS", 24),
		SadiqStatusCacheS: getEnvInt("SADIQ_STATUS_CACHE_SECONDS", 30),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		// Stripe deposit
		StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		DepositAmount:        getEnvInt64("DEPOSIT_AMOUNT", 50000), // 500 SAR in halalas
		DepositCurrency:      getEnv("DEPOSIT_CURRENCY", "sar"),

		// Storage
		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),

		// Email
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@wathiq.sa"),

		// App
		AppURL:     getEnv("APP_URL", "http://localhost:8080"),
		AppName:    getEnv("APP_NAME", "Wathiq"),
		AdminEmail: getEnv("ADMIN_EMAIL", "admin@wathiq.sa"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
