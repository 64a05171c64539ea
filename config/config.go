package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT        string
	DB_URL      string
	CORS_ORIGIN string
	JWT_SECRET  string

	ADMIN_EMAIL         string
	ADMIN_PASSWORD_HASH string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string
	STRIPE_PRODUCT_ID     string

	KEAP_CLIENT_ID     string
	KEAP_CLIENT_SECRET string
	KEAP_REFRESH_TOKEN string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")
	JWT_SECRET = mustEnv("JWT_SECRET")

	ADMIN_EMAIL = mustEnv("ADMIN_EMAIL")
	ADMIN_PASSWORD_HASH = mustEnv("ADMIN_PASSWORD_HASH")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	// STRIPE_WEBHOOK_SECRET is only checked at webhook time so the rest of the
	// app can run without it in local setups.
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	STRIPE_PRODUCT_ID = mustEnv("STRIPE_PRODUCT_ID")

	KEAP_CLIENT_ID = getEnv("KEAP_CLIENT_ID", "")
	KEAP_CLIENT_SECRET = getEnv("KEAP_CLIENT_SECRET", "")
	KEAP_REFRESH_TOKEN = getEnv("KEAP_REFRESH_TOKEN", "")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
