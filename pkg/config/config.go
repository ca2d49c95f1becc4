package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	DatabaseURL         string
	Auth0Domain         string
	Auth0ClientID       string
	Auth0ClientSecret   string
	Auth0Audience       string
	GeminiApiKey        string
	PostmarkServerToken string
	DigestFromEmail     string
	FrontendURL         string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=storymail port=5432 sslmode=disable"),
		Auth0Domain:         getEnv("AUTH0_DOMAIN", ""),
		Auth0ClientID:       getEnv("AUTH0_CLIENT_ID", ""),
		Auth0ClientSecret:   getEnv("AUTH0_CLIENT_SECRET", ""),
		Auth0Audience:       getEnv("AUTH0_AUDIENCE", ""),
		GeminiApiKey:        getEnv("GEMINI_API_KEY", ""),
		PostmarkServerToken: getEnv("POSTMARK_SERVER_TOKEN", ""),
		DigestFromEmail:     getEnv("DIGEST_FROM_EMAIL", "digest@storymail.app"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
