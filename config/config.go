package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	Store           string
	MongoURI        string
	DBName          string
	RedisAddr       string
	RedisPass       string
	JWTKey          string
	SessionTTL      time.Duration
	ListingCacheTTL time.Duration
	UploadDir       string
	AdminEmail      string
	AdminPassword   string
	DevMode         bool
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Store:           strings.ToLower(getEnv("STORE", "mongo")),
		MongoURI:        os.Getenv("MONGOURI"),
		DBName:          getEnv("DB", "homlet"),
		RedisAddr:       os.Getenv("REDIS_ADD"),
		RedisPass:       os.Getenv("REDIS_PASS"),
		JWTKey:          os.Getenv("JWT_KEY"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
		ListingCacheTTL: getEnvDuration("LISTING_CACHE_TTL", 10*time.Minute),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@homlet.com"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
		DevMode:         getEnv("APP_ENV", "") == "development",
	}

	if cfg.JWTKey == "" {
		return nil, fmt.Errorf("JWT_KEY not set in environment")
	}
	switch cfg.Store {
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGOURI not set in environment")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unknown STORE %q, want mongo or memory", cfg.Store)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("Warning: %s=%q is not a duration, using %s", key, val, fallback)
		return fallback
	}
	return d
}
