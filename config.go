package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBUser   string
	DBPass   string
	DBHost   string
	DBPort   string
	DBName   string

	JWTSecret  []byte
	TokenTTL   time.Duration
	RefreshTTL time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// LoadConfig reads the .env file when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		GinMode:       os.Getenv("GIN_MODE"),
		DBDriver:      getenv("DB_DRIVER", "mysql"),
		DBUser:        os.Getenv("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBName:        os.Getenv("DB_NAME"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		AdminName:     getenv("ADMIN_NAME", "Admin"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	cfg.JWTSecret = []byte(secret)

	ttl, err := getenvInt("TOKEN_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	cfg.TokenTTL = time.Duration(ttl) * time.Minute

	refreshTTL, err := getenvInt("TOKEN_REFRESH_TTL_MINUTES", 20160)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTTL = time.Duration(refreshTTL) * time.Minute

	if cfg.SMTPPort, err = getenvInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case "mysql":
		if cfg.DBUser == "" || cfg.DBHost == "" || cfg.DBName == "" || cfg.DBPort == "" {
			return nil, fmt.Errorf("missing required database environment variables")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("DB_DRIVER %q not supported", cfg.DBDriver)
	}

	return cfg, nil
}

// DSN is the go-sql-driver/mysql data source name.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
