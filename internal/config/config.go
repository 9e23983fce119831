package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	Environment    string
	Port           string
	BaseURL        string
	MigrationsPath string

	SMTPHost   string
	SMTPPort   int
	SMTPSecure bool
	SMTPUser   string
	SMTPPass   string
	MailFrom   string

	SweepSpec string
}

// Load reads configuration from the environment (optionally seeded from
// a .env file). The database DSN and every SMTP setting are required
// with no compiled-in fallback: a missing value is startup-fatal.
func Load() (*Config, error) {
	// Ignore the error, the file is optional in containerized deploys.
	_ = godotenv.Load(".env")

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    os.Getenv("ENV"),
		Port:           os.Getenv("PORT"),
		BaseURL:        os.Getenv("BASE_URL"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		MailFrom:       os.Getenv("MAIL_FROM"),
		SweepSpec:      os.Getenv("SWEEP_SPEC"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}
	if cfg.SweepSpec == "" {
		cfg.SweepSpec = "@every 1h"
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	for _, req := range []struct{ name, value string }{
		{"SMTP_HOST", cfg.SMTPHost},
		{"SMTP_PORT", os.Getenv("SMTP_PORT")},
		{"SMTP_SECURE", os.Getenv("SMTP_SECURE")},
		{"SMTP_USER", cfg.SMTPUser},
		{"SMTP_PASS", cfg.SMTPPass},
	} {
		if req.value == "" {
			return nil, fmt.Errorf("%s is required but not set", req.name)
		}
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		return nil, fmt.Errorf("SMTP_PORT must be a number: %w", err)
	}
	cfg.SMTPPort = port

	secure, err := strconv.ParseBool(os.Getenv("SMTP_SECURE"))
	if err != nil {
		return nil, fmt.Errorf("SMTP_SECURE must be a boolean: %w", err)
	}
	cfg.SMTPSecure = secure

	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	return cfg, nil
}
