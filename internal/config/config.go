package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const insecureJWTSecret = "supersecretkey"

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabasePath   string        `yaml:"database_path"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	Notify         NotifyConfig  `yaml:"notify"`
	Jobs           JobsConfig    `yaml:"jobs"`
}

// NotifyConfig configures outgoing offer emails. An empty SMTPHost keeps
// delivery in log-only mode.
type NotifyConfig struct {
	SMTPHost      string  `yaml:"smtp_host"`
	SMTPPort      int     `yaml:"smtp_port"`
	Username      string  `yaml:"username"`
	Password      string  `yaml:"password"`
	FromAddress   string  `yaml:"from_address"`
	FromName      string  `yaml:"from_name"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

type JobsConfig struct {
	Workers      int           `yaml:"workers"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("JOBMATCH_ADDR", ":8080"),
		JWTSecret:      getEnv("JOBMATCH_JWT_SECRET", insecureJWTSecret),
		APITimeout:     15 * time.Second,
		DatabasePath:   getEnv("JOBMATCH_DATABASE_PATH", "jobmatch.db"),
		MigrateOnStart: true,
		TokenDuration:  1 * time.Hour,
		Notify: NotifyConfig{
			SMTPHost:    os.Getenv("JOBMATCH_SMTP_HOST"),
			SMTPPort:    587,
			Username:    os.Getenv("JOBMATCH_SMTP_USERNAME"),
			Password:    os.Getenv("JOBMATCH_SMTP_PASSWORD"),
			FromAddress: getEnv("JOBMATCH_MAIL_FROM", "no-reply@jobmatch.local"),
			FromName:    "JobMatch",
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks required settings and fills defaults for optional ones.
// The built-in JWT secret is only accepted when JOBMATCH_ENV=development.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == insecureJWTSecret && os.Getenv("JOBMATCH_ENV") != "development" {
		return errors.New("jwt_secret uses the insecure default; set JOBMATCH_JWT_SECRET or JOBMATCH_ENV=development")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}

	if c.Notify.SMTPHost != "" && c.Notify.FromAddress == "" {
		return fmt.Errorf("notify.from_address is required when smtp_host is set")
	}
	if c.Notify.SMTPPort <= 0 {
		c.Notify.SMTPPort = 587
	}
	if c.Notify.RatePerSecond <= 0 {
		c.Notify.RatePerSecond = 2
	}
	if c.Notify.Burst <= 0 {
		c.Notify.Burst = 1
	}

	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 2
	}
	if c.Jobs.PollInterval <= 0 {
		c.Jobs.PollInterval = 500 * time.Millisecond
	}
	if c.Jobs.MaxAttempts <= 0 {
		c.Jobs.MaxAttempts = 5
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
