// Package config loads SDK configuration from the environment.
//
// Values are read from environment variables using the
// github.com/caarlos0/env library, with an optional .env file loaded
// first via github.com/joho/godotenv.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// StoreKind selects the credential store implementation.
type StoreKind string

const (
	// StoreFile persists the credential to a JSON file so the session
	// survives a process restart.
	StoreFile StoreKind = "file"
	// StoreMemory keeps the credential in process memory only.
	StoreMemory StoreKind = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreKind.
func (s *StoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "file", "memory":
		*s = StoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreKind: %q (valid options: file, memory)", v)
	}
}

// Config holds all client configuration.
type Config struct {
	// BaseURL is the JobHunter API root.
	BaseURL string `env:"JOBHUNTER_API_URL" envDefault:"http://127.0.0.1:8080/api/v1"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `env:"JOBHUNTER_HTTP_TIMEOUT" envDefault:"10s"`

	// Store selects the credential store implementation.
	Store StoreKind `env:"JOBHUNTER_CREDENTIAL_STORE" envDefault:"file"`

	// CredentialsFile is the path of the file store's slot. Empty means
	// a per-user default under the OS config directory.
	CredentialsFile string `env:"JOBHUNTER_CREDENTIALS_FILE"`

	// MetricsEnabled turns on Prometheus instrumentation.
	MetricsEnabled bool `env:"JOBHUNTER_METRICS" envDefault:"false"`
}

// Load reads configuration from a .env file (if present) and the
// environment, then applies guardrails.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to configuration values loaded from env.
func (c *Config) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = defaultCredentialsFile()
	}
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".jobhunter-credentials.json"
	}
	return filepath.Join(dir, "jobhunter", "credentials.json")
}
