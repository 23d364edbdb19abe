package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

type Config struct {
	BackendURL  string        `yaml:"backend_url"`
	AnonKey     string        `yaml:"anon_key"`
	LogLevel    string        `yaml:"log_level"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	DataDir string `yaml:"-"`
	DBPath  string `yaml:"-"`
	LogPath string `yaml:"-"`
}

// New loads <dataDir>/config.yaml when present, then applies .env and
// SANTACALL_* environment overrides.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Config{LogLevel: "info", HTTPTimeout: 15 * time.Second}

	raw, err := os.ReadFile(filepath.Join(dataDir, fileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", fileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read %s: %w", fileName, err)
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load(filepath.Join(dataDir, ".env"))

	cfg.BackendURL = getEnv("SANTACALL_URL", cfg.BackendURL)
	cfg.AnonKey = getEnv("SANTACALL_ANON_KEY", cfg.AnonKey)
	cfg.LogLevel = getEnv("SANTACALL_LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPTimeout = getEnvDuration("SANTACALL_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	cfg.DataDir = dataDir
	cfg.DBPath = filepath.Join(dataDir, "santacall.db")
	cfg.LogPath = filepath.Join(dataDir, "santacall.log")

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url (SANTACALL_URL) cannot be empty")
	}
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("backend_url must be an http(s) URL, got %q", c.BackendURL)
	}
	if c.AnonKey == "" {
		return fmt.Errorf("anon_key (SANTACALL_ANON_KEY) cannot be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be > 0")
	}
	return nil
}

// DefaultDataDir is ~/.santacall, falling back to the working directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".santacall"
	}
	return filepath.Join(home, ".santacall")
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
