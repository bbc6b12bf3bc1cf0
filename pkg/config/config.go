package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	appDirName     = ".dbchat"
	configFileName = "config.json"

	DefaultEndpoint = "http://localhost:5000"

	// DefaultResponseDelay is the pause before an assistant reply is shown.
	DefaultResponseDelay = 300 * time.Millisecond
)

// Environment variables that override file values.
const (
	EnvEndpoint = "DBCHAT_ENDPOINT"
	EnvDataDir  = "DBCHAT_DATA_DIR"
	EnvLogLevel = "DBCHAT_LOG_LEVEL"
)

// Config represents the application configuration
type Config struct {
	Endpoint              string `json:"endpoint"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
	ResponseDelayMS       int    `json:"response_delay_ms"`
	DataDir               string `json:"data_dir"`
	LogLevel              string `json:"log_level"`
	LogFormat             string `json:"log_format"`
	LogFile               string `json:"log_file"`
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		Endpoint:              DefaultEndpoint,
		ResponseDelayMS:       int(DefaultResponseDelay / time.Millisecond),
		DataDir:               defaultDataDir(),
		LogLevel:              "info",
		LogFormat:             "json",
	}
}

// Load loads configuration from the specified path
// If the file doesn't exist, creates one with default values
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(configPath, cfg); err != nil {
				return Config{}, fmt.Errorf("failed to create default config: %w", err)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// Start from defaults so fields missing from older files keep sane values.
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LoadDotEnv loads a .env file into the process environment. A missing file
// is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv returns cfg with environment overrides applied.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvEndpoint)); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(getenv(EnvDataDir)); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	return c
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("endpoint must be an http(s) URL, got: %q", c.Endpoint)
	}

	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must not be negative, got: %d", c.RequestTimeoutSeconds)
	}

	if c.ResponseDelayMS < 0 {
		return fmt.Errorf("response_delay_ms must not be negative, got: %d", c.ResponseDelayMS)
	}

	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log_level: %s", c.LogLevel)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unsupported log_format: %s", c.LogFormat)
	}

	return nil
}

// RequestTimeout returns the per-request timeout. Zero leaves the transport default.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ResponseDelay returns the pause before an assistant reply is shown.
func (c Config) ResponseDelay() time.Duration {
	return time.Duration(c.ResponseDelayMS) * time.Millisecond
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return filepath.Join(appDir(), configFileName)
}

func defaultDataDir() string {
	return filepath.Join(appDir(), "data")
}

func appDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(homeDir) == "" {
		return appDirName
	}
	return filepath.Join(homeDir, appDirName)
}
