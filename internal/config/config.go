package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings mycoach reads at startup.
type Config struct {
	ServerURL      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	PollInterval   time.Duration
	LogFile        string
	LogLevel       string
}

const (
	defaultConfigPath     = "~/.config/mycoach/config.toml"
	defaultLogFile        = "~/.local/state/mycoach/mycoach.log"
	DefaultServerURL      = "http://192.168.1.100:8000"
	defaultConnectTimeout = 15 * time.Second
	defaultReadTimeout    = 30 * time.Second
	defaultPollInterval   = 10 * time.Second
	defaultLogLevel       = "info"

	EnvServerURL = "MYCOACH_SERVER_URL"
	EnvLogLevel  = "MYCOACH_LOG_LEVEL"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL:      DefaultServerURL,
		ConnectTimeout: defaultConnectTimeout,
		ReadTimeout:    defaultReadTimeout,
		PollInterval:   defaultPollInterval,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
// Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.LoadFromEnvironment()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL      string `toml:"server_url"`
		ConnectTimeout string `toml:"connect_timeout"`
		ReadTimeout    string `toml:"read_timeout"`
		PollInterval   string `toml:"poll_interval"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ServerURL); v != "" {
		cfg.ServerURL = v
	}
	if cfg.ConnectTimeout, err = parseDuration("connect_timeout", raw.ConnectTimeout, cfg.ConnectTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout, err = parseDuration("read_timeout", raw.ReadTimeout, cfg.ReadTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, cfg.PollInterval); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	cfg.LoadFromEnvironment()
	return cfg, nil
}

// LoadFromEnvironment applies MYCOACH_* overrides.
func (c *Config) LoadFromEnvironment() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive", field)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
