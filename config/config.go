package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "mdsite.yaml"

// Config represents the application configuration.
type Config struct {
	Source         string      `yaml:"source"`
	Output         string      `yaml:"output"`
	Template       string      `yaml:"template,omitempty"`
	Title          string      `yaml:"title,omitempty"`
	Assets         []string    `yaml:"assets,omitempty"`
	Exclude        []string    `yaml:"exclude,omitempty"`
	StrictTemplate bool        `yaml:"strict_template"`
	LogLevel       string      `yaml:"log_level,omitempty"`
	Serve          ServeConfig `yaml:"serve"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	LiveReload *bool  `yaml:"livereload,omitempty"`
	Metrics    bool   `yaml:"metrics"`
}

// LiveReloadEnabled defaults to true when unset.
func (s ServeConfig) LiveReloadEnabled() bool {
	return s.LiveReload == nil || *s.LiveReload
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration at path, expanding ${VAR} references and
// applying MDSITE_* environment overrides. Variables from .env files are
// loaded first without replacing the existing environment. A missing file
// is an error unless path is DefaultFile, in which case defaults apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Ignoring unreadable .env file", "error", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultFile:
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("configuration file not found: %s", path)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MDSITE_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("MDSITE_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("MDSITE_TEMPLATE"); v != "" {
		c.Template = v
	}
	if v := os.Getenv("MDSITE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MDSITE_HOST"); v != "" {
		c.Serve.Host = v
	}
	if v := os.Getenv("MDSITE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Serve.Port = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = "docs"
	}
	if c.Output == "" {
		c.Output = "site"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Serve.Host == "" {
		c.Serve.Host = "localhost"
	}
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", c.Serve.Port)
	}
	if samePath(c.Source, c.Output) {
		return fmt.Errorf("output directory must differ from source directory: %s", c.Output)
	}
	return nil
}

// ParseLevel maps a level name to an slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", s)
	}
}

func samePath(a, b string) bool {
	return strings.TrimRight(a, "/\\") == strings.TrimRight(b, "/\\")
}
