// Package config loads the optional nodeward.yaml file and applies
// environment overrides.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/nodeward/pkg/errors"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "nodeward.yaml"

// Config is the full runtime configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Content ContentConfig `yaml:"content"`
	Contact ContactConfig `yaml:"contact"`
	Monitor MonitorConfig `yaml:"monitor"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	AllowedOrigins    []string      `yaml:"allowedOrigins,omitempty"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
}

// ContentConfig locates the page catalog.
type ContentConfig struct {
	// Path is a catalog file. Empty uses the embedded catalog.
	Path string `yaml:"path,omitempty"`
	// Watch reloads the catalog when Path changes on disk.
	Watch bool `yaml:"watch"`
}

// ContactConfig configures the contact store.
type ContactConfig struct {
	Database string `yaml:"database"`
}

// MonitorConfig configures the live feed.
type MonitorConfig struct {
	Limit int `yaml:"limit"`
}

// PreviewConfig configures the terminal preview.
type PreviewConfig struct {
	FrameInterval time.Duration `yaml:"frameInterval"`
	// RowHeight is the number of page pixels one terminal row covers.
	RowHeight float64 `yaml:"rowHeight"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Contact: ContactConfig{Database: "nodeward.db"},
		Monitor: MonitorConfig{Limit: 100},
		Preview: PreviewConfig{
			FrameInterval: 16 * time.Millisecond,
			RowHeight:     40,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if path == "" {
		path = DefaultFile
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Configuration(op, fmt.Errorf("failed to parse %s: %w", path, err))
		}
	case stderrors.Is(err, os.ErrNotExist):
	default:
		return nil, errors.Configuration(op, fmt.Errorf("failed to read %s: %w", path, err))
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("NODEWARD_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if db := os.Getenv("NODEWARD_DB"); db != "" {
		c.Contact.Database = db
	}
	if path := os.Getenv("NODEWARD_CONTENT"); path != "" {
		c.Content.Path = path
	}
	if level := os.Getenv("NODEWARD_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if origins := os.Getenv("NODEWARD_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	const op = "config.Validate"
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.Configuration(op, fmt.Errorf("server.addr is required"))
	}
	if c.Server.ShutdownTimeout < 0 || c.Server.ReadHeaderTimeout < 0 {
		return errors.Configuration(op, fmt.Errorf("server timeouts must not be negative"))
	}
	if strings.TrimSpace(c.Contact.Database) == "" {
		return errors.Configuration(op, fmt.Errorf("contact.database is required"))
	}
	if c.Monitor.Limit < 0 {
		return errors.Configuration(op, fmt.Errorf("monitor.limit must not be negative"))
	}
	if c.Preview.FrameInterval <= 0 {
		return errors.Configuration(op, fmt.Errorf("preview.frameInterval must be positive"))
	}
	if c.Preview.RowHeight <= 0 {
		return errors.Configuration(op, fmt.Errorf("preview.rowHeight must be positive"))
	}
	if c.Content.Watch && c.Content.Path == "" {
		return errors.Configuration(op, fmt.Errorf("content.watch requires content.path"))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return errors.Configuration(op, fmt.Errorf("logging.level: %w", err))
	}
	return nil
}
