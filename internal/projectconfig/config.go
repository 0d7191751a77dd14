// Package projectconfig provides the ProjectConfig struct and loader for
// .ideamill.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default values for project configuration. These are the single source of
// truth — New() references them and no other code should duplicate them.
const (
	DefaultServerPort = 3000

	DefaultDatabasePath = "data/ideamill.sqlite"

	DefaultSignalTimeout           = 3
	DefaultSignalRequestsPerSecond = 10
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	StaticDir      string   `yaml:"static_dir,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// SignalsConfig holds the external scoring signal endpoints. Empty URLs
// leave the pipeline on its neutral fallback scores.
type SignalsConfig struct {
	CostURL           string  `yaml:"cost_url,omitempty"`
	TrendURL          string  `yaml:"trend_url,omitempty"`
	Timeout           int     `yaml:"timeout,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .ideamill.yaml.
// Rules carries loosely typed overrides for the built-in keyword tables.
type ProjectConfig struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Signals  SignalsConfig  `yaml:"signals,omitempty"`
	Rules    map[string]any `yaml:"rules,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
		Database: DatabaseConfig{
			Path: DefaultDatabasePath,
		},
		Signals: SignalsConfig{
			Timeout:           DefaultSignalTimeout,
			RequestsPerSecond: DefaultSignalRequestsPerSecond,
		},
	}
}

// Load finds .ideamill.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults. A PORT
// environment variable overrides the configured server port.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(cfg)
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading .ideamill.yaml: %w", err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .ideamill.yaml: %w", err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	applyEnv(cfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .ideamill.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors (e.g. permission denied) instead of silently swallowing
// them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".ideamill.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.StaticDir != "" {
		dst.Server.StaticDir = src.Server.StaticDir
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}

	// Database
	if src.Database.Path != "" {
		dst.Database.Path = src.Database.Path
	}

	// Signals
	if src.Signals.CostURL != "" {
		dst.Signals.CostURL = src.Signals.CostURL
	}
	if src.Signals.TrendURL != "" {
		dst.Signals.TrendURL = src.Signals.TrendURL
	}
	if src.Signals.Timeout != 0 {
		dst.Signals.Timeout = src.Signals.Timeout
	}
	if src.Signals.RequestsPerSecond != 0 {
		dst.Signals.RequestsPerSecond = src.Signals.RequestsPerSecond
	}

	// Rules
	if len(src.Rules) > 0 {
		dst.Rules = src.Rules
	}
}

// applyEnv overrides config values from the environment. PORT wins over
// the file so containerized deployments can rebind without editing config.
func applyEnv(cfg *ProjectConfig) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}
