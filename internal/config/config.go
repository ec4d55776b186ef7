// Package config loads the run configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinkertanker/googlepdfgen/internal/fileutil"
	"github.com/tinkertanker/googlepdfgen/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidDPI      = errors.New("invalid target DPI")
	ErrInvalidTimeout  = errors.New("invalid timeout")
	ErrInvalidWorkers  = errors.New("invalid worker count")
)

// DPI bounds. Below 72 text rasters become illegible; above 1200 nothing is
// gained and Ghostscript memory use explodes.
const (
	MinDPI = 72
	MaxDPI = 1200
)

// MaxWorkersLimit caps the configurable pool size.
const MaxWorkersLimit = 64

// Config holds all configuration for a generation run.
type Config struct {
	Dataset  string     `yaml:"dataset"`  // spreadsheet location (.xlsx or .csv)
	Template string     `yaml:"template"` // presentation template location
	Output   string     `yaml:"output"`   // output directory or storage URL
	DPI      int        `yaml:"dpi"`      // image downsampling target
	Soffice  string     `yaml:"soffice"`  // LibreOffice binary ("" = platform default)
	Gs       string     `yaml:"gs"`       // Ghostscript binary ("" = platform default)
	Workers  int        `yaml:"workers"`  // concurrent rows (0 = auto)
	Timeout  string     `yaml:"timeout"`  // per-invocation bound, e.g. "2m"
	Publish  PublishCfg `yaml:"publish"`
}

// PublishCfg controls the optional publish phase.
type PublishCfg struct {
	Enabled bool `yaml:"enabled"`
	// Writeback updates the dataset's "file" column with published
	// references (xlsx datasets only).
	Writeback bool `yaml:"writeback"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		DPI:     300,
		Timeout: "2m",
		Publish: PublishCfg{Enabled: true, Writeback: true},
	}
}

// Validate checks bounds on numeric and duration fields. Locations are not
// checked here; their existence is verified where they are opened.
func (c *Config) Validate() error {
	if c.DPI < MinDPI || c.DPI > MaxDPI {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidDPI, c.DPI, MinDPI, MaxDPI)
	}
	if c.Workers < 0 || c.Workers > MaxWorkersLimit {
		return fmt.Errorf("%w: %d (must be between 0 and %d)", ErrInvalidWorkers, c.Workers, MaxWorkersLimit)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses the timeout field.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, c.Timeout)
	}
	return d, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns an error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths returns every location a config name resolves against, in
// search order: current directory first, then the user config directory,
// with .yaml preferred over .yml in each.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "pdfgen", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
