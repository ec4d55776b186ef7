package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tinkertanker/googlepdfgen/internal/config"
)

// writeConfig creates a temp config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestDefaultConfig - Sane defaults
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	if cfg.DPI != 300 {
		t.Errorf("DPI = %d, want 300", cfg.DPI)
	}
	if cfg.Timeout != "2m" {
		t.Errorf("Timeout = %q, want %q", cfg.Timeout, "2m")
	}
	if !cfg.Publish.Enabled {
		t.Error("Publish.Enabled = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File resolution and parsing
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("loads a valid config by path", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, strings.Join([]string{
			"dataset: students.xlsx",
			"template: cert.pptx",
			"output: out",
			"dpi: 150",
			"workers: 2",
			"timeout: 90s",
		}, "\n"))

		cfg, err := config.LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Dataset != "students.xlsx" {
			t.Errorf("Dataset = %q, want %q", cfg.Dataset, "students.xlsx")
		}
		if cfg.DPI != 150 {
			t.Errorf("DPI = %d, want 150", cfg.DPI)
		}
		d, err := cfg.TimeoutDuration()
		if err != nil {
			t.Fatalf("TimeoutDuration: %v", err)
		}
		if d != 90*time.Second {
			t.Errorf("TimeoutDuration = %v, want 90s", d)
		}
	})

	t.Run("file values merge over defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "dataset: d.csv\n")

		cfg, err := config.LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Unset fields keep their defaults.
		if cfg.DPI != 300 {
			t.Errorf("DPI = %d, want default 300", cfg.DPI)
		}
		if !cfg.Publish.Writeback {
			t.Error("Publish.Writeback = false, want default true")
		}
	})

	t.Run("missing file is ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := config.LoadConfig("")
		if !errors.Is(err, config.ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "dataset: d.xlsx\nbogus_field: 1\n")
		_, err := config.LoadConfig(path)
		if !errors.Is(err, config.ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestValidate - Bounds checking
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "dpi below minimum",
			mutate:  func(c *config.Config) { c.DPI = 50 },
			wantErr: config.ErrInvalidDPI,
		},
		{
			name:    "dpi above maximum",
			mutate:  func(c *config.Config) { c.DPI = 2400 },
			wantErr: config.ErrInvalidDPI,
		},
		{
			name:    "negative workers",
			mutate:  func(c *config.Config) { c.Workers = -1 },
			wantErr: config.ErrInvalidWorkers,
		},
		{
			name:    "absurd workers",
			mutate:  func(c *config.Config) { c.Workers = 1000 },
			wantErr: config.ErrInvalidWorkers,
		},
		{
			name:    "unparseable timeout",
			mutate:  func(c *config.Config) { c.Timeout = "soon" },
			wantErr: config.ErrInvalidTimeout,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *config.Config) { c.Timeout = "-5s" },
			wantErr: config.ErrInvalidTimeout,
		},
		{
			name:   "empty timeout means unset",
			mutate: func(c *config.Config) { c.Timeout = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSearchPaths - Candidate locations for a config name
// ---------------------------------------------------------------------------

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := config.SearchPaths("batch")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least the local candidates", paths)
	}

	// Current directory first, .yaml before .yml.
	if paths[0] != "batch.yaml" || paths[1] != "batch.yml" {
		t.Errorf("local candidates = %v, want [batch.yaml batch.yml] first", paths[:2])
	}

	// The user config dir candidates live under a pdfgen subdirectory, which
	// is what the not-found hint points at.
	for _, p := range paths[2:] {
		if !strings.Contains(p, filepath.Join("pdfgen", "batch")) {
			t.Errorf("user candidate %q not under a pdfgen directory", p)
		}
	}
}
