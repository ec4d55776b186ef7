package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tinkertanker/googlepdfgen/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestFileExists - Regular file detection
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing file", file, true},
		{"missing file", filepath.Join(dir, "absent.txt"), false},
		{"directory is not a file", dir, false},
		{"empty path", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - Name vs path classification
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"batch", false},
		{"my-config", false},
		{"./certs.yaml", true},
		{"../shared/batch.yaml", true},
		{"/etc/pdfgen/batch.yaml", true},
		{`C:\configs\batch.yaml`, true},
		{"sub/dir", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsURL - Storage scheme detection
// ---------------------------------------------------------------------------

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/folder", true},
		{"s3://bucket/prefix", true},
		{"gs://bucket/prefix", true},
		{"file:///tmp/out", true},
		{"/tmp/out", false},
		{"out", false},
		{"C:\\out", false},
		{"://missing-scheme", false},
		{"weird scheme://x", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.IsURL(tt.input); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEnsureDir - Directory creation
// ---------------------------------------------------------------------------

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directories", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "a", "b", "c")
		if err := fileutil.EnsureDir(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory at %s", path)
		}
	})

	t.Run("existing directory is fine", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := fileutil.EnsureDir(dir); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("file in the way fails", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := fileutil.EnsureDir(filepath.Join(file, "child")); err == nil {
			t.Error("expected error, got nil")
		}
	})
}
