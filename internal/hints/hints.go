// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import "strings"

// ForSofficeNotFound returns hints for a missing LibreOffice binary.
func ForSofficeNotFound() string {
	return formatHints([]string{
		"install LibreOffice",
		"or point --soffice at the binary (soffice on macOS/Windows, libreoffice on Linux)",
	})
}

// ForGhostscriptNotFound returns hints for a missing Ghostscript binary.
func ForGhostscriptNotFound() string {
	return formatHints([]string{
		"install Ghostscript",
		"or point --gs at the binary (gs on macOS/Linux, gswin32c on Windows)",
	})
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "pdfgen") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForTimeout returns a hint about increasing the external tool timeout.
func ForTimeout() string {
	return format("for large templates or many slides, raise --timeout")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForMissingTokenColumns returns hints for token validation failures.
func ForMissingTokenColumns() string {
	return format("add the missing columns to the dataset header row, or remove the tokens from the template")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
