package pdfgen

import "runtime"

// DefaultSofficeBin returns the conventional LibreOffice binary name for the
// current platform: "soffice" on macOS/Windows installs, "libreoffice" from
// Linux package managers.
func DefaultSofficeBin() string {
	switch runtime.GOOS {
	case "windows", "darwin":
		return "soffice"
	default:
		return "libreoffice"
	}
}

// DefaultGhostscriptBin returns the conventional Ghostscript binary name for
// the current platform.
func DefaultGhostscriptBin() string {
	if runtime.GOOS == "windows" {
		return "gswin32c"
	}
	return "gs"
}
