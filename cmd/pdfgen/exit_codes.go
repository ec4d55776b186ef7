package main

import (
	"errors"
	"os"

	pdfgen "github.com/tinkertanker/googlepdfgen"
	"github.com/tinkertanker/googlepdfgen/internal/config"
	"github.com/tinkertanker/googlepdfgen/internal/sheet"
)

// Exit codes for the pdfgen CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // All rows produced and published
	ExitGeneral   = 1 // General/unexpected error, or failed rows in the batch
	ExitUsage     = 2 // Invalid flags, config, dataset, or template
	ExitIO        = 3 // File not found, permission denied
	ExitRender    = 4 // LibreOffice render errors
	ExitNormalize = 5 // Ghostscript normalization errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Render errors (exit 4)
	if errors.Is(err, pdfgen.ErrRenderTimeout) ||
		errors.Is(err, pdfgen.ErrRenderProcess) {
		return ExitRender
	}

	// Normalization errors (exit 5)
	if errors.Is(err, pdfgen.ErrNormalize) ||
		errors.Is(err, pdfgen.ErrNotPDF) ||
		errors.Is(err, pdfgen.ErrEmptyPDF) ||
		errors.Is(err, pdfgen.ErrPDFStructure) {
		return ExitNormalize
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadDataset) ||
		errors.Is(err, ErrReadTemplate) ||
		errors.Is(err, ErrReadManifest) ||
		errors.Is(err, ErrToolNotFound) ||
		errors.Is(err, pdfgen.ErrPublish) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrInvalidDPI) ||
		errors.Is(err, config.ErrInvalidTimeout) ||
		errors.Is(err, config.ErrInvalidWorkers) ||
		errors.Is(err, pdfgen.ErrValidation) ||
		errors.Is(err, pdfgen.ErrNotPresentation) ||
		errors.Is(err, pdfgen.ErrEmptyTemplate) ||
		errors.Is(err, sheet.ErrUnsupportedFormat) ||
		errors.Is(err, sheet.ErrEmptyDataset) ||
		errors.Is(err, ErrNoDataset) ||
		errors.Is(err, ErrNoTemplate) ||
		errors.Is(err, ErrNoOutput) ||
		errors.Is(err, ErrNoManifest) {
		return ExitUsage
	}

	return ExitGeneral
}
