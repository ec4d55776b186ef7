package pdfgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RowRenderer abstracts the external document renderer to allow different
// backends (and fakes in tests).
type RowRenderer interface {
	// Render converts a document instance into a raw PDF inside scratchDir
	// and returns the PDF path. scratchDir is exclusive to this invocation.
	Render(ctx context.Context, instancePath, scratchDir string) (string, error)
}

// SofficeRenderer renders presentation instances to PDF by invoking
// LibreOffice headless. The renderer itself is stateless; all per-invocation
// state lives in the scratch directory, which must never be shared between
// concurrent renders (LibreOffice races on lock files in a shared profile
// or working directory).
type SofficeRenderer struct {
	Bin     string
	Timeout time.Duration
	Runner  Runner
}

// Compile-time interface check.
var _ RowRenderer = (*SofficeRenderer)(nil)

// NewSofficeRenderer creates a renderer with a real command runner.
func NewSofficeRenderer(bin string, timeout time.Duration) *SofficeRenderer {
	return &SofficeRenderer{Bin: bin, Timeout: timeout, Runner: ExecRunner{}}
}

// inputErrorMarkers identify diagnostics LibreOffice prints for documents it
// cannot open. These failures are deterministic: retrying wastes a render.
var inputErrorMarkers = []string{
	"could not be loaded",
	"no export filter",
	"Error: source file",
}

// Render runs the conversion, retrying once on transient failure (crash,
// empty or missing output). Timeouts and confirmed malformed-input errors
// are not retried.
func (r *SofficeRenderer) Render(ctx context.Context, instancePath, scratchDir string) (string, error) {
	outPath, err := r.attempt(ctx, instancePath, scratchDir)
	if err == nil {
		return outPath, nil
	}

	var transient *transientRenderError
	if !errors.As(err, &transient) {
		return "", err
	}

	// Remove whatever the failed attempt left behind so the retry starts
	// from a clean scratch state.
	_ = os.Remove(r.expectedOutput(instancePath, scratchDir))

	outPath, retryErr := r.attempt(ctx, instancePath, scratchDir)
	if retryErr == nil {
		return outPath, nil
	}
	return "", fmt.Errorf("%w (after retry)", retryErr)
}

// transientRenderError marks failures worth one retry.
type transientRenderError struct {
	err error
}

func (e *transientRenderError) Error() string { return e.err.Error() }
func (e *transientRenderError) Unwrap() error { return e.err }

// expectedOutput is where LibreOffice writes the converted file: the input
// base name with a .pdf extension, inside --outdir.
func (r *SofficeRenderer) expectedOutput(instancePath, scratchDir string) string {
	base := strings.TrimSuffix(filepath.Base(instancePath), filepath.Ext(instancePath))
	return filepath.Join(scratchDir, base+".pdf")
}

// attempt performs a single bounded invocation and classifies its outcome.
func (r *SofficeRenderer) attempt(ctx context.Context, instancePath, scratchDir string) (string, error) {
	rctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	_, stderr, err := r.Runner.Run(rctx, r.Bin,
		"--headless", "--convert-to", "pdf", "--outdir", scratchDir, instancePath)

	switch {
	case ctx.Err() != nil:
		// Run-level cancellation, not a renderer fault.
		return "", ctx.Err()
	case errors.Is(rctx.Err(), context.DeadlineExceeded):
		return "", fmt.Errorf("%w: after %s: %s", ErrRenderTimeout, r.Timeout, diagnostic(stderr))
	case err != nil:
		wrapped := fmt.Errorf("%w: %v: %s", ErrRenderProcess, err, diagnostic(stderr))
		if isInputError(stderr) {
			return "", wrapped
		}
		// Crashes and unexplained nonzero exits are worth one retry.
		return "", &transientRenderError{err: wrapped}
	}

	outPath := r.expectedOutput(instancePath, scratchDir)
	if checkErr := CheckPDFFile(outPath); checkErr != nil {
		// Exit 0 with missing, empty, or garbled output happens when the
		// renderer dies after forking; treat as transient.
		return "", &transientRenderError{
			err: fmt.Errorf("%w: %v: %s", ErrRenderProcess, checkErr, diagnostic(stderr)),
		}
	}
	return outPath, nil
}

// isInputError reports whether stderr names a deterministic input problem.
func isInputError(stderr string) bool {
	for _, marker := range inputErrorMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}
