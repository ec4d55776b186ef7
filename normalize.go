package pdfgen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// RowNormalizer abstracts the external PDF post-processor.
type RowNormalizer interface {
	// Normalize reads the raw PDF at inputPath and writes the linearized,
	// downsampled, archival-profile PDF to outputPath.
	Normalize(ctx context.Context, inputPath, outputPath string) error
}

// GhostscriptNormalizer applies the three normalization passes in one
// Ghostscript invocation. The order is structural: downsampling assumes the
// object layout produced by linearization, and PDF/A conversion assumes the
// recompressed images, which is why all three are expressed as flags of a
// single pdfwrite run rather than chained filters.
//
// Normalization failures are never retried: they almost always mean the
// rendered input is structurally broken, not that the tool was unlucky.
type GhostscriptNormalizer struct {
	Bin       string
	TargetDPI int
	Timeout   time.Duration
	Runner    Runner
}

// Compile-time interface check.
var _ RowNormalizer = (*GhostscriptNormalizer)(nil)

// NewGhostscriptNormalizer creates a normalizer with a real command runner.
func NewGhostscriptNormalizer(bin string, targetDPI int, timeout time.Duration) *GhostscriptNormalizer {
	if targetDPI <= 0 {
		targetDPI = DefaultDPI
	}
	return &GhostscriptNormalizer{Bin: bin, TargetDPI: targetDPI, Timeout: timeout, Runner: ExecRunner{}}
}

// args builds the Ghostscript invocation for one input/output pair.
func (n *GhostscriptNormalizer) args(inputPath, outputPath string) []string {
	dpi := strconv.Itoa(n.TargetDPI)
	return []string{
		"-sDEVICE=pdfwrite",
		// PDF/A-2b conformance; policy 1 drops non-convertible constructs
		// instead of aborting the whole document.
		"-dPDFA=2", "-dPDFACompatibilityPolicy=1",
		"-sPDFSettings=/printer",
		"-sColorConversionStrategy=UseDeviceIndependentColor",
		"-sProcessColorModel=DeviceCMYK",
		"-dEmbedAllFonts=true",
		// Linearize for progressive viewing.
		"-dFastWebView=true",
		// Downsample rasters above the target resolution; images already at
		// or below it are left untouched, which keeps the pass idempotent.
		"-dDownsampleColorImages=true", "-dColorImageDownsampleType=/Bicubic",
		"-dColorImageResolution=" + dpi,
		"-dDownsampleGrayImages=true", "-dGrayImageDownsampleType=/Bicubic",
		"-dGrayImageResolution=" + dpi,
		"-dDownsampleMonoImages=true", "-dMonoImageDownsampleType=/Subsample",
		"-dMonoImageResolution=" + dpi,
		"-r" + dpi,
		"-q", "-o", outputPath,
		inputPath,
	}
}

// Normalize runs the bounded invocation and validates the produced artifact.
func (n *GhostscriptNormalizer) Normalize(ctx context.Context, inputPath, outputPath string) error {
	nctx, cancel := context.WithTimeout(ctx, n.Timeout)
	defer cancel()

	_, stderr, err := n.Runner.Run(nctx, n.Bin, n.args(inputPath, outputPath)...)

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(nctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: timed out after %s: %s", ErrNormalize, n.Timeout, diagnostic(stderr))
	case err != nil:
		return fmt.Errorf("%w: %v: %s", ErrNormalize, err, diagnostic(stderr))
	}

	if err := ValidatePDFFile(outputPath); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrNormalize, err, diagnostic(stderr))
	}
	return nil
}
