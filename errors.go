package pdfgen

import "errors"

// Sentinel errors for pipeline operations.
var (
	// Run-level validation errors. A run never starts when one of these is
	// returned by ExtractTokens.
	ErrValidation = errors.New("template validation failed")

	// Template loading errors.
	ErrNotPresentation = errors.New("not a presentation archive")
	ErrEmptyTemplate   = errors.New("template contains no slides")

	// Row-level errors. These fail a single row, never the batch.
	ErrMissingFilename = errors.New("row has no filename")
	ErrSubstitution    = errors.New("substitution failed")
	ErrRenderTimeout   = errors.New("render timed out")
	ErrRenderProcess   = errors.New("render process failed")
	ErrNormalize       = errors.New("normalization failed")
	ErrPublish         = errors.New("publish failed")

	// PDF validation errors.
	ErrNotPDF       = errors.New("output is not a valid PDF")
	ErrEmptyPDF     = errors.New("output PDF is empty")
	ErrPDFStructure = errors.New("PDF has structural errors")
)
