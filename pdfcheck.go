package pdfgen

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// pdfSignature opens every well-formed PDF file.
var pdfSignature = []byte("%PDF-")

// tailWindow bounds how far from the end the cross-reference markers are
// searched. ISO 32000 requires startxref in the last 1024 bytes; real tools
// are more lenient, and so are we.
const tailWindow = 2048

// CheckPDF performs a cheap structural sanity check on raw PDF bytes:
// signature at the start, a locatable startxref and end-of-file marker in
// the tail. It does not parse objects; use ValidatePDF for that.
func CheckPDF(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyPDF
	}
	if !bytes.HasPrefix(data, pdfSignature) {
		return fmt.Errorf("%w: missing %%PDF- signature", ErrNotPDF)
	}

	tail := data
	if len(tail) > tailWindow {
		tail = tail[len(tail)-tailWindow:]
	}
	if !bytes.Contains(tail, []byte("startxref")) {
		return fmt.Errorf("%w: no startxref in file tail", ErrNotPDF)
	}
	if !bytes.Contains(tail, []byte("%%EOF")) {
		return fmt.Errorf("%w: no %%%%EOF marker in file tail", ErrNotPDF)
	}
	return nil
}

// ValidatePDF fully opens a PDF and requires at least one readable page.
// Used on normalized output, where a parse failure means the row must fail.
func ValidatePDF(data []byte) (err error) {
	if err := CheckPDF(data); err != nil {
		return err
	}

	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPDFStructure, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFStructure, err)
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("%w: document has no pages", ErrPDFStructure)
	}
	return nil
}

// CheckPDFFile runs CheckPDF against a file on disk.
func CheckPDFFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- scratch artifact path
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return CheckPDF(data)
}

// ValidatePDFFile runs ValidatePDF against a file on disk.
func ValidatePDFFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- scratch artifact path
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return ValidatePDF(data)
}
