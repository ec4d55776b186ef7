// Package pdfgen generates batches of personalized PDF documents from a
// slide template and a tabular dataset.
//
// # Quick Start
//
// Load a template, extract tokens, and run a batch:
//
//	tpl, err := pdfgen.LoadTemplate(pptxBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens, warnings, err := pdfgen.ExtractTokens(tpl, headers)
//	if err != nil {
//	    log.Fatal(err) // template references a column that does not exist
//	}
//
//	svc := pdfgen.New(pdfgen.WithTargetDPI(300))
//	manifest := svc.Run(ctx, tpl, rows, tokens, "out")
//
// Each row produces exactly one manifest entry; a row failing at any stage
// never aborts the rest of the batch.
//
// # Pipeline
//
// Every row runs the same three stages end-to-end on one worker:
//
//  1. Substitution: a structural copy of the template with every <token>
//     occurrence replaced by the row's value, formatting untouched.
//  2. Rendering: LibreOffice converts the instance to PDF in an isolated
//     per-row scratch directory (one retry on transient process failure).
//  3. Normalization: Ghostscript linearizes, downsamples raster images to
//     the target DPI, and converts to PDF/A-2b (no retry).
//
// # Tokens
//
// A token is an identifier wrapped in angle brackets, e.g. <name>, appearing
// both as a dataset column header and as literal text in the template.
// ExtractTokens validates the two sets against each other before any row is
// processed: a template token with no matching column is fatal, a column
// token unused by the template is only a warning.
//
// # External Tools
//
// Rendering and normalization shell out to LibreOffice and Ghostscript.
// Both binaries are configurable; the doctor command of the bundled CLI
// checks that they are installed and runnable.
package pdfgen
