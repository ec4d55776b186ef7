package pdfgen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Service runs the per-row pipeline: substitute, render, normalize. One
// Service is shared by all workers of a batch; it holds no per-row state.
type Service struct {
	cfg        serviceConfig
	renderer   RowRenderer
	normalizer RowNormalizer
	logger     *slog.Logger
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithTargetDPI, WithTimeout).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			targetDPI:  DefaultDPI,
			timeout:    DefaultTimeout,
			sofficeBin: DefaultSofficeBin(),
			gsBin:      DefaultGhostscriptBin(),
		},
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create real adapters if not injected (e.g., by tests)
	if s.renderer == nil {
		s.renderer = NewSofficeRenderer(s.cfg.sofficeBin, s.cfg.timeout)
	}
	if s.normalizer == nil {
		s.normalizer = NewGhostscriptNormalizer(s.cfg.gsBin, s.cfg.targetDPI, s.cfg.timeout)
	}

	return s
}

// processRow drives one row end-to-end. Every failure is caught here and
// turned into a manifest entry; nothing propagates to abort the batch.
// scratchRoot is the run-wide scratch area; each row gets its own
// subdirectory so concurrent external renders never share a working
// directory, even transiently.
func (s *Service) processRow(ctx context.Context, tpl *Template, row Row, tokens TokenSet, outDir, scratchRoot string) Entry {
	entry := Entry{Filename: row.Filename, RowIndex: row.Index}

	fail := func(stage Stage, err error) Entry {
		entry.Success = false
		entry.Stage = stage
		entry.Reason = err.Error()
		s.logger.Warn("row failed",
			"row", row.Index, "filename", row.Filename, "stage", string(stage), "error", err)
		return entry
	}

	if err := validateFilename(row.Filename); err != nil {
		return fail(StageSubstitute, err)
	}

	scratch := filepath.Join(scratchRoot, fmt.Sprintf("row-%04d-%s", row.Index, uuid.NewString()[:8]))
	if err := os.MkdirAll(scratch, 0o750); err != nil {
		return fail(StageSubstitute, fmt.Errorf("creating scratch dir: %w", err))
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	// Substitute
	instance, err := tpl.Substitute(row, tokens)
	if err != nil {
		return fail(StageSubstitute, err)
	}
	instancePath := filepath.Join(scratch, row.Filename+".pptx")
	if err := os.WriteFile(instancePath, instance, 0o600); err != nil {
		return fail(StageSubstitute, fmt.Errorf("writing instance: %w", err))
	}

	// Render
	renderedPath, err := s.renderer.Render(ctx, instancePath, scratch)
	if err != nil {
		return fail(StageRender, err)
	}

	// Normalize straight into the output location.
	outPath := filepath.Join(outDir, row.Filename+".pdf")
	if err := s.normalizer.Normalize(ctx, renderedPath, outPath); err != nil {
		// A partial artifact from an interrupted or failed normalization
		// must never be published.
		_ = os.Remove(outPath)
		return fail(StageNormalize, err)
	}

	entry.Success = true
	entry.Output = outPath
	s.logger.Info("row done", "row", row.Index, "filename", row.Filename, "output", outPath)
	return entry
}

// validateFilename rejects empty names and names that would escape the
// output directory. Rows come from an external collaborator, so this is
// checked per row rather than assumed.
func validateFilename(name string) error {
	if name == "" {
		return ErrMissingFilename
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q contains path separators", ErrMissingFilename, name)
	}
	return nil
}
