package pdfgen

import (
	"log/slog"
	"time"
)

// Reserved dataset column names.
const (
	// FilenameColumn names the output document for a row. Required, non-empty.
	FilenameColumn = "filename"

	// FileColumn receives the published file reference after a run. It is
	// never a substitution token.
	FileColumn = "file"
)

// Default pipeline settings.
const (
	// DefaultDPI is the target resolution for raster image downsampling.
	DefaultDPI = 300

	// DefaultTimeout bounds a single external render or normalize invocation.
	DefaultTimeout = 2 * time.Minute
)

// Row is one line of the source dataset: the designated filename plus the
// values for every token column. Columns that are neither "filename", "file",
// nor angle-bracket tokens are dropped by the data source before a Row is
// built. Rows are consumed independently of each other.
type Row struct {
	// Index is the zero-based position in the source dataset. It tags
	// results so the manifest can be presented in input order regardless of
	// execution order.
	Index int

	// Filename is the output document name, without extension.
	Filename string

	// Values maps token columns (bracketed form, e.g. "<name>") to the
	// row's replacement values.
	Values map[string]string
}

// Value returns the replacement value for a bracketed token and whether the
// row carries it.
func (r Row) Value(token string) (string, bool) {
	v, ok := r.Values[token]
	return v, ok
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	targetDPI  int
	timeout    time.Duration
	sofficeBin string
	gsBin      string
	workers    int
}

// WithTargetDPI sets the image downsampling target for normalization.
// Panics if dpi <= 0 (programmer error).
func WithTargetDPI(dpi int) Option {
	if dpi <= 0 {
		panic("pdfgen: WithTargetDPI requires a positive DPI")
	}
	return func(s *Service) {
		s.cfg.targetDPI = dpi
	}
}

// WithTimeout bounds each external render/normalize invocation.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pdfgen: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithSofficeBin sets the LibreOffice binary path.
func WithSofficeBin(path string) Option {
	return func(s *Service) {
		s.cfg.sofficeBin = path
	}
}

// WithGhostscriptBin sets the Ghostscript binary path.
func WithGhostscriptBin(path string) Option {
	return func(s *Service) {
		s.cfg.gsBin = path
	}
}

// WithWorkers caps the number of concurrent row pipelines (0 = auto).
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.cfg.workers = n
	}
}

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer injects a custom render adapter (used by tests).
func WithRenderer(r RowRenderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// WithNormalizer injects a custom normalize adapter (used by tests).
func WithNormalizer(n RowNormalizer) Option {
	return func(s *Service) {
		s.normalizer = n
	}
}
