package pdfgen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Worker pool sizing constants.
const (
	// MinWorkers ensures at least one row pipeline runs.
	MinWorkers = 1

	// MaxWorkers caps simultaneous external renderer processes; LibreOffice
	// and Ghostscript are CPU- and memory-heavy.
	MaxWorkers = 8

	// cpuDivisor leaves headroom for the renderer's own child processes.
	cpuDivisor = 2
)

// ResolveWorkers determines the worker pool size.
// Priority: explicit value > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs in the CLI)
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// Run processes every row through the pipeline and returns the manifest.
// Rows are independent: one row failing at any stage never aborts the rest.
// Bounded concurrency is a resource cap, not a correctness requirement;
// results are identical at any pool size >= 1.
//
// Cancelling ctx stops dispatching new rows; rows already in flight see the
// cancellation through their external process contexts, and their entries
// record the context error. Partial output of interrupted rows is removed.
func (s *Service) Run(ctx context.Context, tpl *Template, rows []Row, tokens TokenSet, outDir string) *Manifest {
	manifest := &Manifest{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	defer func() {
		manifest.Finished = time.Now()
		manifest.finalize()
	}()

	if len(rows) == 0 {
		return manifest
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		// Without an output directory no row can succeed; record the same
		// failure for each so the manifest still has one entry per row.
		for _, row := range rows {
			manifest.Entries = append(manifest.Entries, Entry{
				Filename: row.Filename,
				RowIndex: row.Index,
				Stage:    StageNormalize,
				Reason:   fmt.Sprintf("creating output directory: %v", err),
			})
		}
		return manifest
	}

	scratchRoot, err := os.MkdirTemp("", "pdfgen-"+manifest.RunID[:8]+"-*")
	if err != nil {
		for _, row := range rows {
			manifest.Entries = append(manifest.Entries, Entry{
				Filename: row.Filename,
				RowIndex: row.Index,
				Stage:    StageSubstitute,
				Reason:   fmt.Sprintf("creating scratch area: %v", err),
			})
		}
		return manifest
	}
	defer func() { _ = os.RemoveAll(scratchRoot) }()

	workers := ResolveWorkers(s.cfg.workers)
	if workers > len(rows) {
		workers = len(rows)
	}
	s.logger.Info("batch started",
		"runId", manifest.RunID, "rows", len(rows), "workers", workers, "output", outDir)

	jobs := make(chan Row, len(rows))
	results := make(chan Entry, len(rows))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				if err := ctx.Err(); err != nil {
					// Dispatch stopped; rows never started still get an entry.
					results <- Entry{
						Filename: row.Filename,
						RowIndex: row.Index,
						Stage:    StageSubstitute,
						Reason:   err.Error(),
					}
					continue
				}
				results <- s.processRow(ctx, tpl, row, tokens, outDir, scratchRoot)
			}
		}()
	}

	for _, row := range rows {
		jobs <- row
	}
	close(jobs)

	// Single-writer aggregation: only this goroutine touches the manifest
	// while workers are running.
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for entry := range results {
			manifest.Entries = append(manifest.Entries, entry)
		}
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	s.logger.Info("batch finished",
		"runId", manifest.RunID,
		"succeeded", countSucceeded(manifest.Entries),
		"failed", len(manifest.Entries)-countSucceeded(manifest.Entries))
	return manifest
}

func countSucceeded(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.Success {
			n++
		}
	}
	return n
}

// Publisher hands a normalized PDF to the output collaborator and returns
// the reference to record in the manifest's file field.
type Publisher interface {
	Publish(ctx context.Context, name string, pdf []byte) (ref string, err error)
}

// PublishManifest uploads every publishable entry's output through the
// publisher and records the returned references. Publishable means the entry
// succeeded, or failed at the publish stage on an earlier attempt: rows that
// never produced an output are skipped, rows whose only failure was the
// upload get retried. Failures flip the entry to failed at the publish
// stage; other entries proceed. Returns the number of publish failures.
//
// This is the optional second phase of a run: it consumes a manifest the
// batch phase produced, so publishing can be skipped, repeated, or done
// later from a saved manifest.
func PublishManifest(ctx context.Context, m *Manifest, pub Publisher, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	failed := 0
	for i := range m.Entries {
		e := &m.Entries[i]
		if e.Output == "" {
			continue
		}
		if !e.Success && e.Stage != StagePublish {
			continue
		}
		if err := ctx.Err(); err != nil {
			e.Success = false
			e.Stage = StagePublish
			e.Reason = err.Error()
			failed++
			continue
		}

		data, err := os.ReadFile(e.Output) // #nosec G304 -- path written by this run
		if err != nil {
			err = fmt.Errorf("%w: reading %s: %v", ErrPublish, e.Output, err)
		} else {
			var ref string
			ref, err = pub.Publish(ctx, filepath.Base(e.Output), data)
			if err == nil {
				// A retried entry becomes a plain success again.
				e.Success = true
				e.Stage = ""
				e.Reason = ""
				e.File = ref
				logger.Info("published", "filename", e.Filename, "file", ref)
				continue
			}
			err = fmt.Errorf("%w: %v", ErrPublish, err)
		}

		e.Success = false
		e.Stage = StagePublish
		e.Reason = err.Error()
		failed++
		logger.Warn("publish failed", "filename", e.Filename, "error", err)
	}

	m.finalize()
	return failed
}
