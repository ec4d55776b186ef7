package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	pdfgen "github.com/tinkertanker/googlepdfgen"
	"github.com/tinkertanker/googlepdfgen/internal/config"
	"github.com/tinkertanker/googlepdfgen/internal/fileutil"
	"github.com/tinkertanker/googlepdfgen/internal/hints"
	"github.com/tinkertanker/googlepdfgen/internal/sheet"
	"github.com/tinkertanker/googlepdfgen/internal/store"
)

// Sentinel errors for CLI operations.
var (
	ErrNoDataset    = errors.New("no dataset specified")
	ErrNoTemplate   = errors.New("no template specified")
	ErrNoOutput     = errors.New("no output specified")
	ErrReadDataset  = errors.New("failed to read dataset")
	ErrReadTemplate = errors.New("failed to read template")
	ErrReadManifest = errors.New("failed to read manifest")
	ErrToolNotFound = errors.New("external tool not found")
)

// defaultManifestName is the manifest filename when --manifest is not given.
const defaultManifestName = "manifest.yaml"

// runGenerate orchestrates a full run: dataset in, normalized PDFs and a
// manifest out, with the optional publish and writeback phases after.
func runGenerate(ctx context.Context, flags *runFlags, env *Environment) error {
	cfg, err := loadRunConfig(flags)
	if err != nil {
		return err
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	if err := checkTools(cfg); err != nil {
		return err
	}

	ds, err := sheet.Read(cfg.Dataset)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadDataset, err)
	}

	tpl, err := loadTemplate(ctx, cfg.Template)
	if err != nil {
		return err
	}

	tokens, warnings, err := pdfgen.ExtractTokens(tpl, ds.Headers)
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForMissingTokenColumns())
	}
	for _, w := range warnings {
		env.Logger.Warn("dataset column unused", "warning", w)
	}

	stageDir, cleanupStage, err := resolveStageDir(cfg.Output)
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	}
	defer cleanupStage()

	opts := []pdfgen.Option{
		pdfgen.WithTargetDPI(cfg.DPI),
		pdfgen.WithWorkers(cfg.Workers),
		pdfgen.WithLogger(env.Logger),
	}
	if timeout > 0 {
		opts = append(opts, pdfgen.WithTimeout(timeout))
	}
	if cfg.Soffice != "" {
		opts = append(opts, pdfgen.WithSofficeBin(cfg.Soffice))
	}
	if cfg.Gs != "" {
		opts = append(opts, pdfgen.WithGhostscriptBin(cfg.Gs))
	}
	svc := pdfgen.New(opts...)

	manifest := svc.Run(ctx, tpl, ds.Rows, tokens, stageDir)

	if cfg.Publish.Enabled && !flags.noPublish {
		publishRun(ctx, manifest, cfg.Output, env)

		if cfg.Publish.Writeback && !flags.noWriteback {
			if err := sheet.WriteFileRefs(cfg.Dataset, manifest.Entries); err != nil {
				env.Logger.Warn("dataset writeback failed", "error", err)
			}
		}
	}

	manifestPath := resolveManifestPath(flags.manifest, cfg.Output, stageDir)
	if err := manifest.Save(manifestPath); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	return printResults(manifest, manifestPath, flags.common.quiet, flags.common.verbose, env)
}

// loadRunConfig loads the config file (or defaults), merges CLI flags over
// it, and validates the result.
func loadRunConfig(flags *runFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		loaded, err := config.LoadConfig(flags.common.config)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err,
					hints.ForConfigNotFound(config.SearchPaths(flags.common.config)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch {
	case cfg.Dataset == "":
		return nil, ErrNoDataset
	case cfg.Template == "":
		return nil, ErrNoTemplate
	case cfg.Output == "":
		return nil, ErrNoOutput
	}

	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *runFlags, cfg *config.Config) {
	if flags.dataset != "" {
		cfg.Dataset = flags.dataset
	}
	if flags.template != "" {
		cfg.Template = flags.template
	}
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if flags.dpi > 0 {
		cfg.DPI = flags.dpi
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.timeout != "" {
		cfg.Timeout = flags.timeout
	}
	if flags.tools.soffice != "" {
		cfg.Soffice = flags.tools.soffice
	}
	if flags.tools.gs != "" {
		cfg.Gs = flags.tools.gs
	}
}

// checkTools verifies that both external binaries are resolvable before any
// row work starts. Failing fast here beats failing on every row.
func checkTools(cfg *config.Config) error {
	soffice := cfg.Soffice
	if soffice == "" {
		soffice = pdfgen.DefaultSofficeBin()
	}
	if _, err := exec.LookPath(soffice); err != nil {
		return fmt.Errorf("%w: %s%s", ErrToolNotFound, soffice, hints.ForSofficeNotFound())
	}

	gs := cfg.Gs
	if gs == "" {
		gs = pdfgen.DefaultGhostscriptBin()
	}
	if _, err := exec.LookPath(gs); err != nil {
		return fmt.Errorf("%w: %s%s", ErrToolNotFound, gs, hints.ForGhostscriptNotFound())
	}

	return nil
}

// loadTemplate fetches the template from a local path or a storage URL and
// parses it.
func loadTemplate(ctx context.Context, location string) (*pdfgen.Template, error) {
	var data []byte
	var err error

	if fileutil.IsURL(location) {
		data, err = store.FetchTemplate(ctx, location)
	} else {
		data, err = os.ReadFile(location) // #nosec G304 -- user-provided path
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadTemplate, err)
	}

	return pdfgen.LoadTemplate(data)
}

// resolveStageDir picks where normalized PDFs land during the batch phase.
// A local output directory doubles as the staging area; a storage URL gets
// a temporary staging directory that the publish phase uploads from.
func resolveStageDir(output string) (dir string, cleanup func(), err error) {
	if !fileutil.IsURL(output) {
		if err := fileutil.EnsureDir(output); err != nil {
			return "", nil, err
		}
		return output, func() {}, nil
	}

	tmp, err := os.MkdirTemp("", "pdfgen-stage-*")
	if err != nil {
		return "", nil, err
	}
	return tmp, func() { _ = os.RemoveAll(tmp) }, nil
}

// publishRun records file references for every successful entry. Local
// outputs already sit at their destination, so the reference is the output
// path itself; storage URLs go through the uploader.
func publishRun(ctx context.Context, m *pdfgen.Manifest, output string, env *Environment) {
	if !fileutil.IsURL(output) {
		for i := range m.Entries {
			e := &m.Entries[i]
			if e.Success && e.Output != "" {
				e.File = e.Output
			}
		}
		return
	}

	pub := store.New(output)
	if failed := pdfgen.PublishManifest(ctx, m, pub, env.Logger); failed > 0 {
		env.Logger.Warn("publish phase incomplete", "failed", failed)
	}
}

// resolveManifestPath determines where the manifest is written. Local output
// directories hold their own manifest; storage URL runs write it to the
// working directory unless --manifest says otherwise.
func resolveManifestPath(flagManifest, output, stageDir string) string {
	if flagManifest != "" {
		return flagManifest
	}
	if !fileutil.IsURL(output) {
		return filepath.Join(stageDir, defaultManifestName)
	}
	return defaultManifestName
}

// printResults reports the batch outcome and returns an error when any row
// failed, so the process exits nonzero.
func printResults(m *pdfgen.Manifest, manifestPath string, quiet, verbose bool, env *Environment) error {
	sawTimeout := false
	for _, e := range m.Failures() {
		fmt.Fprintf(env.Stderr, "FAILED %s (row %d, %s): %s\n", e.Filename, e.RowIndex, e.Stage, e.Reason)
		if strings.Contains(e.Reason, "timed out") {
			sawTimeout = true
		}
	}
	if sawTimeout {
		fmt.Fprintln(env.Stderr, strings.TrimPrefix(hints.ForTimeout(), "\n"))
	}

	if !quiet {
		for _, e := range m.Entries {
			if !e.Success {
				continue
			}
			if verbose && e.File != "" {
				fmt.Fprintf(env.Stdout, "%s -> %s\n", e.Filename, e.File)
			} else {
				fmt.Fprintf(env.Stdout, "Created %s\n", e.Output)
			}
		}

		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed (manifest: %s)\n",
			m.Succeeded, m.Failed, manifestPath)
	}

	if m.Failed > 0 {
		return fmt.Errorf("%d row(s) failed", m.Failed)
	}

	return nil
}
