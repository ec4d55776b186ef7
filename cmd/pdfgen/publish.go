package main

import (
	"context"
	"errors"
	"fmt"

	pdfgen "github.com/tinkertanker/googlepdfgen"
	"github.com/tinkertanker/googlepdfgen/internal/fileutil"
	"github.com/tinkertanker/googlepdfgen/internal/store"
)

// ErrNoManifest is returned when the publish command has no manifest to read.
var ErrNoManifest = errors.New("no manifest specified")

// runPublishCmd re-publishes a saved manifest: every successful entry whose
// output file still exists is uploaded to the destination, and the updated
// manifest is written back in place.
func runPublishCmd(ctx context.Context, flags *publishFlags, env *Environment) error {
	if flags.manifest == "" {
		return ErrNoManifest
	}
	if flags.output == "" {
		return ErrNoOutput
	}

	manifest, err := pdfgen.LoadManifest(flags.manifest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadManifest, err)
	}

	// Local destinations need to exist; afs handles scheme-less paths as
	// plain files either way.
	if !fileutil.IsURL(flags.output) {
		if err := fileutil.EnsureDir(flags.output); err != nil {
			return err
		}
	}

	pub := store.New(flags.output)
	if failed := pdfgen.PublishManifest(ctx, manifest, pub, env.Logger); failed > 0 {
		env.Logger.Warn("publish phase incomplete", "failed", failed)
	}

	if err := manifest.Save(flags.manifest); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	if !flags.common.quiet {
		published := 0
		for _, e := range manifest.Entries {
			if e.Success && e.File != "" {
				published++
			}
		}
		fmt.Fprintf(env.Stdout, "%d published, %d failed\n", published, manifest.Failed)
	}

	if manifest.Failed > 0 {
		return fmt.Errorf("%w: %d entries failed", pdfgen.ErrPublish, manifest.Failed)
	}

	return nil
}
