// Package store moves bytes between the pipeline and storage locations.
//
// Locations are given in afs notation: plain filesystem paths work as-is, and
// scheme-prefixed URLs (file://, s3://, gs://, http://) select the matching
// backend. The pipeline itself stays agnostic of where templates come from
// and where outputs end up.
package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	pdfgen "github.com/tinkertanker/googlepdfgen"
)

// Service publishes normalized PDFs to an output location.
type Service struct {
	fs       afs.Service
	location string
}

// Compile-time interface check.
var _ pdfgen.Publisher = (*Service)(nil)

// New creates a publisher rooted at the output location.
func New(location string) *Service {
	return &Service{fs: afs.New(), location: location}
}

// Publish uploads one PDF under its filename and returns the destination
// location as the reference recorded in the manifest.
func (s *Service) Publish(ctx context.Context, name string, pdf []byte) (string, error) {
	dest := url.Join(s.location, name)
	if err := s.fs.Upload(ctx, dest, 0o644, bytes.NewReader(pdf)); err != nil {
		return "", fmt.Errorf("uploading %s: %w", dest, err)
	}
	return dest, nil
}

// FetchTemplate downloads the template from a path or URL.
func FetchTemplate(ctx context.Context, location string) ([]byte, error) {
	data, err := afs.New().DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("fetching template %s: %w", location, err)
	}
	return data, nil
}
