package pdfgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Template is a read-only, in-memory copy of a presentation archive. It is
// loaded once per run and shared across all rows; Substitute never mutates
// it, so concurrent per-row substitution cannot leak state between rows.
type Template struct {
	parts []templatePart
}

// templatePart is one file of the presentation archive, in original order.
type templatePart struct {
	name  string
	data  []byte
	slide bool
}

// isSlidePart reports whether an archive member is a slide content part.
// Relationship files under ppt/slides/_rels/ and notes slides carry no
// visible text runs worth substituting.
func isSlidePart(name string) bool {
	return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
}

// LoadTemplate parses a presentation (.pptx) archive from memory.
func LoadTemplate(data []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPresentation, err)
	}

	tpl := &Template{parts: make([]templatePart, 0, len(zr.File))}
	hasContentTypes := false
	hasSlides := false

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening part %s: %v", ErrNotPresentation, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		closeErr := rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading part %s: %v", ErrNotPresentation, f.Name, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("%w: closing part %s: %v", ErrNotPresentation, f.Name, closeErr)
		}

		slide := isSlidePart(f.Name)
		hasSlides = hasSlides || slide
		hasContentTypes = hasContentTypes || f.Name == "[Content_Types].xml"

		tpl.parts = append(tpl.parts, templatePart{name: f.Name, data: content, slide: slide})
	}

	if !hasContentTypes {
		return nil, fmt.Errorf("%w: missing [Content_Types].xml", ErrNotPresentation)
	}
	if !hasSlides {
		return nil, ErrEmptyTemplate
	}
	return tpl, nil
}

// LoadTemplateFile reads and parses a presentation file.
func LoadTemplateFile(path string) (*Template, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided template path
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return LoadTemplate(data)
}

// SlideCount returns the number of slide content parts.
func (t *Template) SlideCount() int {
	n := 0
	for _, p := range t.parts {
		if p.slide {
			n++
		}
	}
	return n
}

// Texts returns the decoded text of every run across all slides, in
// document order. Used by token extraction.
func (t *Template) Texts() []string {
	var texts []string
	for _, p := range t.parts {
		if p.slide {
			texts = append(texts, runTexts(p.data)...)
		}
	}
	return texts
}

// Substitute materializes a document instance for one row: a full structural
// copy of the archive with every occurrence of each validated token replaced
// by the row's value. Only run text changes; every other byte of the archive
// is copied verbatim.
//
// Fails if the row lacks a value for any validated token. Token extraction
// makes that unreachable in a normal run, but rows are checked defensively
// because they come from an external collaborator.
func (t *Template) Substitute(row Row, tokens TokenSet) ([]byte, error) {
	replacements := make([]string, 0, 2*len(tokens))
	for token := range tokens {
		value, ok := row.Value(token)
		if !ok {
			return nil, fmt.Errorf("%w: row %q has no value for token %s",
				ErrSubstitution, row.Filename, token)
		}
		replacements = append(replacements, token, value)
	}
	replacer := strings.NewReplacer(replacements...)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range t.parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("%w: creating part %s: %v", ErrSubstitution, p.name, err)
		}

		data := p.data
		if p.slide && len(tokens) > 0 {
			data, _ = forEachRun(p.data, func(text string) (string, bool) {
				replaced := replacer.Replace(text)
				return replaced, replaced != text
			})
		}

		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("%w: writing part %s: %v", ErrSubstitution, p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing archive: %v", ErrSubstitution, err)
	}

	return buf.Bytes(), nil
}
