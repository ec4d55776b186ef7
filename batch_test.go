package pdfgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// Fake pipeline stages for batch tests.

type fakeRenderer struct {
	mu      sync.Mutex
	failFor map[string]error // output base name -> error
	calls   int
}

func (f *fakeRenderer) Render(ctx context.Context, instancePath, scratchDir string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	base := strings.TrimSuffix(filepath.Base(instancePath), filepath.Ext(instancePath))
	if err, ok := f.failFor[base]; ok {
		return "", err
	}
	out := filepath.Join(scratchDir, base+".pdf")
	if err := os.WriteFile(out, minimalPDF(), 0o600); err != nil {
		return "", err
	}
	return out, nil
}

type fakeNormalizer struct {
	failFor map[string]error
}

func (f *fakeNormalizer) Normalize(ctx context.Context, inputPath, outputPath string) error {
	base := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	if err, ok := f.failFor[base]; ok {
		return err
	}
	return os.WriteFile(outputPath, minimalPDF(), 0o644)
}

// batchFixture bundles the pieces every batch test needs.
func batchFixture(t *testing.T, opts ...Option) (*Service, *Template, TokenSet, string) {
	t.Helper()

	tpl := mustLoad(t, buildPresentation(t, []string{"Hello <name>"}))
	tokens := TokenSet{"<name>": {}}

	base := []Option{
		WithRenderer(&fakeRenderer{}),
		WithNormalizer(&fakeNormalizer{}),
	}
	svc := New(append(base, opts...)...)
	return svc, tpl, tokens, t.TempDir()
}

// makeRows builds n rows named row-0 .. row-(n-1).
func makeRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{
			Index:    i,
			Filename: fmt.Sprintf("row-%d", i),
			Values:   map[string]string{"<name>": fmt.Sprintf("person %d", i)},
		}
	}
	return rows
}

func TestRun_AllRowsSucceed(t *testing.T) {
	svc, tpl, tokens, outDir := batchFixture(t)
	rows := makeRows(3)

	m := svc.Run(context.Background(), tpl, rows, tokens, outDir)

	if m.Total != 3 || m.Succeeded != 3 || m.Failed != 0 {
		t.Fatalf("counters = %d/%d/%d, want 3/3/0", m.Total, m.Succeeded, m.Failed)
	}
	if m.RunID == "" {
		t.Error("RunID is empty")
	}
	for _, e := range m.Entries {
		if e.Output == "" {
			t.Errorf("entry %s has no output path", e.Filename)
			continue
		}
		if _, err := os.Stat(e.Output); err != nil {
			t.Errorf("output for %s missing: %v", e.Filename, err)
		}
	}
}

func TestRun_OneEntryPerRow(t *testing.T) {
	svc, tpl, tokens, outDir := batchFixture(t, WithWorkers(4))
	rows := makeRows(10)

	m := svc.Run(context.Background(), tpl, rows, tokens, outDir)

	if len(m.Entries) != len(rows) {
		t.Fatalf("len(Entries) = %d, want %d", len(m.Entries), len(rows))
	}
	seen := map[int]bool{}
	for _, e := range m.Entries {
		if seen[e.RowIndex] {
			t.Errorf("duplicate entry for row %d", e.RowIndex)
		}
		seen[e.RowIndex] = true
	}
}

func TestRun_EntriesInInputOrder(t *testing.T) {
	svc, tpl, tokens, outDir := batchFixture(t, WithWorkers(8))
	rows := makeRows(16)

	m := svc.Run(context.Background(), tpl, rows, tokens, outDir)

	for i, e := range m.Entries {
		if e.RowIndex != i {
			t.Fatalf("Entries[%d].RowIndex = %d, want %d (input order)", i, e.RowIndex, i)
		}
	}
}

func TestRun_RenderFailureIsContained(t *testing.T) {
	renderer := &fakeRenderer{failFor: map[string]error{
		"row-1": fmt.Errorf("%w: renderer crashed", ErrRenderProcess),
	}}
	svc, tpl, tokens, outDir := batchFixture(t, WithRenderer(renderer))
	rows := makeRows(3)

	m := svc.Run(context.Background(), tpl, rows, tokens, outDir)

	if m.Succeeded != 2 || m.Failed != 1 {
		t.Fatalf("counters = %d/%d, want 2 succeeded 1 failed", m.Succeeded, m.Failed)
	}
	failed := m.Failures()[0]
	if failed.Filename != "row-1" || failed.Stage != StageRender {
		t.Errorf("failure = %+v, want row-1 at render stage", failed)
	}
	if failed.Reason == "" {
		t.Error("failure reason is empty")
	}
	if _, err := os.Stat(filepath.Join(outDir, "row-1.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed row left an output file behind")
	}
}

func TestRun_NormalizeFailureIsContained(t *testing.T) {
	normalizer := &fakeNormalizer{failFor: map[string]error{
		"row-0": fmt.Errorf("%w: broken structure", ErrNormalize),
	}}
	svc, tpl, tokens, outDir := batchFixture(t, WithNormalizer(normalizer))
	rows := makeRows(2)

	m := svc.Run(context.Background(), tpl, rows, tokens, outDir)

	if m.Succeeded != 1 || m.Failed != 1 {
		t.Fatalf("counters = %d/%d, want 1 succeeded 1 failed", m.Succeeded, m.Failed)
	}
	if got := m.Failures()[0].Stage; got != StageNormalize {
		t.Errorf("failure stage = %s, want %s", got, StageNormalize)
	}
}

func TestRun_EmptyRows(t *testing.T) {
	svc, tpl, tokens, outDir := batchFixture(t)

	m := svc.Run(context.Background(), tpl, nil, tokens, outDir)

	if m.Total != 0 || len(m.Entries) != 0 {
		t.Errorf("manifest = %+v, want empty", m)
	}
}

func TestRun_MissingFilename(t *testing.T) {
	svc, tpl, tokens, outDir := batchFixture(t)
	rows := []Row{{Index: 0, Filename: "", Values: map[string]string{"<name>": "x"}}}

	m := svc.Run(context.Background(), tpl, rows, tokens, outDir)

	if m.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", m.Failed)
	}
	e := m.Entries[0]
	if e.Stage != StageSubstitute || !strings.Contains(e.Reason, ErrMissingFilename.Error()) {
		t.Errorf("entry = %+v, want substitute failure with missing filename", e)
	}
}

func TestRun_FilenameWithPathSeparator(t *testing.T) {
	svc, tpl, tokens, outDir := batchFixture(t)
	rows := []Row{{Index: 0, Filename: "../escape", Values: map[string]string{"<name>": "x"}}}

	m := svc.Run(context.Background(), tpl, rows, tokens, outDir)

	if m.Failed != 1 || m.Entries[0].Stage != StageSubstitute {
		t.Errorf("entries = %+v, want one substitute failure", m.Entries)
	}
	if _, err := os.Stat(filepath.Join(outDir, "..", "escape.pdf")); err == nil {
		t.Error("row escaped the output directory")
	}
}

func TestRun_CanceledContext(t *testing.T) {
	svc, tpl, tokens, outDir := batchFixture(t)
	rows := makeRows(5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := svc.Run(ctx, tpl, rows, tokens, outDir)

	if m.Total != 5 || m.Failed != 5 {
		t.Fatalf("counters = %d total %d failed, want 5/5", m.Total, m.Failed)
	}
	for _, e := range m.Entries {
		if !strings.Contains(e.Reason, context.Canceled.Error()) {
			t.Errorf("entry %s reason = %q, want context cancellation", e.Filename, e.Reason)
		}
	}
}

func TestResolveWorkers(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    func(got int) bool
	}{
		{"explicit value", 3, func(got int) bool { return got == 3 }},
		{"explicit above cap honored", 12, func(got int) bool { return got == 12 }},
		{"auto stays within bounds", 0, func(got int) bool { return got >= MinWorkers && got <= MaxWorkers }},
		{"negative treated as auto", -1, func(got int) bool { return got >= MinWorkers && got <= MaxWorkers }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveWorkers(tt.workers); !tt.want(got) {
				t.Errorf("ResolveWorkers(%d) = %d", tt.workers, got)
			}
		})
	}
}

// fakePublisher records uploads and can fail selected names.
type fakePublisher struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	failFor  map[string]error
	location string
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{uploads: map[string][]byte{}, location: "mem://bucket"}
}

func (p *fakePublisher) Publish(ctx context.Context, name string, pdf []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failFor[name]; ok {
		return "", err
	}
	p.uploads[name] = pdf
	return p.location + "/" + name, nil
}

// publishableManifest builds a manifest whose successful entries point to
// real files on disk.
func publishableManifest(t *testing.T, names ...string) *Manifest {
	t.Helper()
	dir := t.TempDir()

	m := &Manifest{RunID: "test-run"}
	for i, name := range names {
		path := filepath.Join(dir, name+".pdf")
		if err := os.WriteFile(path, minimalPDF(), 0o600); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
		m.Entries = append(m.Entries, Entry{
			Filename: name, RowIndex: i, Success: true, Output: path,
		})
	}
	m.finalize()
	return m
}

func TestPublishManifest_AllPublished(t *testing.T) {
	m := publishableManifest(t, "a", "b")
	pub := newFakePublisher()

	failed := PublishManifest(context.Background(), m, pub, nil)

	if failed != 0 {
		t.Fatalf("failed = %d, want 0", failed)
	}
	for _, e := range m.Entries {
		if e.File == "" || !strings.HasPrefix(e.File, "mem://bucket/") {
			t.Errorf("entry %s File = %q, want published reference", e.Filename, e.File)
		}
	}
	if len(pub.uploads) != 2 {
		t.Errorf("uploads = %d, want 2", len(pub.uploads))
	}
}

func TestPublishManifest_FailureFlipsEntry(t *testing.T) {
	m := publishableManifest(t, "a", "b")
	pub := newFakePublisher()
	pub.failFor = map[string]error{"b.pdf": errors.New("upload refused")}

	failed := PublishManifest(context.Background(), m, pub, slog.New(slog.DiscardHandler))

	if failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	if m.Succeeded != 1 || m.Failed != 1 {
		t.Errorf("counters = %d/%d, want 1/1", m.Succeeded, m.Failed)
	}
	e := m.Entries[1]
	if e.Success || e.Stage != StagePublish || !strings.Contains(e.Reason, "upload refused") {
		t.Errorf("entry = %+v, want publish failure", e)
	}
	// The other entry keeps its reference.
	if m.Entries[0].File == "" {
		t.Error("unrelated entry lost its published reference")
	}
}

func TestPublishManifest_RetriesEarlierUploadFailures(t *testing.T) {
	m := publishableManifest(t, "a", "b")
	pub := newFakePublisher()
	pub.failFor = map[string]error{"a.pdf": errors.New("bucket unreachable")}

	if failed := PublishManifest(context.Background(), m, pub, nil); failed != 1 {
		t.Fatalf("first pass failed = %d, want 1", failed)
	}
	if e := m.Entries[0]; e.Success || e.Stage != StagePublish {
		t.Fatalf("entry after failed upload = %+v, want publish failure", e)
	}

	// A later pass against a reachable destination picks the entry up again.
	pub.failFor = nil
	if failed := PublishManifest(context.Background(), m, pub, nil); failed != 0 {
		t.Fatalf("second pass failed = %d, want 0", failed)
	}

	e := m.Entries[0]
	if !e.Success || e.Stage != "" || e.Reason != "" {
		t.Errorf("retried entry = %+v, want restored to success", e)
	}
	if !strings.HasPrefix(e.File, "mem://bucket/") {
		t.Errorf("retried entry File = %q, want published reference", e.File)
	}
	if _, ok := pub.uploads["a.pdf"]; !ok {
		t.Error("a.pdf never uploaded on the second pass")
	}
	if m.Succeeded != 2 || m.Failed != 0 {
		t.Errorf("counters = %d/%d, want 2/0", m.Succeeded, m.Failed)
	}
}

func TestPublishManifest_SkipsFailedRows(t *testing.T) {
	m := publishableManifest(t, "a")
	m.Entries = append(m.Entries, Entry{
		Filename: "broken", RowIndex: 1, Success: false, Stage: StageRender, Reason: "crashed",
	})
	m.finalize()

	pub := newFakePublisher()
	failed := PublishManifest(context.Background(), m, pub, nil)

	if failed != 0 {
		t.Fatalf("failed = %d, want 0", failed)
	}
	if len(pub.uploads) != 1 {
		t.Errorf("uploads = %d, want 1 (failed rows are not published)", len(pub.uploads))
	}
}

func TestPublishManifest_MissingOutputFile(t *testing.T) {
	m := &Manifest{Entries: []Entry{
		{Filename: "gone", RowIndex: 0, Success: true, Output: filepath.Join(t.TempDir(), "gone.pdf")},
	}}
	m.finalize()

	failed := PublishManifest(context.Background(), m, newFakePublisher(), nil)

	if failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	if e := m.Entries[0]; e.Success || e.Stage != StagePublish {
		t.Errorf("entry = %+v, want publish failure", e)
	}
}

func TestPublishManifest_CanceledContext(t *testing.T) {
	m := publishableManifest(t, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failed := PublishManifest(ctx, m, newFakePublisher(), nil)

	if failed != 2 {
		t.Fatalf("failed = %d, want 2", failed)
	}
	for _, e := range m.Entries {
		if e.Success || e.Stage != StagePublish {
			t.Errorf("entry %s = %+v, want publish failure", e.Filename, e)
		}
	}
}
