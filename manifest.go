package pdfgen

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/tinkertanker/googlepdfgen/internal/yamlutil"
)

// Stage identifies where in the pipeline a row succeeded or failed.
type Stage string

// Pipeline stages, in execution order.
const (
	StageSubstitute Stage = "substitute"
	StageRender     Stage = "render"
	StageNormalize  Stage = "normalize"
	StagePublish    Stage = "publish"
)

// Entry records the outcome of one row. Exactly one entry exists per input
// row, success or failure.
type Entry struct {
	Filename string `yaml:"filename"`
	RowIndex int    `yaml:"row"`
	Success  bool   `yaml:"success"`
	File     string `yaml:"file,omitempty"`   // published reference
	Output   string `yaml:"output,omitempty"` // local normalized PDF path
	Stage    Stage  `yaml:"stage,omitempty"`  // stage that failed
	Reason   string `yaml:"reason,omitempty"`
}

// Manifest is the per-row record of a full batch run. Entries are collected
// in completion order and sorted back to input order before the manifest is
// handed out; content never depends on execution order.
type Manifest struct {
	RunID     string    `yaml:"runId"`
	Started   time.Time `yaml:"started"`
	Finished  time.Time `yaml:"finished"`
	Total     int       `yaml:"total"`
	Succeeded int       `yaml:"succeeded"`
	Failed    int       `yaml:"failed"`
	Entries   []Entry   `yaml:"entries"`
}

// finalize restores input order and recomputes the counters.
func (m *Manifest) finalize() {
	sort.Slice(m.Entries, func(i, j int) bool {
		return m.Entries[i].RowIndex < m.Entries[j].RowIndex
	})
	m.Total = len(m.Entries)
	m.Succeeded = 0
	m.Failed = 0
	for _, e := range m.Entries {
		if e.Success {
			m.Succeeded++
		} else {
			m.Failed++
		}
	}
}

// Failures returns the failed entries, in input order.
func (m *Manifest) Failures() []Entry {
	var out []Entry
	for _, e := range m.Entries {
		if !e.Success {
			out = append(out, e)
		}
	}
	return out
}

// Save writes the manifest as YAML.
func (m *Manifest) Save(path string) error {
	data, err := yamlutil.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	// #nosec G306 -- the manifest is a report meant to be readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by Save. Used by the separate
// publish phase.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided manifest path
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yamlutil.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
