// Package ansible turns the JSON report of an `ansible-playbook --check` run
// into evidence records.
package ansible

import (
	"bytes"
	"crypto"
	_ "crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/in-toto/go-witness/cryptoutil"

	"github.com/complytime/complybeacon/evidencekit/internal/schema"
)

var (
	ErrNotFound  = errors.New("report not found")
	ErrMalformed = errors.New("malformed report")
	ErrNoPlays   = errors.New("no plays found in report")
)

// Report is the subset of the Ansible JSON callback output used to derive
// evidence.
type Report struct {
	Plays []Play `json:"plays"`

	// Source describes the file the report was loaded from.
	Source Source `json:"-"`
}

// Source identifies the raw report bytes.
type Source struct {
	Path   string
	Digest cryptoutil.DigestSet
}

type Play struct {
	Play  PlayInfo     `json:"play"`
	Tasks []TaskResult `json:"tasks"`
}

type PlayInfo struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type Task struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// TaskResult is the outcome of one task across all hosts of a play.
type TaskResult struct {
	Task    Task                  `json:"task"`
	Changed *bool                 `json:"changed,omitempty"`
	Diff    json.RawMessage       `json:"diff,omitempty"`
	Hosts   map[string]HostResult `json:"hosts,omitempty"`
}

type HostResult struct {
	Changed bool            `json:"changed"`
	Failed  bool            `json:"failed"`
	Skipped bool            `json:"skipped"`
	Diff    json.RawMessage `json:"diff,omitempty"`
}

// IsChanged reports whether the task would have changed the system. The
// task-level flag wins; without one any changed host counts.
func (t TaskResult) IsChanged() bool {
	if t.Changed != nil {
		return *t.Changed
	}
	for _, h := range t.Hosts {
		if h.Changed {
			return true
		}
	}
	return false
}

// DiffJSON returns the compact diff payload of the task, or nil when none was
// reported. Host diffs are consulted in host name order when the task carries
// no diff of its own.
func (t TaskResult) DiffJSON() []byte {
	if d := compactDiff(t.Diff); d != nil {
		return d
	}
	names := make([]string, 0, len(t.Hosts))
	for name := range t.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if d := compactDiff(t.Hosts[name].Diff); d != nil {
			return d
		}
	}
	return nil
}

func compactDiff(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil
	}
	if string(buf.Bytes()) == "null" {
		return nil
	}
	return buf.Bytes()
}

var validator = schema.MustLoad(schema.AnsibleCheckReport)

// Load reads and validates an Ansible check report.
func Load(path string) (*Report, error) {
	cleanedPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanedPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	report, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	report.Source.Path = path
	return report, nil
}

// Parse validates and decodes raw report bytes.
func Parse(data []byte) (*Report, error) {
	if err := validator.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(report.Plays) == 0 {
		return nil, ErrNoPlays
	}

	digest, err := cryptoutil.CalculateDigestSetFromBytes(data, []cryptoutil.DigestValue{{Hash: crypto.SHA256}})
	if err != nil {
		return nil, fmt.Errorf("computing report digest: %w", err)
	}
	report.Source.Digest = digest
	return &report, nil
}
