// Package export appends records to JSON-lines output files: one record per
// line, append-only, rewritten only by an explicit truncate.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log file names under the output directory.
const (
	ApprovedSummariesLog = "approved_summaries.jsonl"
	CRMNotesLog          = "crm_notes.jsonl"
)

// Sink writes JSONL records under one output directory. Appends are
// serialized so concurrent approvals cannot interleave lines.
type Sink struct {
	dir string
	mu  sync.Mutex
}

// NewSink creates the output directory if needed.
func NewSink(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &Sink{dir: dir}, nil
}

// Append marshals the record and writes it as one line to the named log.
func (s *Sink) Append(name string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling export record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending to %s: %w", name, err)
	}
	return nil
}

// Truncate empties the named logs, creating them if absent.
func (s *Sink) Truncate(names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		if err := os.WriteFile(filepath.Join(s.dir, name), nil, 0644); err != nil {
			return fmt.Errorf("truncating %s: %w", name, err)
		}
	}
	return nil
}

// Lines returns the current records of the named log, one raw JSON string
// per line. A missing file reads as empty.
func (s *Sink) Lines(name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
