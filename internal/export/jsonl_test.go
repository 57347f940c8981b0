package export

import (
	"encoding/json"
	"testing"
)

func TestAppendAndLines(t *testing.T) {
	sink, err := NewSink(t.TempDir())
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}

	if err := sink.Append(CRMNotesLog, map[string]string{"thread_id": "CE-1", "note": "first"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := sink.Append(CRMNotesLog, map[string]string{"thread_id": "CE-2", "note": "second"}); err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	lines, err := sink.Lines(CRMNotesLog)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	var rec map[string]string
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("line 2 is not valid JSON: %v", err)
	}
	if rec["thread_id"] != "CE-2" {
		t.Fatalf("record = %v", rec)
	}
}

func TestTruncate(t *testing.T) {
	sink, err := NewSink(t.TempDir())
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}
	if err := sink.Append(ApprovedSummariesLog, map[string]string{"a": "b"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := sink.Truncate(ApprovedSummariesLog, CRMNotesLog); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}

	for _, name := range []string{ApprovedSummariesLog, CRMNotesLog} {
		lines, err := sink.Lines(name)
		if err != nil {
			t.Fatalf("Lines(%s) failed: %v", name, err)
		}
		if len(lines) != 0 {
			t.Fatalf("%s not empty after truncate: %v", name, lines)
		}
	}
}

func TestLinesMissingFile(t *testing.T) {
	sink, err := NewSink(t.TempDir())
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}
	lines, err := sink.Lines("never_written.jsonl")
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if lines != nil {
		t.Fatalf("expected no lines, got %v", lines)
	}
}
