package trace

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriterAndReader(t *testing.T) {
	tmpDir := t.TempDir()

	writer, err := NewWriterForRun(tmpDir, "run-123")
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	entries := []Entry{
		{Iteration: 0, Objective: 63, Step: 0.5},
		{Iteration: 1, Objective: 15.75, Step: 0.5},
		{Iteration: 2, Objective: 3.9375, Step: 0.25, Sol: []float64{1, 2, 3}},
	}
	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	tracePath := filepath.Join(tmpDir, "runs", "run-123", "trace.jsonl")
	if writer.Path() != tracePath {
		t.Errorf("Path mismatch: got %s, want %s", writer.Path(), tracePath)
	}
	if _, err := os.Stat(tracePath); os.IsNotExist(err) {
		t.Fatalf("Trace file not created: %s", tracePath)
	}

	reader, err := NewReader(tmpDir, "run-123")
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	got, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("Expected %d entries, got %d", len(entries), len(got))
	}

	for i, entry := range got {
		if entry.Run != "run-123" {
			t.Errorf("Entry %d: expected run run-123, got %q", i, entry.Run)
		}
		if entry.Iteration != entries[i].Iteration {
			t.Errorf("Entry %d: expected iteration %d, got %d", i, entries[i].Iteration, entry.Iteration)
		}
		if entry.Objective != entries[i].Objective {
			t.Errorf("Entry %d: expected objective %f, got %f", i, entries[i].Objective, entry.Objective)
		}
		if entry.Step != entries[i].Step {
			t.Errorf("Entry %d: expected step %f, got %f", i, entries[i].Step, entry.Step)
		}
		if len(entry.Sol) != len(entries[i].Sol) {
			t.Errorf("Entry %d: expected %d solution values, got %d", i, len(entries[i].Sol), len(entry.Sol))
		}
		if entry.Timestamp.IsZero() {
			t.Errorf("Entry %d: timestamp not filled in", i)
		}
	}
}

func TestNewWriterAssignsRunID(t *testing.T) {
	tmpDir := t.TempDir()

	w1, err := NewWriter(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	defer w1.Close()
	w2, err := NewWriter(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	defer w2.Close()

	if w1.Run() == "" || w1.Run() == w2.Run() {
		t.Errorf("Expected distinct run IDs, got %q and %q", w1.Run(), w2.Run())
	}
}

func TestWriterKeepsExplicitFields(t *testing.T) {
	tmpDir := t.TempDir()
	writer, err := NewWriterForRun(tmpDir, "explicit")
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := writer.Write(Entry{Run: "other", Iteration: 7, Timestamp: ts}); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}
	writer.Close()

	reader, err := NewReader(tmpDir, "explicit")
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	entry, err := reader.Read()
	if err != nil {
		t.Fatalf("Failed to read entry: %v", err)
	}
	if entry.Run != "other" {
		t.Errorf("Run overwritten: got %q", entry.Run)
	}
	if !entry.Timestamp.Equal(ts) {
		t.Errorf("Timestamp overwritten: got %v, want %v", entry.Timestamp, ts)
	}
}

func TestReaderMissingRun(t *testing.T) {
	if _, err := NewReader(t.TempDir(), "missing"); err == nil {
		t.Error("Expected error for missing trace")
	}
}
