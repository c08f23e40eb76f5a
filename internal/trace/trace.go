// Package trace records one JSON line per solver iteration.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is a single line of trace.jsonl.
type Entry struct {
	// Run identifies the solver run that produced this entry
	Run string `json:"run"`

	// Iteration is the 1-based iteration number; 0 is the initial point
	Iteration int `json:"iteration"`

	// Objective is the aggregate objective value after the iteration
	Objective float64 `json:"objective"`

	// Step is the step size used by the iteration
	Step float64 `json:"step"`

	// Timestamp records when the entry was written
	Timestamp time.Time `json:"timestamp"`

	// Sol is the solution after the iteration (optional, can be nil to save space)
	Sol []float64 `json:"sol,omitempty"`
}

// Writer writes trace entries of one run to a JSONL file.
// It uses buffered I/O and is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
	run    string
}

// NewWriter creates <baseDir>/runs/<run>/trace.jsonl for a new run with a
// random ID.
func NewWriter(baseDir string) (*Writer, error) {
	return NewWriterForRun(baseDir, uuid.NewString())
}

// NewWriterForRun creates or truncates the trace file of the given run.
func NewWriterForRun(baseDir, run string) (*Writer, error) {
	runDir := filepath.Join(baseDir, "runs", run)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	path := filepath.Join(runDir, "trace.jsonl")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	return &Writer{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
		run:    run,
	}, nil
}

// Run returns the run ID stamped on every entry.
func (w *Writer) Run() string {
	return w.run
}

// Path returns the filesystem path to the trace file.
func (w *Writer) Path() string {
	return w.path
}

// Write appends an entry. Missing Run and Timestamp fields are filled in.
func (w *Writer) Write(entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if entry.Run == "" {
		entry.Run = w.run
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal trace entry: %w", err)
	}
	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write trace entry: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Flush writes buffered entries and syncs the file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace writer: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync trace file: %w", err)
	}
	return nil
}

// Close flushes buffered data and closes the trace file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}

// Reader reads trace entries from a JSONL file.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewReader opens the trace of the given run.
func NewReader(baseDir, run string) (*Reader, error) {
	path := filepath.Join(baseDir, "runs", run, "trace.jsonl")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	// Lines carrying solutions can be long.
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	return &Reader{file: file, scanner: scanner}, nil
}

// Read returns the next entry, or io.EOF when the trace is exhausted.
func (r *Reader) Read() (*Entry, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to scan trace line: %w", err)
		}
		return nil, io.EOF
	}

	var entry Entry
	if err := json.Unmarshal(r.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace entry: %w", err)
	}
	return &entry, nil
}

// ReadAll reads all remaining entries.
func (r *Reader) ReadAll() ([]Entry, error) {
	var entries []Entry
	for {
		entry, err := r.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
}

// Close closes the trace file.
func (r *Reader) Close() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}
