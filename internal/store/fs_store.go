package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore implements Store on the filesystem. Results are stored as
// <baseDir>/runs/<run>/result.json, next to the run's trace.jsonl.
//
// Writes use temp file + rename, so no locks are needed.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem store, creating baseDir if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (fs *FSStore) runDir(run string) string {
	return filepath.Join(fs.baseDir, "runs", run)
}

func (fs *FSStore) resultPath(run string) string {
	return filepath.Join(fs.runDir(run), "result.json")
}

// SaveResult atomically saves the result of a run.
func (fs *FSStore) SaveResult(run string, result *Result) error {
	if run == "" {
		return fmt.Errorf("run cannot be empty")
	}
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}
	if err := result.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid result: %w", err)
	}

	if err := os.MkdirAll(fs.runDir(run), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	finalPath := fs.resultPath(run)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp result file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename result file: %w", err)
	}

	slog.Debug("Result saved", "run", run, "path", finalPath)
	return nil
}

// LoadResult retrieves the result of a run.
func (fs *FSStore) LoadResult(run string) (*Result, error) {
	if run == "" {
		return nil, fmt.Errorf("run cannot be empty")
	}

	data, err := os.ReadFile(fs.resultPath(run))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Run: run}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize result: %w", err)
	}
	return &result, nil
}

// ListResults returns metadata for every run with a result. Runs holding
// only a trace and unreadable results are skipped.
func (fs *FSStore) ListResults() ([]ResultInfo, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	entries, err := os.ReadDir(runsDir)
	if os.IsNotExist(err) {
		return []ResultInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	infos := []ResultInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run := entry.Name()
		if _, err := os.Stat(fs.resultPath(run)); os.IsNotExist(err) {
			continue
		}

		result, err := fs.LoadResult(run)
		if err != nil {
			slog.Warn("Failed to load result for listing", "run", run, "error", err)
			continue
		}
		infos = append(infos, result.ToInfo())
	}

	slog.Debug("Listed results", "count", len(infos))
	return infos, nil
}

// DeleteRun removes the run directory with its result and trace.
func (fs *FSStore) DeleteRun(run string) error {
	if run == "" {
		return fmt.Errorf("run cannot be empty")
	}

	dir := fs.runDir(run)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{Run: run}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("Run deleted", "run", run, "path", dir)
	return nil
}
