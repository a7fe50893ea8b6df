package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/drivestow/drivestow/internal/tracker"
)

// FileState describes one managed file's local condition.
type FileState string

const (
	// StateSynced means the local content matches the recorded hash.
	StateSynced FileState = "synced"
	// StateModified means the local content drifted from the record.
	StateModified FileState = "modified"
	// StateMissing means the file exists only remotely.
	StateMissing FileState = "missing"
	// StateUnknown means the record carries no hash to compare against.
	StateUnknown FileState = "unknown"
)

// StatusEntry pairs a managed file with its state.
type StatusEntry struct {
	Path   string
	State  FileState
	Record tracker.Record
}

// Status describes the repository's reconciliation state.
type Status struct {
	Managed    []StatusEntry
	Candidates []string
}

// Status reports every managed file's state plus the large files not yet
// offloaded. It performs no remote calls; the view is local-only.
func (a *App) Status(ctx context.Context) (*Status, error) {
	entries, err := a.tracker.EnumerateAll()
	if err != nil {
		return nil, err
	}

	status := &Status{}
	for _, entry := range entries {
		state := StateSynced
		if _, err := os.Stat(entry.Path); os.IsNotExist(err) {
			state = StateMissing
		} else if err != nil {
			return nil, err
		} else if entry.Record.Hash == "" {
			state = StateUnknown
		} else {
			changed, err := a.tracker.NeedsUpdate(entry.Path)
			if err != nil {
				return nil, err
			}
			if changed {
				state = StateModified
			}
		}
		status.Managed = append(status.Managed, StatusEntry{
			Path:   entry.Path,
			State:  state,
			Record: entry.Record,
		})
	}

	candidates, err := a.scanner.FindCandidates(a.repoPath, a.cfg.ThresholdBytes())
	if err != nil {
		return nil, err
	}
	for _, cand := range candidates {
		managed, err := a.tracker.IsManaged(cand.Path)
		if err != nil {
			return nil, err
		}
		if managed {
			continue
		}
		relPath, err := filepath.Rel(a.repoPath, cand.Path)
		if err != nil {
			return nil, err
		}
		status.Candidates = append(status.Candidates, filepath.ToSlash(relPath))
	}

	return status, nil
}

// List returns every managed file with its record, sorted by the tracker's
// traversal order.
func (a *App) List(ctx context.Context) ([]tracker.Entry, error) {
	return a.tracker.EnumerateAll()
}
