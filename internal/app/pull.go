package app

import (
	"context"
	"fmt"
	"os"

	"github.com/drivestow/drivestow/internal/logging"
)

// PullResult summarizes one pull run.
type PullResult struct {
	Downloaded []string
	Present    []string
}

// Pull restores every recorded file that is missing locally. Files already
// on disk are left untouched, even when their content drifted; push is the
// side that reconciles local changes.
func (a *App) Pull(ctx context.Context) (*PullResult, error) {
	entries, err := a.tracker.EnumerateAll()
	if err != nil {
		return nil, err
	}

	result := &PullResult{}
	for _, entry := range entries {
		if _, err := os.Stat(entry.Path); err == nil {
			result.Present = append(result.Present, entry.Path)
			continue
		} else if !os.IsNotExist(err) {
			return result, err
		}

		if entry.Record.RemoteID == "" {
			a.logger.Warn("record has no remote ID, cannot restore", logging.F("path", entry.Path))
			continue
		}

		present, err := a.objects.Exists(ctx, entry.Record.RemoteID)
		if err != nil {
			return result, fmt.Errorf("failed to check remote for %s: %w", entry.Path, err)
		}
		if !present {
			a.logger.Warn("remote object is gone, cannot restore",
				logging.F("path", entry.Path),
				logging.F("remoteId", entry.Record.RemoteID),
			)
			continue
		}

		written, err := a.objects.Download(ctx, entry.Record.RemoteID, entry.Path)
		if err != nil {
			return result, fmt.Errorf("failed to restore %s: %w", entry.Path, err)
		}
		a.logger.Info("restored file",
			logging.F("path", entry.Path),
			logging.F("remoteId", entry.Record.RemoteID),
			logging.F("bytes", written),
		)
		result.Downloaded = append(result.Downloaded, entry.Path)
	}

	return result, nil
}

// SyncResult combines the results of a full reconciliation.
type SyncResult struct {
	Push *PushResult
	Pull *PullResult
}

// Sync pushes local large files first, then pulls missing ones. Pull only
// runs once push has completed; a half-pushed tree is never the base for
// restore decisions.
func (a *App) Sync(ctx context.Context) (*SyncResult, error) {
	pushed, err := a.Push(ctx)
	if err != nil {
		return &SyncResult{Push: pushed}, err
	}

	pulled, err := a.Pull(ctx)
	return &SyncResult{Push: pushed, Pull: pulled}, err
}
