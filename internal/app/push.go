package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/drivestow/drivestow/internal/config"
	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/tracker"
)

// PushResult summarizes one push run.
type PushResult struct {
	Uploaded []string
	Skipped  []string
}

// Push finds every large file and offloads the ones that need it. For each
// candidate the steps run in a fixed order: upload, record in the metadata
// store, then append the ignore rule. A crash between steps leaves the
// file still visible to the next run, which re-uploads rather than losing
// content. The first upload failure aborts the run.
func (a *App) Push(ctx context.Context) (*PushResult, error) {
	candidates, err := a.scanner.FindCandidates(a.repoPath, a.cfg.ThresholdBytes())
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	result := &PushResult{}
	for _, cand := range candidates {
		relPath, err := filepath.Rel(a.repoPath, cand.Path)
		if err != nil {
			return nil, err
		}
		relPath = filepath.ToSlash(relPath)

		managed, err := a.tracker.IsManaged(cand.Path)
		if err != nil {
			return nil, err
		}
		if managed {
			a.logger.Debug("already managed, skipping", logging.F("path", relPath))
			result.Skipped = append(result.Skipped, relPath)
			continue
		}

		if a.isIgnored(relPath) && !a.wantIgnoredFile(relPath) {
			a.logger.Info("ignored file left alone", logging.F("path", relPath))
			result.Skipped = append(result.Skipped, relPath)
			continue
		}

		if err := a.offload(ctx, cand.Path, relPath); err != nil {
			return result, fmt.Errorf("failed to offload %s: %w", relPath, err)
		}
		result.Uploaded = append(result.Uploaded, relPath)
	}

	return result, nil
}

// wantIgnoredFile applies the ignored-file policy to one candidate.
func (a *App) wantIgnoredFile(relPath string) bool {
	switch a.cfg.Settings.IgnoredFilePolicy {
	case config.PolicyManage:
		return true
	case config.PolicyAsk:
		return a.confirm(fmt.Sprintf("%s is already ignored; offload it anyway?", relPath))
	default:
		return false
	}
}

// offload moves one file's content to the object store and records it.
func (a *App) offload(ctx context.Context, localPath, relPath string) error {
	hash, err := tracker.HashFile(localPath)
	if err != nil {
		return err
	}

	uploaded, err := a.objects.Upload(ctx, localPath, relPath)
	if err != nil {
		return err
	}

	rec := tracker.Record{
		RemoteID:   uploaded.RemoteID,
		Hash:       hash,
		Size:       uploaded.Size,
		UploadedAt: time.Now().Unix(),
	}
	dir := filepath.Dir(localPath)
	if err := a.tracker.Add(dir, filepath.Base(localPath), rec); err != nil {
		return err
	}

	// Anchored so only this exact path is hidden from version control.
	if err := a.ignores.AddRule("/"+relPath, a.cfg.Settings.ManagedFilesMarker); err != nil {
		return err
	}

	a.logger.Info("offloaded file",
		logging.F("path", relPath),
		logging.F("remoteId", rec.RemoteID),
		logging.F("size", rec.Size),
	)
	return nil
}
