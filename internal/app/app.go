// Package app orchestrates the offload workflow: finding large files,
// moving their content to the object store and rewriting repository
// metadata so the tree stays small and reproducible.
package app

import (
	"context"
	"strings"

	"github.com/drivestow/drivestow/internal/config"
	"github.com/drivestow/drivestow/internal/ignore"
	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/scan"
	"github.com/drivestow/drivestow/internal/store"
	"github.com/drivestow/drivestow/internal/tracker"
)

// ObjectStore moves file content to and from remote storage.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, relPath string) (*store.UploadResult, error)
	Download(ctx context.Context, remoteID, localPath string) (int64, error)
	Exists(ctx context.Context, remoteID string) (bool, error)
}

// Prompter answers yes/no questions during interactive runs.
type Prompter func(message string) bool

// Options tunes App behavior for one invocation.
type Options struct {
	// AssumeYes answers every prompt affirmatively.
	AssumeYes bool
	// Prompt is consulted for the ask policy. Nil means every question
	// is answered no.
	Prompt Prompter
}

// App wires the scanner, tracker, ignore file and object store together.
type App struct {
	repoPath string
	cfg      *config.RepoConfig
	tracker  *tracker.Tracker
	scanner  *scan.Scanner
	ignores  *ignore.File
	extra    []ignore.Rule
	objects  ObjectStore
	logger   logging.Logger
	opts     Options
}

// New creates an App for the repository at repoPath. The ignore file is
// loaded eagerly so every operation sees a consistent rule set.
func New(repoPath string, cfg *config.RepoConfig, objects ObjectStore, logger logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	ignores := ignore.NewFile(repoPath, logger)
	if err := ignores.Load(); err != nil {
		return nil, err
	}

	var extra []ignore.Rule
	if len(cfg.Settings.AdditionalPatterns) > 0 {
		extra = ignore.Parse(strings.Join(cfg.Settings.AdditionalPatterns, "\n"), logger)
	}

	return &App{
		repoPath: repoPath,
		cfg:      cfg,
		tracker:  tracker.New(repoPath, logger),
		scanner:  scan.New(logger),
		ignores:  ignores,
		extra:    extra,
		objects:  objects,
		logger:   logger,
		opts:     opts,
	}, nil
}

// isIgnored checks the repository ignore file plus the configured
// additional patterns.
func (a *App) isIgnored(relPath string) bool {
	if a.ignores.IsIgnored(relPath) {
		return true
	}
	return ignore.Match(a.extra, relPath)
}

// confirm resolves an interactive question, honoring AssumeYes.
func (a *App) confirm(message string) bool {
	if a.opts.AssumeYes {
		return true
	}
	if a.opts.Prompt == nil {
		return false
	}
	return a.opts.Prompt(message)
}
