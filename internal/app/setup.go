package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/drivestow/drivestow/internal/config"
	"github.com/drivestow/drivestow/internal/hosting"
	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/vcs"
)

// InitRepo prepares a directory for offloading: a git repository is opened
// or created and a repo config seeded from global defaults is written.
func InitRepo(repoPath string, global *config.Config, logger logging.Logger) (*config.RepoConfig, error) {
	if _, err := vcs.OpenOrInit(repoPath, logger); err != nil {
		return nil, err
	}
	return config.LoadRepo(repoPath, global)
}

// RepoCreator creates hosted repositories. Satisfied by the GitHub client.
type RepoCreator interface {
	CreateRepository(ctx context.Context, req hosting.CreateRepositoryRequest) (*hosting.Repository, error)
}

// QuickSetupOptions shapes a one-shot bootstrap.
type QuickSetupOptions struct {
	Name        string
	Description string
	Private     bool
}

// QuickSetupResult reports what the bootstrap produced.
type QuickSetupResult struct {
	RepositoryURL string
	CommitHash    string
}

// QuickSetup bootstraps a fresh project in one step: the hosted repository
// is created, the local tree becomes a git repository wired to it, the
// repo config is written and committed.
func QuickSetup(ctx context.Context, repoPath string, global *config.Config, creator RepoCreator, opts QuickSetupOptions, logger logging.Logger) (*QuickSetupResult, error) {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	name := opts.Name
	if name == "" {
		name = filepath.Base(repoPath)
	}

	remote, err := creator.CreateRepository(ctx, hosting.CreateRepositoryRequest{
		Name:        name,
		Description: opts.Description,
		Private:     opts.Private,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create hosted repository: %w", err)
	}
	logger.Info("created hosted repository", logging.F("fullName", remote.FullName))

	repo, err := vcs.OpenOrInit(repoPath, logger)
	if err != nil {
		return nil, err
	}

	pushURL, err := hosting.AuthenticatedRemoteURL(remote.CloneURL, global.GitHub.Username, global.GitHub.Token)
	if err != nil {
		return nil, err
	}
	if err := repo.SetRemote(pushURL); err != nil {
		return nil, err
	}

	repoCfg, err := config.LoadRepo(repoPath, global)
	if err != nil {
		return nil, err
	}
	repoCfg.GitHub.RepositoryURL = remote.CloneURL
	if err := repoCfg.Save(repoPath); err != nil {
		return nil, err
	}

	author := global.GitHub.Username
	if author == "" {
		author = "drivestow"
	}
	email := author + "@users.noreply.github.com"
	if err := repo.ConfigureUser(author, email); err != nil {
		return nil, err
	}

	if err := repo.StageAll(); err != nil {
		return nil, err
	}
	hash, err := repo.Commit("Initial commit", author, email)
	if err != nil {
		logger.Warn("initial commit failed", logging.F("error", err.Error()))
		hash = ""
	}

	return &QuickSetupResult{
		RepositoryURL: remote.CloneURL,
		CommitHash:    hash,
	}, nil
}
