// Package vcs wraps the git operations drivestow needs: opening or
// creating a repository, staging, committing and remote setup.
package vcs

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/drivestow/drivestow/internal/logging"
)

// DefaultRemoteName is the remote used for pushes.
const DefaultRemoteName = "origin"

// Repo wraps a git repository and its worktree.
type Repo struct {
	path   string
	repo   *git.Repository
	logger logging.Logger
}

// Open opens an existing repository at path.
func Open(path string, logger logging.Logger) (*Repo, error) {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("no git repository at %s", path)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return &Repo{path: path, repo: repo, logger: logger}, nil
}

// Init creates a new repository at path.
func Init(path string, logger logging.Logger) (*Repo, error) {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}
	logger.Info("initialized git repository", logging.F("path", path))
	return &Repo{path: path, repo: repo, logger: logger}, nil
}

// OpenOrInit opens the repository at path, creating one when absent.
func OpenOrInit(path string, logger logging.Logger) (*Repo, error) {
	repo, err := Open(path, logger)
	if err == nil {
		return repo, nil
	}
	return Init(path, logger)
}

// Path returns the worktree root.
func (r *Repo) Path() string {
	return r.path
}

// Stage adds a path (file or directory, relative to the worktree root) to
// the index.
func (r *Repo) Stage(relPath string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := wt.Add(relPath); err != nil {
		return fmt.Errorf("failed to stage %s: %w", relPath, err)
	}
	return nil
}

// StageAll adds every change in the worktree to the index.
func (r *Repo) StageAll() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit records the staged changes. Committing with a clean index returns
// an error from go-git, which callers may treat as nothing-to-do.
func (r *Repo) Commit(message, authorName, authorEmail string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", err
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Info("created commit", logging.F("hash", hash.String()), logging.F("message", message))
	return hash.String(), nil
}

// IsClean reports whether the worktree has no uncommitted changes.
func (r *Repo) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	return status.IsClean(), nil
}

// SetRemote points the default remote at url, replacing any existing
// remote of the same name.
func (r *Repo) SetRemote(url string) error {
	if _, err := r.repo.Remote(DefaultRemoteName); err == nil {
		if err := r.repo.DeleteRemote(DefaultRemoteName); err != nil {
			return fmt.Errorf("failed to replace remote: %w", err)
		}
	}

	_, err := r.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: DefaultRemoteName,
		URLs: []string{url},
	})
	if err != nil {
		return fmt.Errorf("failed to set remote: %w", err)
	}
	return nil
}

// RemoteURL returns the default remote's first URL, or empty when no
// remote is configured.
func (r *Repo) RemoteURL() string {
	remote, err := r.repo.Remote(DefaultRemoteName)
	if err != nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// ConfigureUser sets the repository-local commit identity.
func (r *Repo) ConfigureUser(name, email string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return err
	}
	cfg.User.Name = name
	cfg.User.Email = email
	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to set user config: %w", err)
	}
	return nil
}

// Push updates the default remote.
func (r *Repo) Push() error {
	err := r.repo.Push(&git.PushOptions{RemoteName: DefaultRemoteName})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}
