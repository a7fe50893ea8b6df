package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drivestow/drivestow/internal/utils"
)

// RepoGitHub holds the repository's hosting linkage
type RepoGitHub struct {
	RepositoryURL string `json:"repositoryUrl"`
	Branch        string `json:"branch"`
}

// RepoDrive holds the repository's Drive folder linkage
type RepoDrive struct {
	FolderID string `json:"folderId"`
}

// RepoSettings holds per-repository behavioral overrides
type RepoSettings struct {
	ThresholdMB        int64      `json:"largeFileThresholdMb"`
	AutoSync           bool       `json:"autoSync"`
	AdditionalPatterns []string   `json:"additionalIgnorePatterns"`
	IgnoredFilePolicy  SyncPolicy `json:"ignoredFilePolicy"`
	ManagedFilesMarker string     `json:"managedFilesMarker"`
}

// RepoConfig is the per-repository configuration stored in .drivestow.json
// at the tree root.
type RepoConfig struct {
	GitHub   RepoGitHub   `json:"github"`
	Drive    RepoDrive    `json:"drive"`
	Settings RepoSettings `json:"settings"`
}

// NewRepoConfig creates a repo config inheriting defaults from the global one
func NewRepoConfig(global *Config) *RepoConfig {
	return &RepoConfig{
		GitHub: RepoGitHub{
			Branch: "main",
		},
		Settings: RepoSettings{
			ThresholdMB:        global.Settings.ThresholdMB,
			AutoSync:           true,
			AdditionalPatterns: []string{"*.tmp", "*.log"},
			IgnoredFilePolicy:  global.Settings.IgnoredFilePolicy,
			ManagedFilesMarker: global.Settings.ManagedFilesMarker,
		},
	}
}

// RepoConfigPath returns the config file path for a repository
func RepoConfigPath(repoPath string) string {
	return filepath.Join(repoPath, utils.RepoConfigFileName)
}

// LoadRepo loads the repository configuration, creating one from global
// defaults when none exists yet.
func LoadRepo(repoPath string, global *Config) (*RepoConfig, error) {
	configPath := RepoConfigPath(repoPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := NewRepoConfig(global)
			if err := cfg.Save(repoPath); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read repo config: %w", err)
	}

	cfg := NewRepoConfig(global)
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid repo config: %w", err)
	}

	return cfg, nil
}

// Save saves the repository configuration
func (c *RepoConfig) Save(repoPath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal repo config: %w", err)
	}

	if err := os.WriteFile(RepoConfigPath(repoPath), data, 0644); err != nil {
		return fmt.Errorf("failed to write repo config: %w", err)
	}

	return nil
}

// Validate validates the repository configuration
func (c *RepoConfig) Validate() error {
	if c.Settings.ThresholdMB <= 0 {
		return fmt.Errorf("large file threshold must be positive, got %d", c.Settings.ThresholdMB)
	}
	if _, err := ParsePolicy(string(c.Settings.IgnoredFilePolicy)); err != nil {
		return err
	}
	return nil
}

// ThresholdBytes returns the large-file threshold in bytes
func (c *RepoConfig) ThresholdBytes() int64 {
	return c.Settings.ThresholdMB * utils.BytesPerMB
}
