// Package config loads and persists drivestow configuration.
//
// Two layers exist: a global config in ~/.drivestow/config.json shared by
// every repository, and a per-repository .drivestow.json colocated with the
// tree it describes.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// ConfigFileName is the name of the global config file
	ConfigFileName = "config.json"
	// ConfigDirName is the directory where global state is stored
	ConfigDirName = ".drivestow"
	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "DRIVESTOW_"
)

// AuthType selects the Drive authentication method
type AuthType string

const (
	// AuthTypeOAuth is interactive user OAuth, for collaboration
	AuthTypeOAuth AuthType = "oauth"
	// AuthTypeServiceAccount is non-interactive JWT auth, for automation
	AuthTypeServiceAccount AuthType = "service_account"
)

// SyncPolicy governs what happens when a large file is already covered by
// a pre-existing ignore rule at discovery time.
type SyncPolicy string

const (
	// PolicySkip leaves ignored large files alone
	PolicySkip SyncPolicy = "skip"
	// PolicyManage offloads ignored large files like any other candidate
	PolicyManage SyncPolicy = "manage"
	// PolicyAsk prompts the operator per file, defaulting to skip
	PolicyAsk SyncPolicy = "ask"
)

// ParsePolicy validates a policy string
func ParsePolicy(value string) (SyncPolicy, error) {
	switch SyncPolicy(value) {
	case PolicySkip, PolicyManage, PolicyAsk:
		return SyncPolicy(value), nil
	default:
		return "", fmt.Errorf("invalid sync policy %q (want skip, manage or ask)", value)
	}
}

// GitHubConfig holds repository-hosting credentials
type GitHubConfig struct {
	Username          string `json:"username"`
	Token             string `json:"token"`
	DefaultVisibility string `json:"defaultVisibility"`
}

// DriveConfig holds object-store credentials and the root folder
type DriveConfig struct {
	AuthType           AuthType `json:"authType"`
	ClientID           string   `json:"clientId,omitempty"`
	ClientSecret       string   `json:"clientSecret,omitempty"`
	ServiceAccountFile string   `json:"serviceAccountFile,omitempty"`
	RootFolderID       string   `json:"rootFolderId"`
}

// Settings holds behavioral defaults inherited by repositories
type Settings struct {
	ThresholdMB        int64      `json:"largeFileThresholdMb"`
	IgnoredFilePolicy  SyncPolicy `json:"ignoredFilePolicy"`
	ManagedFilesMarker string     `json:"managedFilesMarker"`
	LogLevel           string     `json:"logLevel"`
	CacheTTL           int        `json:"cacheTTL"`
	MaxRetries         int        `json:"maxRetries"`
	RetryBaseDelay     int        `json:"retryBaseDelay"`
}

// Config is the global configuration
type Config struct {
	GitHub   GitHubConfig `json:"github"`
	Drive    DriveConfig  `json:"drive"`
	Settings Settings     `json:"settings"`
}

// DefaultConfig returns the default global configuration
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			DefaultVisibility: "private",
		},
		Drive: DriveConfig{
			AuthType: AuthTypeOAuth,
		},
		Settings: Settings{
			ThresholdMB:        10,
			IgnoredFilePolicy:  PolicyAsk,
			ManagedFilesMarker: "Managed by drivestow",
			LogLevel:           "normal",
			CacheTTL:           3600, // 1 hour
			MaxRetries:         3,
			RetryBaseDelay:     1000, // 1 second
		},
	}
}

// ConfigDir returns the global config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// GetConfigPath returns the global config file path
func GetConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load loads configuration with precedence: env vars > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file not existing is not an error
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv(EnvPrefix + "GITHUB_USERNAME"); v != "" {
		c.GitHub.Username = v
	}
	if v := os.Getenv(EnvPrefix + "GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv(EnvPrefix + "DRIVE_AUTH_TYPE"); v != "" {
		c.Drive.AuthType = AuthType(v)
	}
	if v := os.Getenv(EnvPrefix + "DRIVE_CLIENT_ID"); v != "" {
		c.Drive.ClientID = v
	}
	if v := os.Getenv(EnvPrefix + "DRIVE_CLIENT_SECRET"); v != "" {
		c.Drive.ClientSecret = v
	}
	if v := os.Getenv(EnvPrefix + "DRIVE_ROOT_FOLDER_ID"); v != "" {
		c.Drive.RootFolderID = v
	}
	if v := os.Getenv(EnvPrefix + "SERVICE_ACCOUNT_FILE"); v != "" {
		c.Drive.ServiceAccountFile = v
	}
	if v := os.Getenv(EnvPrefix + "THRESHOLD_MB"); v != "" {
		if threshold, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Settings.ThresholdMB = threshold
		}
	}
	if v := os.Getenv(EnvPrefix + "IGNORED_FILE_POLICY"); v != "" {
		c.Settings.IgnoredFilePolicy = SyncPolicy(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Settings.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_RETRIES"); v != "" {
		if retries, err := strconv.Atoi(v); err == nil {
			c.Settings.MaxRetries = retries
		}
	}
	if v := os.Getenv(EnvPrefix + "CACHE_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			c.Settings.CacheTTL = ttl
		}
	}
}

// Save saves the configuration to the config file
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Restricted permissions, the file holds tokens
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Drive.AuthType {
	case AuthTypeOAuth, AuthTypeServiceAccount:
	default:
		return fmt.Errorf("invalid auth type: %s", c.Drive.AuthType)
	}

	if _, err := ParsePolicy(string(c.Settings.IgnoredFilePolicy)); err != nil {
		return err
	}

	if c.Settings.ThresholdMB <= 0 {
		return fmt.Errorf("large file threshold must be positive, got %d", c.Settings.ThresholdMB)
	}

	if c.Settings.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", c.Settings.MaxRetries)
	}

	return nil
}

// IsConfigured reports whether both GitHub and Drive are usable
func (c *Config) IsConfigured() bool {
	return c.GitHub.Token != "" && c.IsDriveConfigured()
}

// IsDriveConfigured reports whether the Drive side is usable on its own
func (c *Config) IsDriveConfigured() bool {
	if c.Drive.RootFolderID == "" {
		return false
	}
	switch c.Drive.AuthType {
	case AuthTypeOAuth:
		return c.Drive.ClientID != "" && c.Drive.ClientSecret != ""
	case AuthTypeServiceAccount:
		return c.Drive.ServiceAccountFile != ""
	}
	return false
}
