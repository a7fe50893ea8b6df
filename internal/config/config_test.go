package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Settings.ThresholdMB != 10 {
		t.Errorf("Expected default threshold 10 MB, got %d", cfg.Settings.ThresholdMB)
	}
	if cfg.Settings.IgnoredFilePolicy != PolicyAsk {
		t.Errorf("Expected default policy ask, got %s", cfg.Settings.IgnoredFilePolicy)
	}
	if cfg.Drive.AuthType != AuthTypeOAuth {
		t.Errorf("Expected default auth type oauth, got %s", cfg.Drive.AuthType)
	}
	if cfg.IsConfigured() {
		t.Error("Default config should not report as configured")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    SyncPolicy
		wantErr bool
	}{
		{"skip", PolicySkip, false},
		{"manage", PolicyManage, false},
		{"ask", PolicyAsk, false},
		{"", "", true},
		{"prompt", "", true},
		{"SKIP", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePolicy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"bad auth type", func(c *Config) { c.Drive.AuthType = "ldap" }, true},
		{"bad policy", func(c *Config) { c.Settings.IgnoredFilePolicy = "maybe" }, true},
		{"zero threshold", func(c *Config) { c.Settings.ThresholdMB = 0 }, true},
		{"negative retries", func(c *Config) { c.Settings.MaxRetries = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"GITHUB_TOKEN", "env-token")
	t.Setenv(EnvPrefix+"THRESHOLD_MB", "25")
	t.Setenv(EnvPrefix+"IGNORED_FILE_POLICY", "manage")

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	if cfg.GitHub.Token != "env-token" {
		t.Errorf("Expected token from env, got %q", cfg.GitHub.Token)
	}
	if cfg.Settings.ThresholdMB != 25 {
		t.Errorf("Expected threshold 25, got %d", cfg.Settings.ThresholdMB)
	}
	if cfg.Settings.IgnoredFilePolicy != PolicyManage {
		t.Errorf("Expected policy manage, got %s", cfg.Settings.IgnoredFilePolicy)
	}
}

func TestIsDriveConfigured(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsDriveConfigured() {
		t.Error("Empty drive config should not be configured")
	}

	cfg.Drive.ClientID = "id"
	cfg.Drive.ClientSecret = "secret"
	cfg.Drive.RootFolderID = "root"
	if !cfg.IsDriveConfigured() {
		t.Error("OAuth config with client and root folder should be configured")
	}

	cfg.Drive.AuthType = AuthTypeServiceAccount
	if cfg.IsDriveConfigured() {
		t.Error("Service account without key file should not be configured")
	}
	cfg.Drive.ServiceAccountFile = "/path/key.json"
	if !cfg.IsDriveConfigured() {
		t.Error("Service account with key file should be configured")
	}
}

func TestRepoConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	global := DefaultConfig()
	global.Settings.ThresholdMB = 42

	cfg, err := LoadRepo(dir, global)
	if err != nil {
		t.Fatalf("LoadRepo() error = %v", err)
	}
	if cfg.Settings.ThresholdMB != 42 {
		t.Errorf("Repo config did not inherit global threshold, got %d", cfg.Settings.ThresholdMB)
	}

	// First load creates the file on disk
	if _, err := filepath.Glob(RepoConfigPath(dir)); err != nil {
		t.Fatalf("Glob() error = %v", err)
	}

	cfg.GitHub.RepositoryURL = "https://github.com/user/repo"
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := LoadRepo(dir, global)
	if err != nil {
		t.Fatalf("LoadRepo() reload error = %v", err)
	}
	if reloaded.GitHub.RepositoryURL != "https://github.com/user/repo" {
		t.Errorf("Repository URL not persisted, got %q", reloaded.GitHub.RepositoryURL)
	}
}

func TestThresholdBytes(t *testing.T) {
	cfg := NewRepoConfig(DefaultConfig())
	cfg.Settings.ThresholdMB = 10

	if got := cfg.ThresholdBytes(); got != 10*1024*1024 {
		t.Errorf("ThresholdBytes() = %d, want %d", got, 10*1024*1024)
	}
}
