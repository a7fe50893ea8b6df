package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/drivestow/drivestow/internal/api"
	"github.com/drivestow/drivestow/internal/app"
	"github.com/drivestow/drivestow/internal/auth"
	"github.com/drivestow/drivestow/internal/config"
	"github.com/drivestow/drivestow/internal/store"
	"github.com/drivestow/drivestow/internal/utils"
)

// repoPath resolves the repository root from the --repo flag or the
// working directory.
func repoPath() (string, error) {
	if globalFlags.Repo != "" {
		return filepath.Abs(globalFlags.Repo)
	}
	return os.Getwd()
}

// newAuthManager builds the auth manager with OAuth config applied from
// the global configuration.
func newAuthManager(cfg *config.Config) (*auth.Manager, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}

	mgr := auth.NewManager(configDir)
	if warning := mgr.StorageWarning(); warning != "" {
		logger.Warn(warning)
	}
	if cfg.Drive.ClientID != "" {
		mgr.SetOAuthConfig(cfg.Drive.ClientID, cfg.Drive.ClientSecret, []string{utils.ScopeDriveFile})
	}
	return mgr, nil
}

// loadRepoContext resolves the repository root and its configuration
// without touching credentials. Used by local-only commands.
func loadRepoContext() (string, *config.RepoConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", nil, err
	}
	root, err := repoPath()
	if err != nil {
		return "", nil, err
	}
	repoCfg, err := config.LoadRepo(root, cfg)
	if err != nil {
		return "", nil, err
	}
	return root, repoCfg, nil
}

// buildApp wires the full stack for commands that touch the object store.
func buildApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	root, err := repoPath()
	if err != nil {
		return nil, nil, err
	}
	repoCfg, err := config.LoadRepo(root, cfg)
	if err != nil {
		return nil, nil, err
	}

	folderID := repoCfg.Drive.FolderID
	if folderID == "" {
		folderID = cfg.Drive.RootFolderID
	}
	if folderID == "" {
		return nil, nil, utils.NewCLIError(utils.ErrCodeInvalidConfig,
			"no Drive folder configured, run 'drivestow configure' first")
	}

	mgr, err := newAuthManager(cfg)
	if err != nil {
		return nil, nil, err
	}
	service, err := mgr.Service(ctx, globalFlags.Profile)
	if err != nil {
		return nil, nil, err
	}

	client := api.NewClient(service, cfg.Settings.MaxRetries, cfg.Settings.RetryBaseDelay, logger)

	cleanup := func() {}
	var cache *store.FolderCache
	if configDir, err := config.ConfigDir(); err == nil {
		ttl := time.Duration(cfg.Settings.CacheTTL) * time.Second
		if opened, err := store.OpenFolderCache(filepath.Join(configDir, "cache.db"), ttl); err == nil {
			cache = opened
			cleanup = func() { _ = opened.Close() }
		} else {
			logger.Warn("folder cache unavailable, resolving folders remotely")
		}
	}

	objects := store.NewDriveStore(client, folderID, globalFlags.Profile, repoCfg.Settings.ManagedFilesMarker, cache, logger)

	a, err := app.New(root, repoCfg, objects, logger, app.Options{
		AssumeYes: globalFlags.Yes,
		Prompt:    promptYesNo,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

// promptYesNo asks on stdin, defaulting to no.
func promptYesNo(message string) bool {
	fmt.Printf("%s [y/N]: ", message)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// promptLine reads one trimmed line, returning fallback on empty input.
func promptLine(message, fallback string) string {
	if fallback != "" {
		fmt.Printf("%s [%s]: ", message, fallback)
	} else {
		fmt.Printf("%s: ", message)
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fallback
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback
	}
	return line
}

// openBrowser opens a URL with the platform launcher.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
