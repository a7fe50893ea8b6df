package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/drivestow/drivestow/internal/config"
	"github.com/drivestow/drivestow/internal/hosting"
)

var configureFlags struct {
	githubToken    string
	githubUser     string
	clientID       string
	clientSecret   string
	rootFolderID   string
	serviceAccount string
	thresholdMB    int64
	policy         string
	nonInteractive bool
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set up GitHub and Google Drive access",
	Long: `Walks through global configuration: the GitHub token used to create
and push repositories, the Google OAuth client (or service account) used
for Drive, the Drive root folder and the large-file threshold.

Values can also be supplied with flags for non-interactive use, or via
DRIVESTOW_* environment variables at runtime.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}

		applyConfigureFlags(cfg)
		if !configureFlags.nonInteractive {
			promptConfiguration(cfg)
		}

		if cfg.GitHub.Token != "" {
			login, err := hosting.NewGitHubClient(cfg.GitHub.Token, logger).GetAuthenticatedUser(cmd.Context())
			if err != nil {
				logger.Warn("GitHub token validation failed")
			} else {
				cfg.GitHub.Username = login
				fmt.Printf("GitHub token valid for %s\n", login)
			}
		}

		if err := cfg.Save(); err != nil {
			return err
		}

		path, _ := config.GetConfigPath()
		fmt.Printf("Configuration saved to %s\n", path)
		if !cfg.IsConfigured() {
			fmt.Println("Configuration is incomplete; some commands will not work yet.")
		}
		return nil
	},
}

func applyConfigureFlags(cfg *config.Config) {
	if configureFlags.githubToken != "" {
		cfg.GitHub.Token = configureFlags.githubToken
	}
	if configureFlags.githubUser != "" {
		cfg.GitHub.Username = configureFlags.githubUser
	}
	if configureFlags.clientID != "" {
		cfg.Drive.ClientID = configureFlags.clientID
		cfg.Drive.AuthType = config.AuthTypeOAuth
	}
	if configureFlags.clientSecret != "" {
		cfg.Drive.ClientSecret = configureFlags.clientSecret
	}
	if configureFlags.serviceAccount != "" {
		cfg.Drive.ServiceAccountFile = configureFlags.serviceAccount
		cfg.Drive.AuthType = config.AuthTypeServiceAccount
	}
	if configureFlags.rootFolderID != "" {
		cfg.Drive.RootFolderID = configureFlags.rootFolderID
	}
	if configureFlags.thresholdMB > 0 {
		cfg.Settings.ThresholdMB = configureFlags.thresholdMB
	}
	if configureFlags.policy != "" {
		if policy, err := config.ParsePolicy(configureFlags.policy); err == nil {
			cfg.Settings.IgnoredFilePolicy = policy
		}
	}
}

func promptConfiguration(cfg *config.Config) {
	cfg.GitHub.Token = promptLine("GitHub personal access token", cfg.GitHub.Token)
	cfg.Drive.ClientID = promptLine("Google OAuth client ID", cfg.Drive.ClientID)
	cfg.Drive.ClientSecret = promptLine("Google OAuth client secret", cfg.Drive.ClientSecret)
	cfg.Drive.RootFolderID = promptLine("Drive root folder ID", cfg.Drive.RootFolderID)

	threshold := promptLine("Large file threshold in MB", strconv.FormatInt(cfg.Settings.ThresholdMB, 10))
	if parsed, err := strconv.ParseInt(threshold, 10, 64); err == nil && parsed > 0 {
		cfg.Settings.ThresholdMB = parsed
	}

	policy := promptLine("Policy for already-ignored large files (skip/manage/ask)", string(cfg.Settings.IgnoredFilePolicy))
	if parsed, err := config.ParsePolicy(policy); err == nil {
		cfg.Settings.IgnoredFilePolicy = parsed
	}
}

func init() {
	configureCmd.Flags().StringVar(&configureFlags.githubToken, "github-token", "", "GitHub personal access token")
	configureCmd.Flags().StringVar(&configureFlags.githubUser, "github-user", "", "GitHub username")
	configureCmd.Flags().StringVar(&configureFlags.clientID, "client-id", "", "Google OAuth client ID")
	configureCmd.Flags().StringVar(&configureFlags.clientSecret, "client-secret", "", "Google OAuth client secret")
	configureCmd.Flags().StringVar(&configureFlags.rootFolderID, "root-folder", "", "Drive root folder ID")
	configureCmd.Flags().StringVar(&configureFlags.serviceAccount, "service-account", "", "Path to a service account key file")
	configureCmd.Flags().Int64Var(&configureFlags.thresholdMB, "threshold-mb", 0, "Large file threshold in MB")
	configureCmd.Flags().StringVar(&configureFlags.policy, "ignored-policy", "", "Policy for already-ignored large files (skip, manage, ask)")
	configureCmd.Flags().BoolVar(&configureFlags.nonInteractive, "non-interactive", false, "Do not prompt, use flags and existing values only")

	rootCmd.AddCommand(configureCmd)
}
