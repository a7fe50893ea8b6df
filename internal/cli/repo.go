package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drivestow/drivestow/internal/app"
	"github.com/drivestow/drivestow/internal/config"
	"github.com/drivestow/drivestow/internal/hosting"
	"github.com/drivestow/drivestow/internal/utils"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare a directory for large-file offloading",
	Long: `Creates a git repository in the target directory if none exists and
writes a repository configuration seeded from the global defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		root, err := repoPath()
		if err != nil {
			return err
		}

		repoCfg, err := app.InitRepo(root, cfg, logger)
		if err != nil {
			return err
		}

		fmt.Printf("Initialized %s\n", root)
		fmt.Printf("Large file threshold: %d MB\n", repoCfg.Settings.ThresholdMB)
		fmt.Printf("Edit %s to adjust per-repository settings.\n", config.RepoConfigPath(root))
		return nil
	},
}

var quickSetupFlags struct {
	name        string
	description string
	public      bool
}

var quickSetupCmd = &cobra.Command{
	Use:   "quick-setup",
	Short: "Create a hosted repository and wire this directory to it",
	Long: `One-shot bootstrap: creates the GitHub repository, initializes the
local git repository, points origin at the new remote and commits the
drivestow configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.GitHub.Token == "" {
			return utils.NewCLIError(utils.ErrCodeInvalidConfig,
				"no GitHub token configured, run 'drivestow configure' first")
		}
		root, err := repoPath()
		if err != nil {
			return err
		}

		creator := hosting.NewGitHubClient(cfg.GitHub.Token, logger)
		result, err := app.QuickSetup(cmd.Context(), root, cfg, creator, app.QuickSetupOptions{
			Name:        quickSetupFlags.name,
			Description: quickSetupFlags.description,
			Private:     !quickSetupFlags.public,
		}, logger)
		if err != nil {
			return err
		}

		fmt.Printf("Repository ready: %s\n", result.RepositoryURL)
		if result.CommitHash != "" {
			fmt.Printf("Initial commit: %s\n", result.CommitHash)
		}
		return nil
	},
}

func init() {
	quickSetupCmd.Flags().StringVar(&quickSetupFlags.name, "name", "", "Repository name (defaults to the directory name)")
	quickSetupCmd.Flags().StringVar(&quickSetupFlags.description, "description", "", "Repository description")
	quickSetupCmd.Flags().BoolVar(&quickSetupFlags.public, "public", false, "Create a public repository")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(quickSetupCmd)
}
