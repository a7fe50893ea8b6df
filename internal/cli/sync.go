package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drivestow/drivestow/internal/app"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Offload large files to Google Drive",
	Long: `Scans the repository for files above the size threshold, uploads
each one to Drive, records it in the directory's metadata store and adds
an ignore rule so git stops seeing it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := a.Push(cmd.Context())
		if err != nil {
			return err
		}
		printPushResult(result)
		return nil
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Restore offloaded files that are missing locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := a.Pull(cmd.Context())
		if err != nil {
			return err
		}
		printPullResult(result)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push local large files, then pull missing ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := a.Sync(cmd.Context())
		if result != nil && result.Push != nil {
			printPushResult(result.Push)
		}
		if err != nil {
			return err
		}
		printPullResult(result.Pull)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show managed files and pending candidates",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, repoCfg, err := loadRepoContext()
		if err != nil {
			return err
		}

		// Status never talks to the remote, so the object store is not
		// wired in.
		a, err := app.New(root, repoCfg, nil, logger, app.Options{})
		if err != nil {
			return err
		}

		status, err := a.Status(cmd.Context())
		if err != nil {
			return err
		}
		printStatus(status)
		return nil
	},
}

func printPushResult(result *app.PushResult) {
	for _, path := range result.Uploaded {
		fmt.Printf("  offloaded  %s\n", path)
	}
	fmt.Printf("Push complete: %d offloaded, %d skipped\n", len(result.Uploaded), len(result.Skipped))
}

func printPullResult(result *app.PullResult) {
	for _, path := range result.Downloaded {
		fmt.Printf("  restored   %s\n", path)
	}
	fmt.Printf("Pull complete: %d restored, %d already present\n", len(result.Downloaded), len(result.Present))
}

func printStatus(status *app.Status) {
	if len(status.Managed) == 0 && len(status.Candidates) == 0 {
		fmt.Println("Nothing to manage: no offloaded files and no large candidates.")
		return
	}

	for _, entry := range status.Managed {
		fmt.Printf("  %-9s %s\n", entry.State, entry.Path)
	}
	for _, path := range status.Candidates {
		fmt.Printf("  candidate %s\n", path)
	}
}

func init() {
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}
