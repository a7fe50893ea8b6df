// Package cli implements the drivestow command tree.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/utils"
	"github.com/drivestow/drivestow/pkg/version"
)

// GlobalFlags are shared by every command.
type GlobalFlags struct {
	Repo    string
	Profile string
	Verbose bool
	Quiet   bool
	LogFile string
	Yes     bool
}

var (
	globalFlags GlobalFlags
	logger      logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "drivestow",
	Short: "Keep large files out of git by offloading them to Google Drive",
	Long: `drivestow scans a git repository for files above a size threshold,
uploads them to Google Drive, records where they went and hides them from
version control. Collaborators restore the files with a single pull.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logConfig := logging.LogConfig{
			Level:           logging.INFO,
			OutputFile:      globalFlags.LogFile,
			EnableConsole:   !globalFlags.Quiet,
			EnableColor:     true,
			EnableTimestamp: true,
			RedactSensitive: true,
		}
		if globalFlags.Verbose {
			logConfig.Level = logging.DEBUG
		}

		var err error
		logger, err = logging.NewLogger(logConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Repo, "repo", "", "Repository path (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Profile, "profile", "default", "Authentication profile to use")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Yes, "yes", "y", false, "Answer yes to all prompts")
}

// Execute runs the root command and maps failures to stable exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var cliErr *utils.CLIError
		if errors.As(err, &cliErr) {
			os.Exit(utils.GetExitCode(cliErr.Code))
		}
		os.Exit(utils.ExitUnknown)
	}
}
