package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/drivestow/drivestow/internal/auth"
	"github.com/drivestow/drivestow/internal/config"
	"github.com/drivestow/drivestow/internal/utils"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Google Drive",
	Long: `Runs the OAuth browser flow for the selected profile and stores the
resulting tokens in the system keyring (or a restricted file when no
keyring is available). Service-account configurations register the key
file instead of opening a browser.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		mgr, err := newAuthManager(cfg)
		if err != nil {
			return err
		}

		if cfg.Drive.AuthType == config.AuthTypeServiceAccount {
			if cfg.Drive.ServiceAccountFile == "" {
				return utils.NewCLIError(utils.ErrCodeInvalidConfig,
					"auth type is service_account but no key file is configured")
			}
			creds := &auth.Credentials{
				ExpiryDate:         time.Now().AddDate(10, 0, 0),
				Scopes:             []string{utils.ScopeDriveFile},
				Type:               config.AuthTypeServiceAccount,
				ServiceAccountPath: cfg.Drive.ServiceAccountFile,
			}
			if err := mgr.SaveCredentials(globalFlags.Profile, creds); err != nil {
				return err
			}
			fmt.Printf("Service account registered for profile '%s'\n", globalFlags.Profile)
			return nil
		}

		if cfg.Drive.ClientID == "" || cfg.Drive.ClientSecret == "" {
			return utils.NewCLIError(utils.ErrCodeInvalidConfig,
				"no OAuth client configured, run 'drivestow configure' first")
		}

		if _, err := mgr.Authenticate(cmd.Context(), globalFlags.Profile, openBrowser); err != nil {
			return err
		}
		fmt.Printf("Authenticated profile '%s' (credentials in %s)\n", globalFlags.Profile, mgr.StorageBackendName())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials for the selected profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		mgr, err := newAuthManager(cfg)
		if err != nil {
			return err
		}
		if err := mgr.DeleteCredentials(globalFlags.Profile); err != nil {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		fmt.Printf("Logged out profile '%s'\n", globalFlags.Profile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
