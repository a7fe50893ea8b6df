package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/drivestow/drivestow/internal/app"
	"github.com/drivestow/drivestow/internal/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every offloaded file and where it lives",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, repoCfg, err := loadRepoContext()
		if err != nil {
			return err
		}

		a, err := app.New(root, repoCfg, nil, logger, app.Options{})
		if err != nil {
			return err
		}
		entries, err := a.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No offloaded files.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Path", "Remote ID", "Size", "Uploaded"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, entry := range entries {
			relPath, err := filepath.Rel(root, entry.Path)
			if err != nil {
				relPath = entry.Path
			}

			size := "-"
			if entry.Record.Size > 0 {
				size = formatSize(entry.Record.Size)
			}
			uploaded := "-"
			if entry.Record.UploadedAt > 0 {
				uploaded = time.Unix(entry.Record.UploadedAt, 0).Format("2006-01-02 15:04")
			}
			table.Append([]string{
				filepath.ToSlash(relPath),
				entry.Record.RemoteID,
				size,
				uploaded,
			})
		}

		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= utils.BytesPerMB*1024:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(utils.BytesPerMB*1024))
	case bytes >= utils.BytesPerMB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(utils.BytesPerMB))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
