package commands

import (
	"log/slog"
	"os"

	"datapeek/lib/catalog"
	"datapeek/lib/preview"
	"datapeek/lib/serviceutil"
	"datapeek/lib/tabular"

	"github.com/spf13/cobra"
)

var previewRows *int

func init() {
	previewRows = previewCmd.Flags().IntP("rows", "n", 5, "Number of rows to display.")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview [source|file]",
	Short: "Display the first rows of a local dataset without fetching.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		target := catalog.DefaultSource
		if len(args) > 0 {
			target = args[0]
		}
		path := resolveTarget(cfg, target)

		table, err := tabular.ReadFile(path)
		if err != nil {
			serviceutil.Fatal("failed to load table", err)
		}
		preview.Table(os.Stdout, table, *previewRows)
		slog.Info(
			"loaded table",
			"path", path,
			"columns", len(table.Columns),
			"rows", len(table.Rows),
		)
	},
}
