package commands

import (
	"os"

	"datapeek/lib/preview"
	"datapeek/lib/serviceutil"

	"github.com/spf13/cobra"
)

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().IntP("limit", "n", 20, "Maximum records to display.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [source]",
	Short: "Show recorded fetches, newest first.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store, database := openStore(cfg)
		defer database.Close()

		source := ""
		if len(args) > 0 {
			source = args[0]
		}
		records, err := store.History(cmd.Context(), source, int64(*historyLimit))
		if err != nil {
			serviceutil.Fatal("failed to read history", err)
		}
		preview.History(os.Stdout, records)
	},
}
