package commands

import (
	"os"

	"datapeek/lib/catalog"
	"datapeek/lib/preview"
	"datapeek/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesDiscoverCmd)
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect and discover catalog sources.",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sources datapeek knows about.",
	Run: func(cmd *cobra.Command, args []string) {
		sources, err := catalog.Load(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to load catalog", err)
		}
		preview.Sources(os.Stdout, sources)
	},
}

var sourcesDiscoverCmd = &cobra.Command{
	Use:   "discover <index url>",
	Short: "List csv links on an index page as catalog sources.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()

		sources, err := catalog.Discover(cmd.Context(), client, args[0])
		if err != nil {
			serviceutil.Fatal("failed to discover sources", err)
		}
		preview.Sources(os.Stdout, sources)
	},
}
