package commands

import (
	"os"

	"datapeek/lib/preview"
	"datapeek/lib/serviceutil"
	"datapeek/lib/tabular"
	"datapeek/lib/tabular/stats"

	"github.com/spf13/cobra"
)

var histBins *int

func init() {
	histBins = histCmd.Flags().IntP("bins", "b", 10, "Number of histogram bins.")

	statsCmd.AddCommand(describeCmd)
	statsCmd.AddCommand(countsCmd)
	statsCmd.AddCommand(groupmeanCmd)
	statsCmd.AddCommand(histCmd)
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Column statistics over a local dataset.",
}

func loadTarget(target string) *tabular.Table {
	cfg := loadConfig()
	path := resolveTarget(cfg, target)

	table, err := tabular.ReadFile(path)
	if err != nil {
		serviceutil.Fatal("failed to load table", err)
	}
	return table
}

var describeCmd = &cobra.Command{
	Use:   "describe <source|file> <column>",
	Short: "Count, mean, std, min and max of a numeric column.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		table := loadTarget(args[0])
		values, err := table.Floats(args[1])
		if err != nil {
			serviceutil.Fatal("failed to read column", err)
		}
		preview.Describe(os.Stdout, args[1], stats.Describe(values))
	},
}

var countsCmd = &cobra.Command{
	Use:   "counts <source|file> <column>",
	Short: "Distinct values of a column with their frequencies.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		table := loadTarget(args[0])
		values, err := table.Column(args[1])
		if err != nil {
			serviceutil.Fatal("failed to read column", err)
		}
		preview.ValueCounts(os.Stdout, args[1], stats.ValueCounts(values))
	},
}

var groupmeanCmd = &cobra.Command{
	Use:   "groupmean <source|file> <key column> <value column>",
	Short: "Mean of a numeric column grouped by another column.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		table := loadTarget(args[0])
		keys, err := table.Column(args[1])
		if err != nil {
			serviceutil.Fatal("failed to read key column", err)
		}
		values, err := table.Floats(args[2])
		if err != nil {
			serviceutil.Fatal("failed to read value column", err)
		}
		preview.GroupMeans(os.Stdout, args[1], args[2], stats.GroupMean(keys, values))
	},
}

var histCmd = &cobra.Command{
	Use:   "hist <source|file> <column>",
	Short: "Equal-width histogram of a numeric column.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		table := loadTarget(args[0])
		values, err := table.Floats(args[1])
		if err != nil {
			serviceutil.Fatal("failed to read column", err)
		}
		preview.Histogram(os.Stdout, args[1], stats.Histogram(values, *histBins))
	},
}
