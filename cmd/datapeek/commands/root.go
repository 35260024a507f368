package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"datapeek/lib/catalog"
	"datapeek/lib/configutil"
	"datapeek/lib/fetch"
	"datapeek/lib/fetchstore"
	"datapeek/lib/restyutil"
	"datapeek/lib/serviceutil"
	"datapeek/lib/telemetry"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "datapeek",
	Short: "datapeek downloads csv datasets and peeks at them.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if *verbose {
			telemetry.InitSlog(true)
			fetch.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/datapeek"))
		}
	},
}

var configPath *string
var dataDir *string
var dbPath *string
var verbose *bool

func init() {
	configPath = rootCmd.PersistentFlags().StringP("config", "c", "datapeek.json5", "Path to the config file.")
	dataDir = rootCmd.PersistentFlags().String("data-dir", "", "Directory downloaded files are written to.")
	dbPath = rootCmd.PersistentFlags().String("db", "", "Path to the fetch history database.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level and dump http traffic to .dev/resty.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Config is the datapeek.json5 file: extra or overridden sources, where
// downloads land and where fetch history is kept.
type Config struct {
	Sources  []catalog.Source  `json:"sources"`
	DataDir  string            `json:"data_dir"`
	Database fetchstore.Config `json:"database"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}

	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *dbPath != "" {
		cfg.Database.File = *dbPath
	}
	if cfg.Database.File == "" && cfg.Database.Url == "" {
		cfg.Database.File = "datapeek.db"
	}
	cfg.Sources = catalog.Merge(catalog.Defaults(), cfg.Sources)
	return cfg
}

func openStore(cfg Config) (fetchstore.Store, *sql.DB) {
	database, err := cfg.Database.OpenDB()
	if err != nil {
		serviceutil.Fatal("failed to open history db", err)
	}
	return fetchstore.NewStore(database), database
}

func newClient() *fetch.Client {
	client, err := fetch.NewClient(fetch.ClientOptions{})
	if err != nil {
		serviceutil.Fatal("failed to initialize http client", err)
	}
	return client
}

// resolveTarget treats target as a catalog source name first, then as
// a path to a csv file on disk.
func resolveTarget(cfg Config, target string) string {
	src, err := catalog.Find(cfg.Sources, target)
	if err == nil {
		return src.ResolvePath(cfg.DataDir)
	}
	return target
}
