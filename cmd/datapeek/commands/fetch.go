package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"datapeek/lib/catalog"
	"datapeek/lib/fetch"
	"datapeek/lib/fetchstore"
	"datapeek/lib/preview"
	"datapeek/lib/serviceutil"
	"datapeek/lib/tabular"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var fetchAll *bool

func init() {
	fetchAll = fetchCmd.Flags().Bool("all", false, "Fetch every catalog source that has a url.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [source...]",
	Short: "Download sources, record fetch history and preview the first rows.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store, database := openStore(cfg)
		defer database.Close()
		client := newClient()

		if *fetchAll {
			var names []string
			for _, s := range cfg.Sources {
				if s.Url != "" {
					names = append(names, s.Name)
				}
			}
			fetchConcurrently(cmd.Context(), cfg, client, store, names)
			return
		}

		names := args
		if len(names) == 0 {
			names = []string{catalog.DefaultSource}
		}
		for _, name := range names {
			err := fetchOne(cmd.Context(), cfg, client, store, name, true)
			if err != nil {
				serviceutil.Fatal(fmt.Sprintf("failed to fetch %q", name), err)
			}
		}
	},
}

func recordOf(src catalog.Source, dest string, result fetch.Result) fetchstore.Record {
	return fetchstore.Record{
		Source:    src.Name,
		Url:       src.Url,
		Path:      dest,
		Sha256:    result.Sha256,
		Bytes:     int64(len(result.Body)),
		Status:    int64(result.StatusCode),
		Duration:  result.Duration,
		FetchedAt: result.FetchedAt,
	}
}

func fetchOne(
	ctx context.Context,
	cfg Config,
	client *fetch.Client,
	store fetchstore.Store,
	name string,
	showPreview bool,
) error {
	src, err := catalog.Find(cfg.Sources, name)
	if err != nil {
		return err
	}
	if src.Url == "" {
		return fmt.Errorf("%w: %q", catalog.ErrNoUrl, src.Name)
	}

	prev, found, err := store.Latest(ctx, src.Name)
	if err != nil {
		return err
	}

	dest := src.ResolvePath(cfg.DataDir)
	result, err := client.Download(ctx, src.Url, dest)
	if err != nil {
		if result.StatusCode != 0 {
			// the remote answered, keep the rejection in the history
			_, recErr := store.Record(ctx, recordOf(src, dest, result))
			if recErr != nil {
				slog.Warn("failed to record rejected fetch", "source", src.Name, "err", recErr)
			}
		}
		return err
	}

	rec, err := store.Record(ctx, recordOf(src, dest, result))
	if err != nil {
		return err
	}
	unchanged := found && prev.Sha256 == rec.Sha256
	slog.InfoContext(
		ctx, "fetched",
		"source", src.Name,
		"bytes", rec.Bytes,
		"unchanged", unchanged,
	)

	if !showPreview {
		return nil
	}
	table, err := tabular.ReadFile(dest)
	if err != nil {
		return err
	}
	preview.Table(os.Stdout, table, 5)
	slog.InfoContext(
		ctx, "loaded table",
		"path", dest,
		"columns", len(table.Columns),
		"rows", len(table.Rows),
	)
	return nil
}

func fetchConcurrently(
	ctx context.Context,
	cfg Config,
	client *fetch.Client,
	store fetchstore.Store,
	names []string,
) {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, name := range names {
		name := name
		group.Go(func() error {
			err := fetchOne(ctx, cfg, client, store, name, false)
			if err != nil {
				return fmt.Errorf("fetch %q: %w", name, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		serviceutil.Fatal("failed to fetch sources", err)
	}
}
