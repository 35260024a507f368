package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"datapeek/lib/catalog"
	"datapeek/lib/configutil"
	"datapeek/lib/cronutil"
	"datapeek/lib/fetch"
	"datapeek/lib/fetchstore"
	"datapeek/lib/serviceutil"
	"datapeek/services/dashboard"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8111"
	}
	if cfg.Database.File == "" && cfg.Database.Url == "" {
		cfg.Database.File = "datapeek.db"
	}

	slog.Info("opening database...")
	db, err := cfg.Database.OpenDB()
	if err != nil {
		serviceutil.Fatal("open database", err)
	}

	client, err := fetch.NewClient(fetch.ClientOptions{})
	if err != nil {
		serviceutil.Fatal("create fetch client", err)
	}

	sources := catalog.Merge(catalog.Defaults(), cfg.Sources)
	service := dashboard.NewService(dashboard.Options{
		Sources: sources,
		DataDir: cfg.DataDir,
		Client:  client,
		Store:   fetchstore.NewStore(db),
	})

	if cfg.Refresh != "" {
		cronner := cronutil.NewScheduler()
		err := cronner.Cron(cfg.Refresh, func() {
			refreshSources(ctx, service, sources)
		})
		if err != nil {
			serviceutil.Fatal("schedule refresh", err)
		}
		slog.Info("scheduled refresh", "spec", cfg.Refresh)
	}

	go serviceutil.StartHttpServer(cfg.Addr, dashboard.NewRouter(service))
	<-ctx.Done()
}

func refreshSources(ctx context.Context, service dashboard.Service, sources []catalog.Source) {
	for _, src := range sources {
		if src.Url == "" {
			continue
		}
		_, err := service.Fetch(ctx, src)
		if err != nil {
			slog.ErrorContext(ctx, "refresh failed", "source", src.Name, "err", err)
		}
	}
}
