package main

import (
	"context"
	"log/slog"
	"os"

	"datapeek/lib/fetch"
	"datapeek/lib/restyutil"
	"datapeek/lib/serviceutil"
	"datapeek/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "datapeekd")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		tel.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	fetch.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/datapeekd"),
	)
}
