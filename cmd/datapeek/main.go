package main

import (
	"context"
	"log/slog"
	"os"

	"datapeek/cmd/datapeek/commands"
	"datapeek/lib/telemetry"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.SetupFromEnv(ctx, "datapeek")
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to initialize telemetry", "err", err)
	}
	defer tel.Shutdown(ctx)

	telemetry.InitSlog(false)
	commands.ExecuteContext(ctx)
}
