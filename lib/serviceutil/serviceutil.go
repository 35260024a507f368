// Package serviceutil carries the small pieces shared by every long
// running binary: signal handling, the h2c listener and fatal exits.
package serviceutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// SignalContext returns a context that is cancelled on SIGINT or
// SIGTERM.
func SignalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

// StartHttpServer serves handler on addr, speaking cleartext http/2.
// It only returns on listen failure, which is fatal.
func StartHttpServer(addr string, handler http.Handler) {
	slog.Info("listening...", "addr", addr)
	err := http.ListenAndServe(
		addr,
		h2c.NewHandler(handler, &http2.Server{}),
	)
	if err != nil {
		Fatal(fmt.Sprintf("failed to listen on %s", addr), err)
	}
}

func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}
