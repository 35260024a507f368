// Package cronutil wraps "github.com/robfig/cron/v3" with a scheduler
// that reports through slog.
package cronutil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler returns a started scheduler running in local time.
func NewScheduler() Scheduler {
	cronner := cron.New(cron.WithLogger(slogLogger{}))
	cronner.Start()
	return Scheduler{cron: cronner}
}

// Cron runs callback on the given cron spec, e.g. "@every 15m" or
// "0 6 * * *".
func (s Scheduler) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	return err
}

// Stop ends scheduling. The returned context is done once all running
// jobs have finished.
func (s Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(fmt.Sprintf("cron: %s", msg), keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(
		fmt.Sprintf("cron: %s", msg),
		append([]any{"err", err.Error()}, keysAndValues...)...,
	)
}
