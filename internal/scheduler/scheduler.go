// Package scheduler drives the recurring expiration scan.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs one recurring job on a fixed cadence. A tick that arrives
// while the previous run is still active is skipped, so at most one run is
// in flight at any time.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler that fires job according to the cron expression in the
// given location.
func New(loc *time.Location, expr string, job func()) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := c.AddFunc(expr, job); err != nil {
		return nil, err
	}
	return &Scheduler{cron: c}, nil
}

// Start begins firing the job at its scheduled times.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents further firings and waits for any in-flight run to finish.
// The wait is bounded by ctx; an expired ctx abandons the run instead of
// tearing the process down mid-send.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to the cron.Logger interface so skipped overlapping
// runs show up in the process log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Info(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
