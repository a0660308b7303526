package learning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/Veraticus/spice-talk/internal/common"
)

// Scheduler runs full retrains on a cron schedule.
type Scheduler struct {
	cron    *rcron.Cron
	learner *Learner
	spec    string
	entry   rcron.EntryID
	timeout time.Duration
}

// slogCron adapts slog to the cron logger.
type slogCron struct{}

func (slogCron) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogCron) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// NewScheduler validates spec (standard five-field cron or a descriptor
// such as "@every 6h") and prepares the job. Runs that would overlap a
// still-running retrain are skipped.
func NewScheduler(l *Learner, spec string) (*Scheduler, error) {
	s := &Scheduler{
		learner: l,
		spec:    spec,
		timeout: 30 * time.Minute,
		cron: rcron.New(rcron.WithChain(
			rcron.Recover(slogCron{}),
			rcron.SkipIfStillRunning(slogCron{}),
		)),
	}

	id, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("invalid retrain schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.learner.Retrain(ctx, false)
	if err != nil {
		common.LogError(err, "Scheduled retrain failed", common.Fields{"schedule": s.spec})
		return
	}
	common.LogInfo("Scheduled retrain finished", common.Fields{"skipped": result.Skipped, "samples": result.Samples})
}

// Next returns when the next retrain is due, or the zero time if the
// scheduler is not running.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Start begins the schedule and stops it when ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	slog.Info("Retrain schedule started", "schedule", s.spec)
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop halts the schedule and waits up to five seconds for a running
// retrain.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		slog.Warn("Timed out waiting for scheduled retrain to stop")
	}
}
