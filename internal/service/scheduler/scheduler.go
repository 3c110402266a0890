// Package scheduler drives the evaluator on a fixed interval and guards against
// overlapping runs, both inside the process and across replicas.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/logging"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/metrics"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/service/evaluator"
)

//go:generate mockgen -source=scheduler.go -destination=scheduler_mock.go -package=scheduler

const (
	TriggerTimer  = "timer"
	TriggerCron   = "cron"
	TriggerManual = "manual"

	defaultInterval = 60 * time.Minute
)

type Runner interface {
	Run(ctx context.Context, opts evaluator.RunOptions) *domain.RunReport
}

// RunLock is a cross-process mutex. ok=false means another holder owns it.
type RunLock interface {
	TryLock(ctx context.Context) (unlock func(context.Context) error, ok bool, err error)
}

type Scheduler struct {
	runner       Runner
	lock         RunLock
	recorder     domain.RunResultRecorder
	alertMetrics *metrics.AlertMetrics
	clock        func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	inFlight atomic.Bool
}

// NewScheduler wires a scheduler. lock, recorder and alertMetrics may be nil.
func NewScheduler(
	runner Runner,
	lock RunLock,
	recorder domain.RunResultRecorder,
	alertMetrics *metrics.AlertMetrics,
) *Scheduler {
	return &Scheduler{
		runner:       runner,
		lock:         lock,
		recorder:     recorder,
		alertMetrics: alertMetrics,
		clock:        time.Now,
	}
}

// Start runs a check immediately and then on every tick until Stop or ctx is done.
// It returns false when the scheduler is already running.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		slog.WarnContext(ctx, "scheduler already started")
		return false
	}
	if interval <= 0 {
		interval = defaultInterval
	}

	loopCtx, cancel := context.WithCancel(logging.WithModule(ctx, logging.ModuleScheduler))
	s.started = true
	s.cancel = cancel
	s.done = make(chan struct{})

	slog.InfoContext(loopCtx, "scheduler started",
		slog.Duration("interval", interval),
	)

	go s.loop(loopCtx, interval, s.done)
	return true
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RunOnce(ctx, evaluator.RunOptions{Trigger: TriggerTimer})

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx, evaluator.RunOptions{Trigger: TriggerTimer})
		}
	}
}

// Stop cancels the loop and waits for an in-progress tick to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.started = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done

	slog.Info("scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// RunOnce performs a single guarded check and hands the report to the recorder.
func (s *Scheduler) RunOnce(ctx context.Context, opts evaluator.RunOptions) *domain.RunReport {
	if opts.Trigger == "" {
		opts.Trigger = TriggerManual
	}

	report := s.guardedRun(ctx, opts)
	s.record(ctx, report, opts.Trigger)

	return report
}

func (s *Scheduler) guardedRun(ctx context.Context, opts evaluator.RunOptions) *domain.RunReport {
	if !s.inFlight.CompareAndSwap(false, true) {
		return s.skipped(ctx, opts.Trigger, "in_process")
	}
	defer s.inFlight.Store(false)

	if s.lock != nil {
		unlock, ok, err := s.lock.TryLock(ctx)
		switch {
		case err != nil:
			// The in-process flag still holds; a lock outage must not stop alerts.
			slog.WarnContext(ctx, "failed to acquire run lock, continuing without it",
				slog.String("error", err.Error()),
			)
		case !ok:
			return s.skipped(ctx, opts.Trigger, "distributed")
		default:
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					slog.WarnContext(ctx, "failed to release run lock",
						slog.String("error", err.Error()),
					)
				}
			}()
		}
	}

	return s.safeRun(ctx, opts)
}

func (s *Scheduler) safeRun(ctx context.Context, opts evaluator.RunOptions) (report *domain.RunReport) {
	startedAt := s.clock()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "deadline check panicked",
				slog.String("trigger", opts.Trigger),
				slog.Any("panic", r),
			)
			report = domain.NewRunReport(uuid.NewString(), startedAt)
			report.AddError(fmt.Sprintf("deadline check failed: %v", r))
			report.FinishedAt = s.clock()
		}
	}()

	return s.runner.Run(ctx, opts)
}

func (s *Scheduler) skipped(ctx context.Context, trigger, guard string) *domain.RunReport {
	now := s.clock()
	report := domain.NewRunReport(uuid.NewString(), now)
	report.Skipped = true
	report.AddError(domain.ErrRunInProgress.Error())
	report.FinishedAt = now

	slog.InfoContext(ctx, "skipping overlapping deadline check",
		slog.String("trigger", trigger),
		slog.String("guard", guard),
	)
	if s.alertMetrics != nil {
		s.alertMetrics.RecordRun(ctx, trigger, "skipped", 0, 0)
	}

	return report
}

func (s *Scheduler) record(ctx context.Context, report *domain.RunReport, trigger string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordRun(ctx, domain.NewRunResultRecord(report, trigger)); err != nil {
		slog.WarnContext(ctx, "failed to record run result",
			slog.String("run_id", report.RunID),
			slog.String("error", err.Error()),
		)
	}
}
