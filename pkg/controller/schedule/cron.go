package schedule

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron"

	"github.com/tmr232/cfgbot/pkg/domain/interfaces"
	"github.com/tmr232/cfgbot/pkg/utils/async"
)

// Scheduler fires post runs on a cron schedule. It is the self-hosted
// replacement for the CI cron trigger.
type Scheduler struct {
	cron     *cron.Cron
	runner   interfaces.PostRunner
	notifier interfaces.FailureNotifier

	baseCtx context.Context
}

// New creates a scheduler for the given cron expression.
func New(spec string, runner interfaces.PostRunner, notifier interfaces.FailureNotifier) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		notifier: notifier,
		baseCtx:  context.Background(),
	}

	if err := s.cron.AddFunc(spec, s.fire); err != nil {
		return nil, goerr.Wrap(err, "invalid cron schedule", goerr.V("schedule", spec))
	}
	return s, nil
}

// Start begins firing scheduled runs. ctx supplies the logger; runs
// themselves are detached from it.
func (s *Scheduler) Start(ctx context.Context) {
	s.baseCtx = ctx
	s.cron.Start()
	ctxlog.From(ctx).Info("Scheduler started")
}

// Stop stops firing new runs. Runs already started keep going.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	ctxlog.From(s.baseCtx).Info("Scheduler stopped")
}

func (s *Scheduler) fire() {
	ctxlog.From(s.baseCtx).Info("Scheduled post run starting")
	async.Dispatch(s.baseCtx, func(ctx context.Context) error {
		run := s.runner.Run(ctx)
		if run.Failed() && s.notifier != nil {
			if err := s.notifier.NotifyFailure(ctx, run); err != nil {
				ctxlog.From(ctx).Error("Failed to send failure notification", "error", err)
			}
		}
		return run.Err
	})
}
