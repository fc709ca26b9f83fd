package watch

import (
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitegen/internal/xerrors"
)

// Scheduler drives periodic full rebuilds from a cron expression, useful
// for sites with date-dependent content (scheduled posts, archives). The
// trigger should route through Controller.Request so scheduled builds share
// the controller's debounce and one-build-at-a-time guard.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler wires trigger to the cron expression.
func NewScheduler(cronExpr string, trigger func(), logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CategoryInternal, xerrors.SeverityFatal, "create scheduler")
	}

	_, err = s.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			logger.Info("Scheduled rebuild", slog.String("schedule", cronExpr))
			trigger()
		}),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, xerrors.Wrap(err, xerrors.CategoryConfig, xerrors.SeverityFatal,
			"invalid rebuild schedule").WithContext("schedule", cronExpr)
	}

	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running job.
func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Warn("Scheduler shutdown", slog.String("error", err.Error()))
	}
}
