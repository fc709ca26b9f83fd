package site

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Cancellation is checked between stages, not inside
// them; stages are short enough that this is the right granularity.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	rec := bs.Generator.recorder
	for _, st := range stages {
		select {
		case <-ctx.Done():
			rec.IncStageResult(string(st.Name), metrics.ResultCanceled)
			bs.Report.finish(OutcomeCanceled)
			return ctx.Err()
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		bs.Report.StageDurations[string(st.Name)] = dur
		rec.ObserveStageDuration(string(st.Name), dur)

		if err != nil {
			rec.IncStageResult(string(st.Name), metrics.ResultFatal)
			bs.Generator.logger.Error("Stage failed",
				logfields.Stage(string(st.Name)),
				logfields.DurationMS(float64(dur.Milliseconds())),
				logfields.Error(err))
			bs.Report.finish(OutcomeFailed)
			return err
		}

		rec.IncStageResult(string(st.Name), metrics.ResultSuccess)
		bs.Generator.logger.Debug("Stage complete",
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}

// logSummary emits the one-line build summary operators grep for.
func logSummary(logger *slog.Logger, report *BuildReport) {
	logger.Info("Build finished",
		logfields.BuildID(report.BuildID),
		slog.String("outcome", report.Outcome),
		slog.Int("documents", report.Documents),
		slog.Int("pages", report.PagesRendered),
		slog.Int("plugins", report.PluginsLoaded),
		slog.Int("warnings", len(report.Warnings)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
}
