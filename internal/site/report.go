package site

import (
	"time"

	"github.com/google/uuid"
)

// Build outcome labels, also used as metric label values.
const (
	OutcomeSuccess  = "success"
	OutcomeWarning  = "warning"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// BuildReport summarizes one generation run.
type BuildReport struct {
	BuildID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration

	StageDurations map[string]time.Duration

	Documents      int
	PagesRendered  int
	PluginsLoaded  int
	PluginFailures int

	Warnings []string
	Outcome  string
}

func newBuildReport() *BuildReport {
	return &BuildReport{
		BuildID:        uuid.NewString(),
		StartedAt:      time.Now(),
		StageDurations: map[string]time.Duration{},
		Outcome:        OutcomeSuccess,
	}
}

// AddWarning records a non-fatal problem and downgrades the outcome.
func (r *BuildReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.Outcome == OutcomeSuccess {
		r.Outcome = OutcomeWarning
	}
}

func (r *BuildReport) finish(outcome string) {
	if outcome != "" {
		r.Outcome = outcome
	}
	r.FinishedAt = time.Now()
	r.Duration = r.FinishedAt.Sub(r.StartedAt)
}
