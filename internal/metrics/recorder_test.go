package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("load_content", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("load_content", ResultSuccess)
	r.IncBuildOutcome("success")
	r.SetDocumentsLoaded(3)
	r.SetPluginsLoaded(1)
	r.IncPluginFailure("hook")
}

func TestPrometheusRecorderRegistersAndRecords(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveStageDuration("load_content", 50*time.Millisecond)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("load_content", ResultSuccess)
	r.IncBuildOutcome("success")
	r.SetDocumentsLoaded(7)
	r.SetPluginsLoaded(2)
	r.IncPluginFailure("transform")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"sitegen_stage_duration_seconds",
		"sitegen_build_duration_seconds",
		"sitegen_stage_results_total",
		"sitegen_build_outcomes_total",
		"sitegen_documents_loaded",
		"sitegen_plugins_loaded",
		"sitegen_plugin_failures_total",
	} {
		assert.True(t, names[want], "missing metric family %s", want)
	}
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var r *PrometheusRecorder
	r.ObserveStageDuration("x", time.Second)
	r.IncBuildOutcome("success")
	r.SetDocumentsLoaded(1)
}
