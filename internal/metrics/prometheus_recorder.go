package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	stageDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	stageResults    *prom.CounterVec
	buildOutcome    *prom.CounterVec
	documentsLoaded prom.Gauge
	pluginsLoaded   prom.Gauge
	pluginFailures  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.documentsLoaded = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitegen",
			Name:      "documents_loaded",
			Help:      "Documents loaded in the last build",
		})
		pr.pluginsLoaded = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitegen",
			Name:      "plugins_loaded",
			Help:      "Plugins registered after the last discovery pass",
		})
		pr.pluginFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "plugin_failures_total",
			Help:      "Plugin failures by kind",
		}, []string{"kind"})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.documentsLoaded, pr.pluginsLoaded, pr.pluginFailures)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetDocumentsLoaded(n int) {
	if p == nil || p.documentsLoaded == nil {
		return
	}
	p.documentsLoaded.Set(float64(n))
}

func (p *PrometheusRecorder) SetPluginsLoaded(n int) {
	if p == nil || p.pluginsLoaded == nil {
		return
	}
	p.pluginsLoaded.Set(float64(n))
}

func (p *PrometheusRecorder) IncPluginFailure(kind string) {
	if p == nil || p.pluginFailures == nil {
		return
	}
	p.pluginFailures.WithLabelValues(kind).Inc()
}
