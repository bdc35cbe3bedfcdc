package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServerMetrics covers the HTTP analysis surface.
type ServerMetrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisErrors   *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	FindingsTotal    *prometheus.CounterVec
}

func NewServerMetrics() ServerMetrics {
	return ServerMetrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskscan_analyses_total",
			Help: "Total number of completed analyses by risk level",
		}, []string{"level"}),
		AnalysisErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskscan_analysis_errors_total",
			Help: "Total number of failed analysis requests by kind",
		}, []string{"kind"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskscan_analysis_duration_seconds",
			Help:    "Time taken to serve one analysis request",
			Buckets: prometheus.DefBuckets,
		}),
		FindingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskscan_findings_total",
			Help: "Total number of findings emitted by detector",
		}, []string{"detector"}),
	}
}

// Register installs the metrics on the default registry.
func Register(m ServerMetrics) {
	prometheus.MustRegister(m.AnalysesTotal, m.AnalysisErrors, m.AnalysisDuration, m.FindingsTotal)
}
