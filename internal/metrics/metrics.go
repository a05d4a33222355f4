// Package metrics exposes Prometheus counters for project operations, runs
// and HTTP requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rpggio/meetflow/internal/domain/project"
)

// Collector records meetflow metrics on a single registry.
type Collector struct {
	runsStarted     prometheus.Counter
	runsFinished    *prometheus.CounterVec
	runDuration     prometheus.Histogram
	projectOps      *prometheus.CounterVec
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the meetflow metrics with reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		runsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "meetflow_runs_started_total",
			Help: "Total number of meeting runs started",
		}),
		runsFinished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetflow_runs_finished_total",
				Help: "Total number of meeting runs that reached a terminal state",
			},
			[]string{"status"},
		),
		// Runs sleep a few seconds at minimum, so the default buckets are too fine.
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetflow_run_duration_seconds",
			Help:    "Time from run start to completion in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		projectOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetflow_project_operations_total",
				Help: "Total number of project operations",
			},
			[]string{"operation", "status"},
		),
		requestTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetflow_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meetflow_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RunStarted counts a started run.
func (c *Collector) RunStarted() {
	c.runsStarted.Inc()
}

// RunFinished counts a terminal run and observes its duration.
func (c *Collector) RunFinished(status project.RunStatus, elapsed time.Duration) {
	c.runsFinished.WithLabelValues(string(status)).Inc()
	c.runDuration.Observe(elapsed.Seconds())
}

// ProjectOperation counts a project create, update or delete.
func (c *Collector) ProjectOperation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.projectOps.WithLabelValues(operation, status).Inc()
}
