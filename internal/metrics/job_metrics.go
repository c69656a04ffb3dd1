package metrics

import "github.com/prometheus/client_golang/prometheus"

// Scheduled job metrics
var (
	JobRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Total number of scheduled job runs by job and status",
	}, []string{"job", "status"})

	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of scheduled jobs in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
)

// RecordJobRun records a scheduled job execution.
func RecordJobRun(job, status string, durationSeconds float64) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(durationSeconds)
}
