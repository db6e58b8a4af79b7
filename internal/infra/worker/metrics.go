package worker

import (
	"contest-reminder/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus metrics for the scheduled job runner.
// It embeds configuration metrics and adds per-job execution tracking.
type Metrics struct {
	*config.Metrics

	// JobRunsTotal counts job runs by job name and status (success/failure).
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures job execution time per job.
	JobDurationSeconds *prometheus.HistogramVec

	// JobLastSuccessTimestamp records when each job last completed successfully.
	// Alerting on staleness of this gauge catches silently stuck schedules.
	JobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewMetrics creates and registers worker metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Metrics: config.NewMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contest_reminder",
			Subsystem: "worker",
			Name:      "job_runs_total",
			Help:      "Total number of scheduled job runs by job and status",
		}, []string{"job", "status"}),

		JobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contest_reminder",
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled job execution in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 300, 600},
		}, []string{"job"}),

		JobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "contest_reminder",
			Subsystem: "worker",
			Name:      "job_last_success_timestamp",
			Help:      "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
	}
}

// RecordJobRun increments the run counter for the given job and status.
func (m *Metrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes the duration of a job run in seconds.
func (m *Metrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordLastSuccess stamps the current time as the job's last successful run.
func (m *Metrics) RecordLastSuccess(job string) {
	m.JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
