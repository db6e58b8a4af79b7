// Package worker holds the configuration, health server and metrics for the
// scheduled job runner. The runner fires three jobs: contest ingestion,
// the daily digest and the upcoming-contest reminder sweep.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"contest-reminder/internal/pkg/config"
)

// Config controls the worker's cron schedules and operational limits.
// All fields have defaults so the worker can start with an empty environment.
type Config struct {
	// IngestSchedule is the cron expression for fetching contests upstream.
	// Default: every 6 hours.
	IngestSchedule string

	// DigestSchedule is the cron expression for the daily digest.
	// Default: 08:00 in the configured timezone.
	DigestSchedule string

	// ReminderSchedule is the cron expression for the reminder sweep.
	// Must fire at least as often as the reminder window is wide, or
	// contests can fall between sweeps. Default: every 5 minutes.
	ReminderSchedule string

	// Timezone is the IANA timezone the schedules are evaluated in.
	Timezone string

	// NotifyMaxConcurrent caps concurrent notification deliveries per job run.
	NotifyMaxConcurrent int

	// JobTimeout is the maximum duration for a single job run.
	JobTimeout time.Duration

	// HealthPort is the port for the worker's health check HTTP server.
	HealthPort int
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		IngestSchedule:      "0 */6 * * *",
		DigestSchedule:      "0 8 * * *",
		ReminderSchedule:    "*/5 * * * *",
		Timezone:            "UTC",
		NotifyMaxConcurrent: 8,
		JobTimeout:          10 * time.Minute,
		HealthPort:          9091,
	}
}

// Validate checks all fields and returns every violation at once.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.IngestSchedule); err != nil {
		errs = append(errs, fmt.Errorf("ingest schedule: %w", err))
	}
	if err := config.ValidateCronSchedule(c.DigestSchedule); err != nil {
		errs = append(errs, fmt.Errorf("digest schedule: %w", err))
	}
	if err := config.ValidateCronSchedule(c.ReminderSchedule); err != nil {
		errs = append(errs, fmt.Errorf("reminder schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 64); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidateDurationRange(c.JobTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables.
// Loading is fail-open: each invalid value falls back to its default with a
// warning and a metrics bump, and the function never returns an error.
//
// Environment variables:
//   - INGEST_SCHEDULE: cron expression (default: "0 */6 * * *")
//   - DIGEST_SCHEDULE: cron expression (default: "0 8 * * *")
//   - REMINDER_SCHEDULE: cron expression (default: "*/5 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - NOTIFY_MAX_CONCURRENT: integer 1-64 (default: 8)
//   - JOB_TIMEOUT: duration string, e.g. "10m" (default: 10 minutes)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) Config {
	cfg := DefaultConfig()
	fallbackApplied := false

	apply := func(field string, warning string, fellBack bool) {
		if !fellBack {
			return
		}
		fallbackApplied = true
		metrics.RecordFallback(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	schedule := config.LoadString("INGEST_SCHEDULE", cfg.IngestSchedule, config.ValidateCronSchedule)
	cfg.IngestSchedule = schedule.Value
	apply("ingest_schedule", schedule.Warning, schedule.FallbackApplied)

	schedule = config.LoadString("DIGEST_SCHEDULE", cfg.DigestSchedule, config.ValidateCronSchedule)
	cfg.DigestSchedule = schedule.Value
	apply("digest_schedule", schedule.Warning, schedule.FallbackApplied)

	schedule = config.LoadString("REMINDER_SCHEDULE", cfg.ReminderSchedule, config.ValidateCronSchedule)
	cfg.ReminderSchedule = schedule.Value
	apply("reminder_schedule", schedule.Warning, schedule.FallbackApplied)

	timezone := config.LoadString("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = timezone.Value
	apply("timezone", timezone.Warning, timezone.FallbackApplied)

	concurrent := config.LoadInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 64)
	})
	cfg.NotifyMaxConcurrent = concurrent.Value
	apply("notify_max_concurrent", concurrent.Warning, concurrent.FallbackApplied)

	timeout := config.LoadDuration("JOB_TIMEOUT", cfg.JobTimeout, func(d time.Duration) error {
		return config.ValidateDurationRange(d, time.Minute, 4*time.Hour)
	})
	cfg.JobTimeout = timeout.Value
	apply("job_timeout", timeout.Warning, timeout.FallbackApplied)

	port := config.LoadInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = port.Value
	apply("health_port", port.Warning, port.FallbackApplied)

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return cfg
}
