package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"contest-reminder/internal/handler/http/respond"
	"contest-reminder/internal/infra/adapter/persistence/postgres"
	"contest-reminder/internal/infra/channel"
	"contest-reminder/internal/infra/clist"
	"contest-reminder/internal/infra/db"
	workerPkg "contest-reminder/internal/infra/worker"
	"contest-reminder/internal/observability/logging"
	"contest-reminder/internal/usecase/ingest"
	"contest-reminder/internal/usecase/notify"
	"contest-reminder/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerMetrics := workerPkg.NewMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("ingest_schedule", workerConfig.IngestSchedule),
		slog.String("digest_schedule", workerConfig.DigestSchedule),
		slog.String("reminder_schedule", workerConfig.ReminderSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	notifySvc, ingestSvc, senders := setupServices(logger, database, workerConfig)

	startMetricsServer(ctx, logger, senders)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	runScheduler(ctx, logger, notifySvc, ingestSvc, workerConfig, workerMetrics, healthServer)
}

// waitForMigrations blocks until the API binary has created the schema.
// The two binaries share one database and only the API runs migrations.
func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM contests LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// setupServices wires repositories, delivery channels and the workflow
// services the scheduler runs.
func setupServices(logger *slog.Logger, database *sql.DB, cfg workerPkg.Config) (*notify.Service, *ingest.Service, channelSet) {
	users := postgres.NewUserRepo(database)
	contests := postgres.NewContestRepo(database)
	notificationLog := postgres.NewNotificationLogRepo(database)

	browser := channel.NewWebPushSender(channel.LoadWebPushConfig(logger))
	native := channel.NewFCMSender(context.Background(), channel.LoadFCMConfig(logger), logger)
	chat := channel.NewTelegramSender(channel.LoadTelegramConfig(logger), logger)
	logger.Info("delivery channels initialized",
		slog.Bool("browser_push", browser.Enabled()),
		slog.Bool("native_push", native.Enabled()),
		slog.Bool("chat", chat.Enabled()))

	dispatcher := notify.NewDispatcher(browser, native, chat, notify.NewHealthManager(users))
	notifySvc := notify.NewService(users, contests, notificationLog, dispatcher, notify.Config{
		MaxConcurrent: cfg.NotifyMaxConcurrent,
		BaseURL:       config.GetEnvString("APP_BASE_URL", "http://localhost:3000"),
	})

	clistClient := clist.NewClient(clist.LoadConfig(), nil)
	ingestSvc := ingest.NewService(clistClient, contests, ingest.Config{})

	return notifySvc, ingestSvc, channelSet{browser: browser, native: native, chat: chat}
}

// runScheduler registers the three jobs and blocks until shutdown.
func runScheduler(
	ctx context.Context,
	logger *slog.Logger,
	notifySvc *notify.Service,
	ingestSvc *ingest.Service,
	cfg workerPkg.Config,
	metrics *workerPkg.Metrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	jobs := []struct {
		name     string
		schedule string
		run      func(context.Context) error
	}{
		{
			name:     "ingest",
			schedule: cfg.IngestSchedule,
			run: func(ctx context.Context) error {
				result, err := ingestSvc.Run(ctx)
				if err != nil {
					return err
				}
				logger.Info("ingest completed",
					slog.Int("fetched", result.Fetched),
					slog.Int("upserted", result.Upserted),
					slog.Int64("pruned", result.Pruned),
					slog.Int("errors", len(result.Errors)))
				return nil
			},
		},
		{
			name:     "digest",
			schedule: cfg.DigestSchedule,
			run: func(ctx context.Context) error {
				result, err := notifySvc.RunDailyDigest(ctx)
				if err != nil {
					return err
				}
				logger.Info("digest completed",
					slog.Int("users_processed", result.UsersProcessed),
					slog.Int("delivered", result.Delivered),
					slog.Int("contests", result.ContestCount),
					slog.Int("errors", len(result.Errors)))
				return nil
			},
		},
		{
			name:     "reminder",
			schedule: cfg.ReminderSchedule,
			run: func(ctx context.Context) error {
				result, err := notifySvc.RunUpcomingReminders(ctx)
				if err != nil {
					return err
				}
				if result.ContestCount > 0 {
					logger.Info("reminder pass completed",
						slog.Int("contests", result.ContestCount),
						slog.Int("claimed", result.Claimed),
						slog.Int("skipped", result.Skipped),
						slog.Int("delivered", result.Delivered),
						slog.Int("errors", len(result.Errors)))
				}
				return nil
			},
		},
	}

	for _, job := range jobs {
		job := job
		if _, err := c.AddFunc(job.schedule, func() {
			runJob(logger, job.name, job.run, cfg.JobTimeout, metrics)
		}); err != nil {
			logger.Error("failed to add cron job",
				slog.String("job", job.name),
				slog.Any("error", err))
			os.Exit(1)
		}
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("worker shutting down")
	healthServer.SetReady(false)
	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("worker stopped")
}

// runJob executes one scheduled job with a timeout and metric recording.
func runJob(logger *slog.Logger, name string, run func(context.Context) error, timeout time.Duration, metrics *workerPkg.Metrics) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx); err != nil {
		logger.Error("job failed",
			slog.String("job", name),
			slog.String("error", respond.SanitizeError(err)))
		metrics.RecordJobRun(name, "failure")
		metrics.RecordJobDuration(name, time.Since(start).Seconds())
		return
	}

	metrics.RecordJobRun(name, "success")
	metrics.RecordJobDuration(name, time.Since(start).Seconds())
	metrics.RecordLastSuccess(name)
}
