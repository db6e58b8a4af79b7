package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"contest-reminder/internal/infra/adapter/persistence/postgres"
	"contest-reminder/internal/infra/channel"
	"contest-reminder/internal/infra/clist"
	"contest-reminder/internal/infra/db"
	"contest-reminder/internal/observability/logging"
	"contest-reminder/internal/usecase/ingest"
	"contest-reminder/internal/usecase/notify"
	"contest-reminder/internal/usecase/subscription"
	"contest-reminder/pkg/config"

	hhttp "contest-reminder/internal/handler/http"
	hadmin "contest-reminder/internal/handler/http/admin"
	hcontest "contest-reminder/internal/handler/http/contest"
	hcron "contest-reminder/internal/handler/http/cron"
	"contest-reminder/internal/handler/http/middleware"
	"contest-reminder/internal/handler/http/requestid"
	huser "contest-reminder/internal/handler/http/user"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	validateJWTSecret(logger)
	validateCronSecret(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, version)

	runServer(logger, handler, version)
}

// validateJWTSecret enforces minimum strength for the token verification key.
// The server refuses to start without it: every user endpoint depends on it.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

// validateCronSecret warns when the trigger endpoints are unusable. The
// server still starts: scheduled work can run in the worker binary instead.
func validateCronSecret(logger *slog.Logger) {
	if os.Getenv("CRON_SECRET") == "" {
		logger.Warn("CRON_SECRET not set, cron trigger endpoints will reject all requests")
	}
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires repositories, services and delivery channels into the
// HTTP handler tree.
func setupServer(logger *slog.Logger, database *sql.DB, version string) http.Handler {
	users := postgres.NewUserRepo(database)
	contests := postgres.NewContestRepo(database)
	notificationLog := postgres.NewNotificationLogRepo(database)

	subSvc := subscription.NewService(users)

	webPushCfg := channel.LoadWebPushConfig(logger)
	fcmCfg := channel.LoadFCMConfig(logger)
	telegramCfg := channel.LoadTelegramConfig(logger)

	browser := channel.NewWebPushSender(webPushCfg)
	native := channel.NewFCMSender(context.Background(), fcmCfg, logger)
	chat := channel.NewTelegramSender(telegramCfg, logger)

	dispatcher := notify.NewDispatcher(browser, native, chat, notify.NewHealthManager(users))
	notifySvc := notify.NewService(users, contests, notificationLog, dispatcher, notify.Config{
		BaseURL: config.GetEnvString("APP_BASE_URL", "http://localhost:3000"),
	})

	clistClient := clist.NewClient(clist.LoadConfig(), nil)
	ingestSvc := ingest.NewService(clistClient, contests, ingest.Config{})

	mux := http.NewServeMux()
	huser.Register(mux, subSvc, webPushCfg.VAPIDPublicKey)
	hcontest.Register(mux, contests)
	hcron.Register(mux, notifySvc, notifySvc, ingestSvc)
	hadmin.Register(mux, contests, notificationLog)

	mux.Handle("GET /healthz", &hhttp.HealthHandler{
		DB:      database,
		Version: version,
		Channels: hhttp.ChannelStatus{
			BrowserPush: webPushCfg.Enabled,
			NativePush:  fcmCfg.Enabled,
			Chat:        telegramCfg.Enabled,
		},
	})
	mux.Handle("GET /readyz", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /livez", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, mux)
}

// applyMiddleware wraps the handler with the shared middleware chain.
// Order, outermost first: CORS, request ID, rate limit, recovery, logging,
// input validation, timeout, metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	corsConfig := middleware.LoadCORSConfig()
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	rateLimit := config.GetEnvInt("RATE_LIMIT_REQUESTS", 120)
	rateWindow := config.GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute)
	limiter := hhttp.NewRateLimiter(rateLimit, rateWindow)

	requestTimeout := config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Timeout(requestTimeout)(chain)
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = limiter.Limit(chain)
	chain = requestid.Middleware(chain)
	chain = middleware.CORS(corsConfig)(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := config.GetEnvString("API_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
