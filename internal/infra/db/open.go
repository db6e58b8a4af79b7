package db

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"contest-reminder/pkg/config"
)

// Open creates and configures the database connection pool.
// It reads DATABASE_URL from environment and applies pool settings, which
// can be tuned via DB_MAX_OPEN_CONNS / DB_MAX_IDLE_CONNS /
// DB_CONN_MAX_LIFETIME / DB_CONN_MAX_IDLE_TIME.
func Open() *sql.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal(err)
	}

	maxOpen := config.GetEnvInt("DB_MAX_OPEN_CONNS", 25)
	maxIdle := config.GetEnvInt("DB_MAX_IDLE_CONNS", 10)
	maxLifetime := config.GetEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour)
	maxIdleTime := config.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute)

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	db.SetConnMaxIdleTime(maxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", maxOpen),
		slog.Int("max_idle_conns", maxIdle),
		slog.Duration("conn_max_lifetime", maxLifetime),
		slog.Duration("conn_max_idle_time", maxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	slog.Info("database connection established successfully")
	return db
}
