// Package cron exposes the scheduled workflows as HTTP trigger endpoints
// for platforms that schedule work by calling URLs. Each endpoint is
// guarded by a shared secret carried as a bearer token.
package cron

import (
	"context"
	"errors"
	"net/http"
	"os"

	"contest-reminder/internal/handler/http/respond"
	"contest-reminder/internal/usecase/ingest"
	"contest-reminder/internal/usecase/notify"
)

// DigestRunner runs the daily digest workflow.
type DigestRunner interface {
	RunDailyDigest(ctx context.Context) (*notify.DigestResult, error)
}

// ReminderRunner runs the pre-start reminder workflow.
type ReminderRunner interface {
	RunUpcomingReminders(ctx context.Context) (*notify.ReminderResult, error)
}

// IngestRunner runs catalog ingestion.
type IngestRunner interface {
	Run(ctx context.Context) (*ingest.Result, error)
}

// Register mounts the cron trigger endpoints.
func Register(mux *http.ServeMux, digest DigestRunner, reminders ReminderRunner, ingestion IngestRunner) {
	mux.Handle("POST /cron/daily-digest", Auth(DigestHandler{Runner: digest}))
	mux.Handle("POST /cron/upcoming-reminders", Auth(ReminderHandler{Runner: reminders}))
	mux.Handle("POST /cron/fetch-contests", Auth(IngestHandler{Runner: ingestion}))
}

// Auth requires "Bearer <CRON_SECRET>" on the wrapped endpoint. An unset
// secret rejects every request: trigger endpoints must never be open by
// accident.
func Auth(next http.Handler) http.Handler {
	secret := os.Getenv("CRON_SECRET")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			respond.SafeError(w, http.StatusInternalServerError, errors.New("cron secret not configured"))
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+secret {
			respond.SafeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DigestHandler triggers the daily digest.
type DigestHandler struct{ Runner DigestRunner }

func (h DigestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result, err := h.Runner.RunDailyDigest(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"users_processed": result.UsersProcessed,
		"delivered":       result.Delivered,
		"contests":        result.ContestCount,
		"errors":          len(result.Errors),
	})
}

// ReminderHandler triggers a reminder pass.
type ReminderHandler struct{ Runner ReminderRunner }

func (h ReminderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result, err := h.Runner.RunUpcomingReminders(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"contests":  result.ContestCount,
		"claimed":   result.Claimed,
		"skipped":   result.Skipped,
		"delivered": result.Delivered,
		"errors":    len(result.Errors),
	})
}

// IngestHandler triggers catalog ingestion.
type IngestHandler struct{ Runner IngestRunner }

func (h IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result, err := h.Runner.Run(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"fetched":  result.Fetched,
		"upserted": result.Upserted,
		"pruned":   result.Pruned,
		"errors":   len(result.Errors),
	})
}
