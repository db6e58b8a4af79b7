// Package admin provides the operator-only stats and ledger inspection
// endpoints.
package admin

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/handler/http/respond"
	"contest-reminder/internal/repository"
)

// Register mounts the admin endpoints, guarded by the operator email
// header. An unset ADMIN_EMAIL disables the surface entirely.
func Register(mux *http.ServeMux, contests repository.ContestRepository, log repository.NotificationLogRepository) {
	mux.Handle("GET /admin/stats", Auth(StatsHandler{Contests: contests, Log: log}))
	mux.Handle("GET /admin/logs", Auth(LogsHandler{Log: log}))
}

// Auth admits only requests whose X-Admin-Email header matches the
// configured operator address.
func Auth(next http.Handler) http.Handler {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if adminEmail == "" || r.Header.Get("X-Admin-Email") != adminEmail {
			respond.SafeError(w, http.StatusForbidden, errors.New("admins only"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StatsHandler reports catalog size and how many notifications each
// workflow has recorded.
type StatsHandler struct {
	Contests repository.ContestRepository
	Log      repository.NotificationLogRepository
}

func (h StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	upcoming, err := h.Contests.ListUpcoming(ctx, "")
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	digests, err := h.Log.CountByKind(ctx, entity.KindDaily)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	reminders, err := h.Log.CountByKind(ctx, entity.KindReminder30)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"contests": map[string]any{
			"upcoming": len(upcoming),
		},
		"notifications": map[string]int64{
			"daily":      digests,
			"reminder30": reminders,
		},
		"server_time": time.Now().UTC(),
	})
}

// defaultLogLimit bounds the logs listing; the ledger is append-only and
// unbounded, so the endpoint never returns it whole.
const defaultLogLimit = 100

// LogsHandler returns the newest dedup ledger entries for inspection.
type LogsHandler struct {
	Log repository.NotificationLogRepository
}

type logEntryResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ContestID int64     `json:"contest_id"`
	Kind      string    `json:"kind"`
	SentAt    time.Time `json:"sent_at"`
}

func (h LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			respond.SafeError(w, http.StatusBadRequest, errors.New("limit must be between 1 and 1000"))
			return
		}
		limit = n
	}

	entries, err := h.Log.ListRecent(r.Context(), limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]logEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, logEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			ContestID: e.ContestID,
			Kind:      string(e.Kind),
			SentAt:    e.SentAt,
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"logs": out})
}
