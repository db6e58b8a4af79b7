// Package contest provides the read-only HTTP handlers over the contest
// catalog.
package contest

import (
	"net/http"
	"time"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/handler/http/respond"
	"contest-reminder/internal/repository"
)

// DTO is the JSON shape of a catalog entry.
type DTO struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Platform        string    `json:"platform"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	URL             string    `json:"url"`
}

func toDTO(c *entity.Contest) DTO {
	return DTO{
		ID:              c.ID,
		Name:            c.Name,
		Platform:        c.Platform,
		StartTime:       c.StartTime,
		DurationSeconds: c.DurationSeconds,
		URL:             c.URL,
	}
}

// Register mounts the catalog endpoints. Both are public: the contest list
// backs the landing page before login.
func Register(mux *http.ServeMux, contests repository.ContestRepository) {
	mux.Handle("GET /contests", ListHandler{Contests: contests})
	mux.Handle("GET /contests/platforms", PlatformsHandler{Contests: contests})
}

// ListHandler returns upcoming contests, optionally filtered by platform.
type ListHandler struct{ Contests repository.ContestRepository }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	contests, err := h.Contests.ListUpcoming(r.Context(), r.URL.Query().Get("platform"))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(contests))
	for _, c := range contests {
		out = append(out, toDTO(c))
	}
	respond.JSON(w, http.StatusOK, out)
}

// PlatformsHandler returns the distinct platforms in the catalog.
type PlatformsHandler struct{ Contests repository.ContestRepository }

func (h PlatformsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.Contests.Platforms(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if platforms == nil {
		platforms = []string{}
	}
	respond.JSON(w, http.StatusOK, platforms)
}
