package repository

import (
	"context"
	"time"

	"contest-reminder/internal/domain/entity"
)

// ContestRepository manages the contest catalog. The catalog is written by
// the ingestion workflow and read-only to the notification workflows.
type ContestRepository interface {
	// ListStartingBetween returns contests with from <= start_time < to,
	// ascending by start time. Both workflows build their windows on this.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Contest, error)

	// ListUpcoming returns contests that have not started yet, ascending
	// by start time, optionally filtered by platform ("" means all).
	ListUpcoming(ctx context.Context, platform string) ([]*entity.Contest, error)

	// Platforms returns the distinct platform names present in the catalog.
	Platforms(ctx context.Context) ([]string, error)

	// Upsert creates the contest or refreshes its fields, keyed by
	// ExternalID. Re-ingestion of an unchanged contest is a no-op refresh.
	Upsert(ctx context.Context, contest *entity.Contest) error

	// DeleteEndedBefore prunes contests whose start time is older than the
	// cutoff. Used by ingestion housekeeping, never by notification runs.
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
