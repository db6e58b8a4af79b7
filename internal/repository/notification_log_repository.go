package repository

import (
	"context"

	"contest-reminder/internal/domain/entity"
)

// NotificationLogRepository is the dedup ledger over (user, contest, kind).
// The table carries a unique index over the triple; the insert racing that
// index is the only atomicity primitive the system relies on.
type NotificationLogRepository interface {
	// TryClaim atomically records the (user, contest, kind) triple.
	// It returns true if this call created the entry, false if the triple
	// already existed. Two concurrent claims on the same triple yield
	// exactly one true. A false return is not an error condition.
	TryClaim(ctx context.Context, userID, contestID int64, kind entity.NotificationKind) (bool, error)

	// CountByKind returns how many entries exist for a kind. Used by the
	// admin stats endpoint, never by the workflows.
	CountByKind(ctx context.Context, kind entity.NotificationKind) (int64, error)

	// ListRecent returns the newest entries, most recent first. Used by the
	// admin logs endpoint, never by the workflows.
	ListRecent(ctx context.Context, limit int) ([]*entity.NotificationLogEntry, error)
}
