package entity

import "time"

// NotificationKind identifies the logical notification a log entry dedups.
type NotificationKind string

const (
	// KindDaily is the once-daily digest of the next 24 hours.
	KindDaily NotificationKind = "daily"

	// KindReminder30 is the single-contest reminder sent roughly 30
	// minutes before start.
	KindReminder30 NotificationKind = "reminder30"
)

// Valid reports whether k is a known notification kind.
func (k NotificationKind) Valid() bool {
	return k == KindDaily || k == KindReminder30
}

// NotificationLogEntry records that a notification for (user, contest, kind)
// has been attempted. The triple is globally unique; a failed insert on that
// uniqueness is the dedup signal, not an error. Entries are append-only and
// never mutated or deleted by this system.
type NotificationLogEntry struct {
	ID        int64
	UserID    int64
	ContestID int64
	Kind      NotificationKind
	SentAt    time.Time
}
