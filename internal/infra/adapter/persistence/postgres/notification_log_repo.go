package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/repository"
)

type NotificationLogRepo struct {
	db *sql.DB
}

func NewNotificationLogRepo(db *sql.DB) repository.NotificationLogRepository {
	return &NotificationLogRepo{db: db}
}

// TryClaim races the unique index over (user_id, contest_id, kind).
// ON CONFLICT DO NOTHING makes the losing insert affect zero rows instead of
// failing, so "already claimed" is an ordinary false return. The database
// linearizes concurrent claims; no additional locking exists or is needed.
func (repo *NotificationLogRepo) TryClaim(ctx context.Context, userID, contestID int64, kind entity.NotificationKind) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("TryClaim: kind %q: %w", kind, entity.ErrInvalidInput)
	}

	const query = `
INSERT INTO notification_log (user_id, contest_id, kind)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, contest_id, kind) DO NOTHING`
	res, err := repo.db.ExecContext(ctx, query, userID, contestID, string(kind))
	if err != nil {
		return false, fmt.Errorf("TryClaim: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("TryClaim: rows affected: %w", err)
	}
	return n == 1, nil
}

func (repo *NotificationLogRepo) CountByKind(ctx context.Context, kind entity.NotificationKind) (int64, error) {
	const query = `SELECT COUNT(*) FROM notification_log WHERE kind = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, string(kind)).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByKind: %w", err)
	}
	return count, nil
}

func (repo *NotificationLogRepo) ListRecent(ctx context.Context, limit int) ([]*entity.NotificationLogEntry, error) {
	const query = `
SELECT id, user_id, contest_id, kind, sent_at
FROM notification_log
ORDER BY sent_at DESC, id DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*entity.NotificationLogEntry, 0, limit)
	for rows.Next() {
		var e entity.NotificationLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ContestID, &e.Kind, &e.SentAt); err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	return entries, nil
}
