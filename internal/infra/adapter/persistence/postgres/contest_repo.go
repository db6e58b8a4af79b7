package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/repository"
)

type ContestRepo struct {
	db *sql.DB
}

func NewContestRepo(db *sql.DB) repository.ContestRepository {
	return &ContestRepo{db: db}
}

const contestColumns = `id, external_id, name, platform, start_time, duration_seconds, url, created_at`

func scanContest(rows *sql.Rows) (*entity.Contest, error) {
	var c entity.Contest
	if err := rows.Scan(&c.ID, &c.ExternalID, &c.Name, &c.Platform,
		&c.StartTime, &c.DurationSeconds, &c.URL, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListStartingBetween returns contests with from <= start_time < to in
// ascending start order. Both workflow windows are half-open on the upper
// bound end to match each invocation stepping forward in time.
func (repo *ContestRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Contest, error) {
	const query = `
SELECT ` + contestColumns + `
FROM contests
WHERE start_time >= $1 AND start_time < $2
ORDER BY start_time ASC`
	rows, err := repo.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("ListStartingBetween: %w", err)
	}
	defer func() { _ = rows.Close() }()

	contests := make([]*entity.Contest, 0, 16)
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("ListStartingBetween: Scan: %w", err)
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

func (repo *ContestRepo) ListUpcoming(ctx context.Context, platform string) ([]*entity.Contest, error) {
	query := `
SELECT ` + contestColumns + `
FROM contests
WHERE start_time >= now()`
	args := []any{}
	if platform != "" {
		query += ` AND platform = $1`
		args = append(args, platform)
	}
	query += ` ORDER BY start_time ASC`

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListUpcoming: %w", err)
	}
	defer func() { _ = rows.Close() }()

	contests := make([]*entity.Contest, 0, 32)
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUpcoming: Scan: %w", err)
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

func (repo *ContestRepo) Platforms(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT platform FROM contests ORDER BY platform`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Platforms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	platforms := make([]string, 0, 16)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("Platforms: Scan: %w", err)
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

func (repo *ContestRepo) Upsert(ctx context.Context, contest *entity.Contest) error {
	const query = `
INSERT INTO contests (external_id, name, platform, start_time, duration_seconds, url)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (external_id) DO UPDATE
SET name = EXCLUDED.name,
    platform = EXCLUDED.platform,
    start_time = EXCLUDED.start_time,
    duration_seconds = EXCLUDED.duration_seconds,
    url = EXCLUDED.url
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, contest.ExternalID, contest.Name,
		contest.Platform, contest.StartTime, contest.DurationSeconds, contest.URL).
		Scan(&contest.ID)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *ContestRepo) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM contests WHERE start_time < $1`
	res, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteEndedBefore: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteEndedBefore: rows affected: %w", err)
	}
	return n, nil
}
