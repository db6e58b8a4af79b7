package db

import "database/sql"

// MigrateUp creates the schema. Statements are idempotent so re-running at
// startup is safe; there is no down path.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id           BIGSERIAL PRIMARY KEY,
    external_id  TEXT NOT NULL UNIQUE,
    email        TEXT NOT NULL,
    chat_id      TEXT,
    push_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    chat_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS push_subscriptions (
    id       BIGSERIAL PRIMARY KEY,
    user_id  BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    endpoint TEXT NOT NULL,
    p256dh   TEXT NOT NULL,
    auth     TEXT NOT NULL,
    UNIQUE (user_id, endpoint)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS device_tokens (
    id      BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token   TEXT NOT NULL,
    UNIQUE (user_id, token)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS contests (
    id               BIGSERIAL PRIMARY KEY,
    external_id      BIGINT NOT NULL UNIQUE,
    name             TEXT NOT NULL,
    platform         TEXT NOT NULL,
    start_time       TIMESTAMPTZ NOT NULL,
    duration_seconds BIGINT NOT NULL,
    url              TEXT NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// notification_log is append-only; the unique index over the triple is
	// the dedup ledger's entire correctness story.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS notification_log (
    id         BIGSERIAL PRIMARY KEY,
    user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    contest_id BIGINT NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
    kind       TEXT NOT NULL CHECK (kind IN ('daily', 'reminder30')),
    sent_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, contest_id, kind)
)`); err != nil {
		return err
	}

	indexes := []string{
		// Both workflow windows scan by start_time.
		`CREATE INDEX IF NOT EXISTS idx_contests_start_time ON contests(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_contests_platform ON contests(platform)`,
		// Address loads for the notifiable user set.
		`CREATE INDEX IF NOT EXISTS idx_push_subscriptions_user_id ON push_subscriptions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_device_tokens_user_id ON device_tokens(user_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
