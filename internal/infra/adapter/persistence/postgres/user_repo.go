package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/repository"

	"github.com/lib/pq"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) repository.UserRepository {
	return &UserRepo{db: db}
}

func (repo *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	const query = `
SELECT id, external_id, email, COALESCE(chat_id, ''), push_enabled, chat_enabled, created_at
FROM users
WHERE external_id = $1
LIMIT 1`
	var user entity.User
	err := repo.db.QueryRowContext(ctx, query, externalID).
		Scan(&user.ID, &user.ExternalID, &user.Email, &user.ChatID,
			&user.Preferences.Push, &user.Preferences.Chat, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByExternalID: %w", err)
	}

	if err := repo.loadAddresses(ctx, []*entity.User{&user}); err != nil {
		return nil, fmt.Errorf("GetByExternalID: %w", err)
	}
	return &user, nil
}

func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	const query = `
INSERT INTO users (external_id, email, push_enabled, chat_enabled)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		user.ExternalID, user.Email, user.Preferences.Push, user.Preferences.Chat).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListNotifiable selects users eligible for at least one channel. The
// eligibility predicate lives in SQL so the workflows never see users that
// hold a stale preference flag with no address behind it.
func (repo *UserRepo) ListNotifiable(ctx context.Context) ([]*entity.User, error) {
	const query = `
SELECT u.id, u.external_id, u.email, COALESCE(u.chat_id, ''), u.push_enabled, u.chat_enabled, u.created_at
FROM users u
WHERE (u.push_enabled AND (
        EXISTS (SELECT 1 FROM push_subscriptions ps WHERE ps.user_id = u.id)
        OR EXISTS (SELECT 1 FROM device_tokens dt WHERE dt.user_id = u.id)))
   OR (u.chat_enabled AND u.chat_id IS NOT NULL)
ORDER BY u.id`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListNotifiable: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*entity.User, 0, 64)
	for rows.Next() {
		var user entity.User
		if err := rows.Scan(&user.ID, &user.ExternalID, &user.Email, &user.ChatID,
			&user.Preferences.Push, &user.Preferences.Chat, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListNotifiable: Scan: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListNotifiable: %w", err)
	}

	if err := repo.loadAddresses(ctx, users); err != nil {
		return nil, fmt.Errorf("ListNotifiable: %w", err)
	}
	return users, nil
}

// loadAddresses populates push subscriptions and device tokens for the given
// users with two batched queries instead of 2N single-user lookups.
func (repo *UserRepo) loadAddresses(ctx context.Context, users []*entity.User) error {
	if len(users) == 0 {
		return nil
	}

	byID := make(map[int64]*entity.User, len(users))
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		byID[u.ID] = u
		ids = append(ids, u.ID)
	}

	const subsQuery = `
SELECT user_id, endpoint, p256dh, auth
FROM push_subscriptions
WHERE user_id = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, subsQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("loadAddresses: subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var userID int64
		var sub entity.PushSubscription
		if err := rows.Scan(&userID, &sub.Endpoint, &sub.P256dh, &sub.Auth); err != nil {
			return fmt.Errorf("loadAddresses: subscriptions: Scan: %w", err)
		}
		if u, ok := byID[userID]; ok {
			u.PushSubscriptions = append(u.PushSubscriptions, sub)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loadAddresses: subscriptions: %w", err)
	}

	const tokensQuery = `
SELECT user_id, token
FROM device_tokens
WHERE user_id = ANY($1)`
	tokenRows, err := repo.db.QueryContext(ctx, tokensQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("loadAddresses: tokens: %w", err)
	}
	defer func() { _ = tokenRows.Close() }()
	for tokenRows.Next() {
		var userID int64
		var token string
		if err := tokenRows.Scan(&userID, &token); err != nil {
			return fmt.Errorf("loadAddresses: tokens: Scan: %w", err)
		}
		if u, ok := byID[userID]; ok {
			u.DeviceTokens = append(u.DeviceTokens, token)
		}
	}
	return tokenRows.Err()
}

func (repo *UserRepo) UpdatePreferences(ctx context.Context, userID int64, prefs entity.Preferences) error {
	const query = `
UPDATE users SET push_enabled = $2, chat_enabled = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, userID, prefs.Push, prefs.Chat)
	if err != nil {
		return fmt.Errorf("UpdatePreferences: %w", err)
	}
	return requireOneRow(res, "UpdatePreferences")
}

func (repo *UserRepo) AddPushSubscription(ctx context.Context, userID int64, sub entity.PushSubscription) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("AddPushSubscription: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `
INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, endpoint) DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth`
	if _, err := tx.ExecContext(ctx, insert, userID, sub.Endpoint, sub.P256dh, sub.Auth); err != nil {
		return fmt.Errorf("AddPushSubscription: insert: %w", err)
	}

	// Registering an address implies the user wants the mechanism on.
	const enable = `UPDATE users SET push_enabled = TRUE WHERE id = $1`
	if _, err := tx.ExecContext(ctx, enable, userID); err != nil {
		return fmt.Errorf("AddPushSubscription: enable: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("AddPushSubscription: commit: %w", err)
	}
	return nil
}

func (repo *UserRepo) RemovePushSubscriptions(ctx context.Context, userID int64, endpoints []string) error {
	if len(endpoints) == 0 {
		return nil
	}
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("RemovePushSubscriptions: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const del = `
DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = ANY($2)`
	if _, err := tx.ExecContext(ctx, del, userID, pq.Array(endpoints)); err != nil {
		return fmt.Errorf("RemovePushSubscriptions: delete: %w", err)
	}

	if err := disablePushIfAddressless(ctx, tx, userID); err != nil {
		return fmt.Errorf("RemovePushSubscriptions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("RemovePushSubscriptions: commit: %w", err)
	}
	return nil
}

func (repo *UserRepo) AddDeviceToken(ctx context.Context, userID int64, token string) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("AddDeviceToken: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `
INSERT INTO device_tokens (user_id, token)
VALUES ($1, $2)
ON CONFLICT (user_id, token) DO NOTHING`
	if _, err := tx.ExecContext(ctx, insert, userID, token); err != nil {
		return fmt.Errorf("AddDeviceToken: insert: %w", err)
	}

	const enable = `UPDATE users SET push_enabled = TRUE WHERE id = $1`
	if _, err := tx.ExecContext(ctx, enable, userID); err != nil {
		return fmt.Errorf("AddDeviceToken: enable: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("AddDeviceToken: commit: %w", err)
	}
	return nil
}

func (repo *UserRepo) RemoveDeviceTokens(ctx context.Context, userID int64, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("RemoveDeviceTokens: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const del = `
DELETE FROM device_tokens WHERE user_id = $1 AND token = ANY($2)`
	if _, err := tx.ExecContext(ctx, del, userID, pq.Array(tokens)); err != nil {
		return fmt.Errorf("RemoveDeviceTokens: delete: %w", err)
	}

	if err := disablePushIfAddressless(ctx, tx, userID); err != nil {
		return fmt.Errorf("RemoveDeviceTokens: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("RemoveDeviceTokens: commit: %w", err)
	}
	return nil
}

func (repo *UserRepo) SetChatID(ctx context.Context, userID int64, chatID string) error {
	// Linking an identity turns the chat preference on; clearing it turns
	// the preference off. The flag can never point at an empty address.
	const query = `
UPDATE users SET chat_id = NULLIF($2, ''), chat_enabled = ($2 <> '') WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, userID, chatID)
	if err != nil {
		return fmt.Errorf("SetChatID: %w", err)
	}
	return requireOneRow(res, "SetChatID")
}

// disablePushIfAddressless enforces the self-healing preference invariant:
// a mechanism whose address set drained loses its preference flag.
func disablePushIfAddressless(ctx context.Context, tx *sql.Tx, userID int64) error {
	const query = `
UPDATE users SET push_enabled = FALSE
WHERE id = $1
  AND NOT EXISTS (SELECT 1 FROM push_subscriptions WHERE user_id = $1)
  AND NOT EXISTS (SELECT 1 FROM device_tokens WHERE user_id = $1)`
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("disable push: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return nil
}
