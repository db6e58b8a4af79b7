// Package repository defines the persistence interfaces consumed by the
// use case layer. Concrete implementations live under
// internal/infra/adapter/persistence.
package repository

import (
	"context"

	"contest-reminder/internal/domain/entity"
)

// UserRepository manages registered users and their notification addresses.
//
// Workflows re-read user state on every invocation; implementations must not
// cache across calls, or cleanup performed by the subscription health manager
// would be invisible to the next run.
type UserRepository interface {
	// GetByExternalID returns the user registered under the external auth
	// provider's ID, or (nil, nil) if no such user exists.
	GetByExternalID(ctx context.Context, externalID string) (*entity.User, error)

	// Create registers a new user. The caller is expected to have checked
	// for an existing registration first (sync endpoint semantics).
	Create(ctx context.Context, user *entity.User) error

	// ListNotifiable returns every user eligible for at least one channel:
	// (push enabled AND at least one push address) OR (chat enabled AND a
	// chat identity). Users matching neither are not returned.
	// Address sets are fully populated on the returned users.
	ListNotifiable(ctx context.Context) ([]*entity.User, error)

	// UpdatePreferences replaces the user's preference flags.
	UpdatePreferences(ctx context.Context, userID int64, prefs entity.Preferences) error

	// AddPushSubscription stores a browser push subscription, deduplicated
	// by endpoint, and turns the push preference on.
	AddPushSubscription(ctx context.Context, userID int64, sub entity.PushSubscription) error

	// RemovePushSubscriptions deletes exactly the given endpoints from the
	// user's subscription set. If the set becomes empty and the user holds
	// no device tokens, the push preference is forced off.
	RemovePushSubscriptions(ctx context.Context, userID int64, endpoints []string) error

	// AddDeviceToken stores a native push token, deduplicated by value,
	// and turns the push preference on.
	AddDeviceToken(ctx context.Context, userID int64, token string) error

	// RemoveDeviceTokens deletes exactly the given tokens from the user's
	// token set. If the set becomes empty and the user holds no push
	// subscriptions, the push preference is forced off.
	RemoveDeviceTokens(ctx context.Context, userID int64, tokens []string) error

	// SetChatID links (non-empty) or clears (empty) the user's chat-bot
	// identity, flipping the chat preference to match.
	SetChatID(ctx context.Context, userID int64, chatID string) error
}
