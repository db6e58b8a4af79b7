package notify

import (
	"context"
	"log/slog"

	"contest-reminder/internal/repository"
)

// FailedAddresses carries the addresses a delivery pass found permanently
// dead. Either field may be empty.
type FailedAddresses struct {
	Endpoints []string
	Tokens    []string
}

// HealthManager removes push addresses the channels reported as permanently
// unreachable. Removal also clears the user's push preference flag when the
// last address goes, so the next notifiable-user query skips them.
type HealthManager struct {
	users repository.UserRepository
}

func NewHealthManager(users repository.UserRepository) *HealthManager {
	return &HealthManager{users: users}
}

// Reconcile deletes the given addresses for the user. Cleanup failures are
// logged and counted but never returned: a failed delete must not abort the
// notification run, the same addresses will fail again and be retried on
// the next pass.
func (h *HealthManager) Reconcile(ctx context.Context, userID int64, failed FailedAddresses) {
	if len(failed.Endpoints) > 0 {
		if err := h.users.RemovePushSubscriptions(ctx, userID, failed.Endpoints); err != nil {
			recordCleanup("subscription", "error", len(failed.Endpoints))
			slog.Error("failed to remove dead push subscriptions",
				slog.Int64("user_id", userID),
				slog.Int("count", len(failed.Endpoints)),
				slog.Any("error", err))
		} else {
			recordCleanup("subscription", "removed", len(failed.Endpoints))
			slog.Info("removed dead push subscriptions",
				slog.Int64("user_id", userID),
				slog.Int("count", len(failed.Endpoints)))
		}
	}

	if len(failed.Tokens) > 0 {
		if err := h.users.RemoveDeviceTokens(ctx, userID, failed.Tokens); err != nil {
			recordCleanup("device_token", "error", len(failed.Tokens))
			slog.Error("failed to remove unregistered device tokens",
				slog.Int64("user_id", userID),
				slog.Int("count", len(failed.Tokens)),
				slog.Any("error", err))
		} else {
			recordCleanup("device_token", "removed", len(failed.Tokens))
			slog.Info("removed unregistered device tokens",
				slog.Int64("user_id", userID),
				slog.Int("count", len(failed.Tokens)))
		}
	}
}
