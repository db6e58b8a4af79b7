// Package subscription manages user registrations, notification
// preferences, and the addresses each delivery channel needs: browser push
// subscriptions, native device tokens, and the chat identity.
package subscription

import (
	"context"
	"fmt"
	"strings"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/repository"
)

// Service implements the user-facing subscription operations. All methods
// are keyed by the external auth provider's user ID, as carried in the
// request token.
type Service struct {
	users repository.UserRepository
}

func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

// Sync returns the user registered under externalID, creating the account
// on first login. Preferences start disabled; channels opt in explicitly.
func (s *Service) Sync(ctx context.Context, externalID, email string) (*entity.User, error) {
	externalID = strings.TrimSpace(externalID)
	email = strings.TrimSpace(email)
	if externalID == "" || email == "" {
		return nil, fmt.Errorf("Sync: %w: external ID and email are required", entity.ErrInvalidInput)
	}

	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("Sync: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &entity.User{ExternalID: externalID, Email: email}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("Sync: %w", err)
	}
	return user, nil
}

// Get returns the user's current registration, including addresses.
func (s *Service) Get(ctx context.Context, externalID string) (*entity.User, error) {
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return user, nil
}

// UpdatePreferences replaces the user's preference flags. Enabling a
// channel with no stored address is allowed here; the dispatcher treats
// such users as ineligible until an address arrives.
func (s *Service) UpdatePreferences(ctx context.Context, externalID string, prefs entity.Preferences) (*entity.User, error) {
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("UpdatePreferences: %w", err)
	}
	if err := s.users.UpdatePreferences(ctx, user.ID, prefs); err != nil {
		return nil, fmt.Errorf("UpdatePreferences: %w", err)
	}
	user.Preferences = prefs
	return user, nil
}

// SubscribePush stores a browser push subscription and turns the push
// preference on. Re-subscribing an existing endpoint is a no-op.
func (s *Service) SubscribePush(ctx context.Context, externalID string, sub entity.PushSubscription) error {
	if err := entity.ValidatePushSubscription(sub); err != nil {
		return fmt.Errorf("SubscribePush: %w", err)
	}
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return fmt.Errorf("SubscribePush: %w", err)
	}
	if err := s.users.AddPushSubscription(ctx, user.ID, sub); err != nil {
		return fmt.Errorf("SubscribePush: %w", err)
	}
	return nil
}

// UnsubscribePush removes one endpoint, or every subscription when the
// endpoint is empty. Removing the last push address turns the push
// preference off.
func (s *Service) UnsubscribePush(ctx context.Context, externalID, endpoint string) error {
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return fmt.Errorf("UnsubscribePush: %w", err)
	}

	endpoints := []string{endpoint}
	if endpoint == "" {
		if len(user.PushSubscriptions) == 0 {
			return nil
		}
		endpoints = endpoints[:0]
		for _, sub := range user.PushSubscriptions {
			endpoints = append(endpoints, sub.Endpoint)
		}
	}

	if err := s.users.RemovePushSubscriptions(ctx, user.ID, endpoints); err != nil {
		return fmt.Errorf("UnsubscribePush: %w", err)
	}
	return nil
}

// RegisterDevice stores a native push token and turns the push preference
// on. Re-registering an existing token is a no-op.
func (s *Service) RegisterDevice(ctx context.Context, externalID, token string) error {
	if err := entity.ValidateDeviceToken(token); err != nil {
		return fmt.Errorf("RegisterDevice: %w", err)
	}
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return fmt.Errorf("RegisterDevice: %w", err)
	}
	if err := s.users.AddDeviceToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("RegisterDevice: %w", err)
	}
	return nil
}

// UnregisterDevices removes every stored device token for the user. Used
// when the native app is uninstalled or tokens have gone stale in bulk.
func (s *Service) UnregisterDevices(ctx context.Context, externalID string) error {
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return fmt.Errorf("UnregisterDevices: %w", err)
	}
	if len(user.DeviceTokens) == 0 {
		return nil
	}
	if err := s.users.RemoveDeviceTokens(ctx, user.ID, user.DeviceTokens); err != nil {
		return fmt.Errorf("UnregisterDevices: %w", err)
	}
	return nil
}

// ConnectChat links a chat identity to the user and turns the chat
// preference on.
func (s *Service) ConnectChat(ctx context.Context, externalID, chatID string) error {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return fmt.Errorf("ConnectChat: %w: chat ID is required", entity.ErrInvalidInput)
	}
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return fmt.Errorf("ConnectChat: %w", err)
	}
	if err := s.users.SetChatID(ctx, user.ID, chatID); err != nil {
		return fmt.Errorf("ConnectChat: %w", err)
	}
	return nil
}

// DisconnectChat clears the chat identity and turns the chat preference
// off.
func (s *Service) DisconnectChat(ctx context.Context, externalID string) error {
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return fmt.Errorf("DisconnectChat: %w", err)
	}
	if err := s.users.SetChatID(ctx, user.ID, ""); err != nil {
		return fmt.Errorf("DisconnectChat: %w", err)
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, externalID string) (*entity.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: external ID is required", entity.ErrInvalidInput)
	}
	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrNotFound
	}
	return user, nil
}
