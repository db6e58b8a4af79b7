// Package user provides the HTTP handlers for registration, preferences,
// and notification address management.
package user

import (
	"time"

	"contest-reminder/internal/domain/entity"
)

// PreferencesDTO is the JSON shape of the per-channel opt-in flags.
type PreferencesDTO struct {
	Push bool `json:"push"`
	Chat bool `json:"chat"`
}

// DTO is the JSON shape of a user profile. Push subscription keys and
// device token values never leave the server; only endpoints and counts do.
type DTO struct {
	ID            int64          `json:"id"`
	Email         string         `json:"email"`
	Preferences   PreferencesDTO `json:"preferences"`
	PushEndpoints []string       `json:"push_endpoints"`
	DeviceTokens  int            `json:"device_tokens"`
	ChatLinked    bool           `json:"chat_linked"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toDTO(u *entity.User) DTO {
	endpoints := make([]string, 0, len(u.PushSubscriptions))
	for _, sub := range u.PushSubscriptions {
		endpoints = append(endpoints, sub.Endpoint)
	}
	return DTO{
		ID:    u.ID,
		Email: u.Email,
		Preferences: PreferencesDTO{
			Push: u.Preferences.Push,
			Chat: u.Preferences.Chat,
		},
		PushEndpoints: endpoints,
		DeviceTokens:  len(u.DeviceTokens),
		ChatLinked:    u.ChatID != "",
		CreatedAt:     u.CreatedAt,
	}
}
