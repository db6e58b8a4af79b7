package entity_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"contest-reminder/internal/domain/entity"
)

func TestValidatePushSubscription(t *testing.T) {
	valid := entity.PushSubscription{
		Endpoint: "https://fcm.googleapis.com/fcm/send/abc123",
		P256dh:   "key",
		Auth:     "secret",
	}

	tests := []struct {
		name    string
		mutate  func(*entity.PushSubscription)
		wantErr string
	}{
		{name: "valid subscription"},
		{
			name:    "empty endpoint",
			mutate:  func(s *entity.PushSubscription) { s.Endpoint = "" },
			wantErr: "endpoint",
		},
		{
			name:    "oversized endpoint",
			mutate:  func(s *entity.PushSubscription) { s.Endpoint = "https://x.example/" + strings.Repeat("a", 2048) },
			wantErr: "endpoint",
		},
		{
			name:    "http scheme rejected",
			mutate:  func(s *entity.PushSubscription) { s.Endpoint = "http://push.example.com/sub" },
			wantErr: "https",
		},
		{
			name:    "missing host",
			mutate:  func(s *entity.PushSubscription) { s.Endpoint = "https:///path-only" },
			wantErr: "host",
		},
		{
			name:    "blank p256dh",
			mutate:  func(s *entity.PushSubscription) { s.P256dh = "  " },
			wantErr: "p256dh",
		},
		{
			name:    "blank auth",
			mutate:  func(s *entity.PushSubscription) { s.Auth = "" },
			wantErr: "auth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := valid
			if tt.mutate != nil {
				tt.mutate(&sub)
			}
			err := entity.ValidatePushSubscription(sub)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateDeviceToken(t *testing.T) {
	assert.NoError(t, entity.ValidateDeviceToken("fcm-token"))
	assert.Error(t, entity.ValidateDeviceToken(""))
	assert.Error(t, entity.ValidateDeviceToken("   "))
	assert.Error(t, entity.ValidateDeviceToken(strings.Repeat("a", 4097)))
}

func TestNotificationKindValid(t *testing.T) {
	assert.True(t, entity.KindDaily.Valid())
	assert.True(t, entity.KindReminder30.Valid())
	assert.False(t, entity.NotificationKind("weekly").Valid())
	assert.False(t, entity.NotificationKind("").Valid())
}

func TestUserEligibility(t *testing.T) {
	sub := entity.PushSubscription{Endpoint: "https://push.example.com/a", P256dh: "k", Auth: "a"}

	t.Run("push needs flag and address", func(t *testing.T) {
		u := &entity.User{Preferences: entity.Preferences{Push: true}}
		assert.False(t, u.PushEligible(), "flag without address")

		u.PushSubscriptions = []entity.PushSubscription{sub}
		assert.True(t, u.PushEligible())

		u.Preferences.Push = false
		assert.False(t, u.PushEligible(), "address without flag")
	})

	t.Run("device token alone satisfies push", func(t *testing.T) {
		u := &entity.User{
			Preferences:  entity.Preferences{Push: true},
			DeviceTokens: []string{"fcm-token"},
		}
		assert.True(t, u.PushEligible())
	})

	t.Run("chat needs flag and linked id", func(t *testing.T) {
		u := &entity.User{Preferences: entity.Preferences{Chat: true}}
		assert.False(t, u.ChatEligible())

		u.ChatID = "12345"
		assert.True(t, u.ChatEligible())
	})

	t.Run("notifiable is any channel", func(t *testing.T) {
		u := &entity.User{}
		assert.False(t, u.Notifiable())

		u.Preferences.Chat = true
		u.ChatID = "12345"
		assert.True(t, u.Notifiable())
	})
}

func TestContestDuration(t *testing.T) {
	c := &entity.Contest{DurationSeconds: 7200}
	assert.Equal(t, 2*time.Hour, c.Duration())
}
