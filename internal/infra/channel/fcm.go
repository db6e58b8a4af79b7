package channel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"contest-reminder/pkg/config"
)

// androidChannelID must match the notification channel the native app
// registers on first launch; messages to an unknown channel are shown with
// default importance on Android 8+.
const androidChannelID = "contest-reminders"

// FCMConfig contains configuration for the native push sender.
type FCMConfig struct {
	// Enabled indicates whether a service account credential was provided.
	Enabled bool

	// CredentialsJSON is the raw service account key. Kept as bytes and
	// handed straight to the SDK, never logged.
	CredentialsJSON []byte

	// Timeout bounds a single FCM request.
	Timeout time.Duration
}

// LoadFCMConfig reads the FIREBASE_SERVICE_ACCOUNT credential from the
// environment. An absent credential disables the channel; it never aborts
// startup.
func LoadFCMConfig(logger *slog.Logger) FCMConfig {
	raw := os.Getenv("FIREBASE_SERVICE_ACCOUNT")
	if raw == "" {
		logger.Warn("FIREBASE_SERVICE_ACCOUNT not set, native push disabled")
		return FCMConfig{Enabled: false}
	}
	return FCMConfig{
		Enabled:         true,
		CredentialsJSON: []byte(raw),
		Timeout:         config.GetEnvDuration("FCM_TIMEOUT", 10*time.Second),
	}
}

// FCMNotification is the visible part of a native push message.
type FCMNotification struct {
	Title string
	Body  string
	URL   string // deep link the app opens on tap
}

// FCMSender delivers native push messages through Firebase Cloud Messaging.
//
// The messaging client is constructed exactly once, here, and injected into
// the workflows; there is no lazily-initialized global. A sender built from
// a missing or malformed credential is a disabled no-op, so a broken native
// push setup can never take down the other two channels.
type FCMSender struct {
	client  *messaging.Client
	enabled bool
	timeout time.Duration
}

// NewFCMSender builds the FCM client from the given configuration.
// Malformed credentials degrade to a disabled sender with a logged warning.
func NewFCMSender(ctx context.Context, cfg FCMConfig, logger *slog.Logger) *FCMSender {
	if !cfg.Enabled {
		return &FCMSender{enabled: false}
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(cfg.CredentialsJSON))
	if err != nil {
		logger.Warn("invalid Firebase credentials, native push disabled", slog.Any("error", err))
		return &FCMSender{enabled: false}
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Warn("failed to create FCM messaging client, native push disabled", slog.Any("error", err))
		return &FCMSender{enabled: false}
	}

	return &FCMSender{
		client:  client,
		enabled: true,
		timeout: cfg.Timeout,
	}
}

// Name returns the channel identifier used in logs and metric labels.
func (s *FCMSender) Name() string { return "fcm" }

// Enabled reports whether the messaging client was constructed.
func (s *FCMSender) Enabled() bool { return s.enabled }

// Send delivers one notification to one device token.
//
// Classification: an unregistered or invalid token is permanent (the device
// uninstalled the app or rotated its token); everything else is transient.
func (s *FCMSender) Send(ctx context.Context, token string, n FCMNotification) Outcome {
	if !s.enabled {
		return transient(ErrChannelDisabled)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: map[string]string{
			"url": n.URL,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: androidChannelID,
				Sound:     "default",
			},
		},
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) {
			return permanent(fmt.Errorf("fcm token not registered: %w", err))
		}
		return transient(fmt.Errorf("fcm send: %w", err))
	}
	return delivered()
}
