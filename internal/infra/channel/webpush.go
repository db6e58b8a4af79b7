package channel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/pkg/config"
)

// WebPushConfig contains configuration for the browser push sender.
type WebPushConfig struct {
	// Enabled indicates whether browser push is configured. It is forced
	// false when either VAPID key is missing.
	Enabled bool

	// VAPIDPublicKey / VAPIDPrivateKey identify this server to push services.
	VAPIDPublicKey  string
	VAPIDPrivateKey string

	// Subscriber is the contact URI reported to push services (mailto:).
	Subscriber string

	// Timeout bounds a single push service request.
	Timeout time.Duration
}

// LoadWebPushConfig reads browser push configuration from environment
// variables. Missing keys disable the channel rather than failing startup;
// the other channels proceed unaffected.
func LoadWebPushConfig(logger *slog.Logger) WebPushConfig {
	cfg := WebPushConfig{
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		Subscriber:      config.GetEnvString("VAPID_SUBSCRIBER", "mailto:admin@example.com"),
		Timeout:         config.GetEnvDuration("WEBPUSH_TIMEOUT", 10*time.Second),
	}
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		logger.Warn("VAPID keys not set, browser push disabled")
		return WebPushConfig{Enabled: false}
	}
	cfg.Enabled = true
	return cfg
}

// WebPushSender delivers payloads to browser push subscriptions.
type WebPushSender struct {
	config     WebPushConfig
	httpClient *http.Client
}

// NewWebPushSender creates a browser push sender. A disabled configuration
// yields a sender whose Send is a transient no-op failure so callers never
// need a nil check.
func NewWebPushSender(cfg WebPushConfig) *WebPushSender {
	return &WebPushSender{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the channel identifier used in logs and metric labels.
func (s *WebPushSender) Name() string { return "webpush" }

// Enabled reports whether VAPID keys were configured.
func (s *WebPushSender) Enabled() bool { return s.config.Enabled }

// Send delivers an encrypted payload to one subscription endpoint.
//
// Classification: 404 and 410 from the push service mean the subscription
// is gone and will never work again (permanent). Every other failure,
// including timeouts, is transient.
func (s *WebPushSender) Send(ctx context.Context, sub entity.PushSubscription, payload []byte) Outcome {
	if !s.config.Enabled {
		return transient(ErrChannelDisabled)
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &webpush.Options{
		HTTPClient:      s.httpClient,
		Subscriber:      s.config.Subscriber,
		VAPIDPublicKey:  s.config.VAPIDPublicKey,
		VAPIDPrivateKey: s.config.VAPIDPrivateKey,
		TTL:             3600,
	})
	if err != nil {
		return transient(fmt.Errorf("webpush send: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return delivered()
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// Subscription expired or unsubscribed on the push service side.
		return permanent(fmt.Errorf("webpush subscription gone: status %d", resp.StatusCode))
	default:
		return transient(fmt.Errorf("webpush send: status %d", resp.StatusCode))
	}
}
