package channel_test

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/infra/channel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWebPushConfig(t *testing.T) channel.WebPushConfig {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return channel.WebPushConfig{
		Enabled:         true,
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		Subscriber:      "mailto:ops@example.com",
		Timeout:         5 * time.Second,
	}
}

// testSubscription builds a subscription whose keys are a real P-256 pair,
// so the library can encrypt the payload against them.
func testSubscription(t *testing.T, endpoint string) entity.PushSubscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return entity.PushSubscription{
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(auth),
	}
}

func pushService(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebPushSender_Delivered(t *testing.T) {
	srv := pushService(t, http.StatusCreated)
	sender := channel.NewWebPushSender(testWebPushConfig(t))

	out := sender.Send(context.Background(), testSubscription(t, srv.URL), []byte(`{"title":"x"}`))

	assert.Equal(t, channel.Delivered, out.Status)
	assert.NoError(t, out.Err)
}

func TestWebPushSender_GoneSubscriptionIsPermanent(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		srv := pushService(t, status)
		sender := channel.NewWebPushSender(testWebPushConfig(t))

		out := sender.Send(context.Background(), testSubscription(t, srv.URL), []byte("{}"))

		assert.Equal(t, channel.PermanentFailure, out.Status, "status %d", status)
		assert.Error(t, out.Err)
	}
}

func TestWebPushSender_ServerErrorIsTransient(t *testing.T) {
	srv := pushService(t, http.StatusInternalServerError)
	sender := channel.NewWebPushSender(testWebPushConfig(t))

	out := sender.Send(context.Background(), testSubscription(t, srv.URL), []byte("{}"))

	assert.Equal(t, channel.TransientFailure, out.Status)
}

func TestWebPushSender_NetworkErrorIsTransient(t *testing.T) {
	srv := pushService(t, http.StatusCreated)
	srv.Close()
	sender := channel.NewWebPushSender(testWebPushConfig(t))

	out := sender.Send(context.Background(), testSubscription(t, srv.URL), []byte("{}"))

	assert.Equal(t, channel.TransientFailure, out.Status)
}

func TestWebPushSender_Disabled(t *testing.T) {
	sender := channel.NewWebPushSender(channel.WebPushConfig{Enabled: false})

	assert.False(t, sender.Enabled())
	out := sender.Send(context.Background(), entity.PushSubscription{}, []byte("{}"))
	assert.Equal(t, channel.TransientFailure, out.Status)
	assert.ErrorIs(t, out.Err, channel.ErrChannelDisabled)
}

func TestLoadWebPushConfig(t *testing.T) {
	t.Run("missing keys disable the channel", func(t *testing.T) {
		t.Setenv("VAPID_PUBLIC_KEY", "")
		t.Setenv("VAPID_PRIVATE_KEY", "")
		cfg := channel.LoadWebPushConfig(discardLogger())
		assert.False(t, cfg.Enabled)
	})

	t.Run("both keys enable the channel", func(t *testing.T) {
		t.Setenv("VAPID_PUBLIC_KEY", "pub")
		t.Setenv("VAPID_PRIVATE_KEY", "priv")
		t.Setenv("VAPID_SUBSCRIBER", "mailto:ops@example.com")
		cfg := channel.LoadWebPushConfig(discardLogger())
		assert.True(t, cfg.Enabled)
		assert.Equal(t, "mailto:ops@example.com", cfg.Subscriber)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
	})
}
