package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/handler/http/auth"
	"contest-reminder/internal/handler/http/respond"
	"contest-reminder/internal/usecase/subscription"
)

// SyncHandler registers the authenticated subject on first login and
// returns the existing profile afterwards.
type SyncHandler struct{ Svc *subscription.Service }

func (h SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	user, err := h.Svc.Sync(r.Context(), auth.Subject(r.Context()), req.Email)
	if err != nil {
		respond.SafeError(w, respond.StatusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(user))
}

// GetHandler returns the caller's profile.
type GetHandler struct{ Svc *subscription.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := h.Svc.Get(r.Context(), auth.Subject(r.Context()))
	if err != nil {
		respond.SafeError(w, respond.StatusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(user))
}

// PreferencesHandler replaces the caller's channel opt-in flags.
type PreferencesHandler struct{ Svc *subscription.Service }

func (h PreferencesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preferences PreferencesDTO `json:"preferences"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	user, err := h.Svc.UpdatePreferences(r.Context(), auth.Subject(r.Context()), entity.Preferences{
		Push: req.Preferences.Push,
		Chat: req.Preferences.Chat,
	})
	if err != nil {
		respond.SafeError(w, respond.StatusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(user))
}

// SubscribePushHandler stores a browser push subscription.
type SubscribePushHandler struct{ Svc *subscription.Service }

func (h SubscribePushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subscription struct {
			Endpoint string `json:"endpoint"`
			Keys     struct {
				P256dh string `json:"p256dh"`
				Auth   string `json:"auth"`
			} `json:"keys"`
		} `json:"subscription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	sub := entity.PushSubscription{
		Endpoint: req.Subscription.Endpoint,
		P256dh:   req.Subscription.Keys.P256dh,
		Auth:     req.Subscription.Keys.Auth,
	}
	if err := h.Svc.SubscribePush(r.Context(), auth.Subject(r.Context()), sub); err != nil {
		respond.SafeError(w, respond.StatusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UnsubscribePushHandler removes one push subscription, or all of them
// when no endpoint is given.
type UnsubscribePushHandler struct{ Svc *subscription.Service }

func (h UnsubscribePushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	if err := h.Svc.UnsubscribePush(r.Context(), auth.Subject(r.Context()), req.Endpoint); err != nil {
		respond.SafeError(w, respond.StatusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// VAPIDKeyHandler serves the public VAPID key the browser needs to create
// a push subscription.
type VAPIDKeyHandler struct{ PublicKey string }

func (h VAPIDKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.PublicKey == "" {
		respond.SafeError(w, http.StatusServiceUnavailable, errors.New("web push is not configured"))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"public_key": h.PublicKey})
}

// RegisterDeviceHandler stores a native push token.
type RegisterDeviceHandler struct{ Svc *subscription.Service }

func (h RegisterDeviceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	if err := h.Svc.RegisterDevice(r.Context(), auth.Subject(r.Context()), req.Token); err != nil {
		respond.SafeError(w, respond.StatusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UnregisterDevicesHandler clears every stored device token.
type UnregisterDevicesHandler struct{ Svc *subscription.Service }

func (h UnregisterDevicesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.UnregisterDevices(r.Context(), auth.Subject(r.Context())); err != nil {
		respond.SafeError(w, respond.StatusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ConnectChatHandler links a chat identity to the caller.
type ConnectChatHandler struct{ Svc *subscription.Service }

func (h ConnectChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID string `json:"chat_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	if err := h.Svc.ConnectChat(r.Context(), auth.Subject(r.Context()), req.ChatID); err != nil {
		respond.SafeError(w, respond.StatusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DisconnectChatHandler unlinks the caller's chat identity.
type DisconnectChatHandler struct{ Svc *subscription.Service }

func (h DisconnectChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DisconnectChat(r.Context(), auth.Subject(r.Context())); err != nil {
		respond.SafeError(w, respond.StatusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
