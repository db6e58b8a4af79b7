package user

import (
	"net/http"

	"contest-reminder/internal/handler/http/auth"
	"contest-reminder/internal/usecase/subscription"
)

// Register mounts the user endpoints. Everything except the VAPID key
// lookup requires a bearer token; the key is needed by the service worker
// before any account state exists.
func Register(mux *http.ServeMux, svc *subscription.Service, vapidPublicKey string) {
	mux.Handle("POST /users/sync", auth.Middleware(SyncHandler{Svc: svc}))
	mux.Handle("GET /users/me", auth.Middleware(GetHandler{Svc: svc}))
	mux.Handle("PUT /users/preferences", auth.Middleware(PreferencesHandler{Svc: svc}))

	mux.Handle("POST /users/push/subscribe", auth.Middleware(SubscribePushHandler{Svc: svc}))
	mux.Handle("POST /users/push/unsubscribe", auth.Middleware(UnsubscribePushHandler{Svc: svc}))
	mux.Handle("GET /users/push/vapid-key", VAPIDKeyHandler{PublicKey: vapidPublicKey})

	mux.Handle("POST /users/devices", auth.Middleware(RegisterDeviceHandler{Svc: svc}))
	mux.Handle("DELETE /users/devices", auth.Middleware(UnregisterDevicesHandler{Svc: svc}))

	mux.Handle("POST /users/telegram/connect", auth.Middleware(ConnectChatHandler{Svc: svc}))
	mux.Handle("POST /users/telegram/disconnect", auth.Middleware(DisconnectChatHandler{Svc: svc}))
}
