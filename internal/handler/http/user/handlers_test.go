package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/usecase/subscription"
)

type stubUserRepo struct {
	users map[string]*entity.User

	addedSubs     int
	removedTokens [][]string
	chatID        string
	chatSet       bool
}

func (s *stubUserRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	return s.users[externalID], nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *entity.User) error {
	user.ID = 1
	if s.users == nil {
		s.users = make(map[string]*entity.User)
	}
	s.users[user.ExternalID] = user
	return nil
}

func (s *stubUserRepo) ListNotifiable(ctx context.Context) ([]*entity.User, error) { return nil, nil }

func (s *stubUserRepo) UpdatePreferences(ctx context.Context, userID int64, prefs entity.Preferences) error {
	return nil
}

func (s *stubUserRepo) AddPushSubscription(ctx context.Context, userID int64, sub entity.PushSubscription) error {
	s.addedSubs++
	return nil
}

func (s *stubUserRepo) RemovePushSubscriptions(ctx context.Context, userID int64, endpoints []string) error {
	return nil
}

func (s *stubUserRepo) AddDeviceToken(ctx context.Context, userID int64, token string) error {
	return nil
}

func (s *stubUserRepo) RemoveDeviceTokens(ctx context.Context, userID int64, tokens []string) error {
	s.removedTokens = append(s.removedTokens, tokens)
	return nil
}

func (s *stubUserRepo) SetChatID(ctx context.Context, userID int64, chatID string) error {
	s.chatID = chatID
	s.chatSet = true
	return nil
}

func bearerFor(t *testing.T, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + signed
}

func newMux(t *testing.T, repo *stubUserRepo) *http.ServeMux {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	mux := http.NewServeMux()
	Register(mux, subscription.NewService(repo), "vapid-public-key")
	return mux
}

func TestSyncEndpoint_CreatesUser(t *testing.T) {
	repo := &stubUserRepo{}
	mux := newMux(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/users/sync",
		strings.NewReader(`{"email":"a@example.com"}`))
	req.Header.Set("Authorization", bearerFor(t, "clerk-1"))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@example.com"`)
	assert.NotNil(t, repo.users["clerk-1"])
}

func TestSyncEndpoint_RequiresAuth(t *testing.T) {
	mux := newMux(t, &stubUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/users/sync",
		strings.NewReader(`{"email":"a@example.com"}`))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetEndpoint_UnknownUser(t *testing.T) {
	mux := newMux(t, &stubUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", bearerFor(t, "clerk-404"))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubscribePushEndpoint(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*entity.User{
		"clerk-1": {ID: 1, ExternalID: "clerk-1"},
	}}
	mux := newMux(t, repo)

	body := `{"subscription":{"endpoint":"https://push.example.com/s/1","keys":{"p256dh":"pk","auth":"as"}}}`
	req := httptest.NewRequest(http.MethodPost, "/users/push/subscribe", strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, "clerk-1"))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.addedSubs)
}

func TestSubscribePushEndpoint_RejectsInsecureEndpoint(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*entity.User{
		"clerk-1": {ID: 1, ExternalID: "clerk-1"},
	}}
	mux := newMux(t, repo)

	body := `{"subscription":{"endpoint":"http://push.example.com/s/1","keys":{"p256dh":"pk","auth":"as"}}}`
	req := httptest.NewRequest(http.MethodPost, "/users/push/subscribe", strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, "clerk-1"))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, repo.addedSubs)
}

func TestVAPIDKeyEndpoint_IsPublic(t *testing.T) {
	mux := newMux(t, &stubUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/users/push/vapid-key", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vapid-public-key")
}

func TestChatEndpoints(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*entity.User{
		"clerk-1": {ID: 1, ExternalID: "clerk-1"},
	}}
	mux := newMux(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/users/telegram/connect",
		strings.NewReader(`{"chat_id":"12345"}`))
	req.Header.Set("Authorization", bearerFor(t, "clerk-1"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", repo.chatID)

	req = httptest.NewRequest(http.MethodPost, "/users/telegram/disconnect", nil)
	req.Header.Set("Authorization", bearerFor(t, "clerk-1"))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", repo.chatID)
	assert.True(t, repo.chatSet)
}
