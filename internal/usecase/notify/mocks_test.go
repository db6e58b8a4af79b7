package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/infra/channel"
)

type mockUserRepo struct {
	mu sync.Mutex

	listNotifiableFunc func(ctx context.Context) ([]*entity.User, error)

	removedEndpoints map[int64][]string
	removedTokens    map[int64][]string
	removeErr        error
}

func (m *mockUserRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (m *mockUserRepo) ListNotifiable(ctx context.Context) ([]*entity.User, error) {
	if m.listNotifiableFunc != nil {
		return m.listNotifiableFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdatePreferences(ctx context.Context, userID int64, prefs entity.Preferences) error {
	return nil
}

func (m *mockUserRepo) AddPushSubscription(ctx context.Context, userID int64, sub entity.PushSubscription) error {
	return nil
}

func (m *mockUserRepo) RemovePushSubscriptions(ctx context.Context, userID int64, endpoints []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	if m.removedEndpoints == nil {
		m.removedEndpoints = make(map[int64][]string)
	}
	m.removedEndpoints[userID] = append(m.removedEndpoints[userID], endpoints...)
	return nil
}

func (m *mockUserRepo) AddDeviceToken(ctx context.Context, userID int64, token string) error {
	return nil
}

func (m *mockUserRepo) RemoveDeviceTokens(ctx context.Context, userID int64, tokens []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	if m.removedTokens == nil {
		m.removedTokens = make(map[int64][]string)
	}
	m.removedTokens[userID] = append(m.removedTokens[userID], tokens...)
	return nil
}

func (m *mockUserRepo) SetChatID(ctx context.Context, userID int64, chatID string) error {
	return nil
}

type mockContestRepo struct {
	mu sync.Mutex

	listStartingBetweenFunc func(ctx context.Context, from, to time.Time) ([]*entity.Contest, error)

	gotFrom time.Time
	gotTo   time.Time
	calls   int
}

func (m *mockContestRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Contest, error) {
	m.mu.Lock()
	m.gotFrom, m.gotTo = from, to
	m.calls++
	m.mu.Unlock()
	if m.listStartingBetweenFunc != nil {
		return m.listStartingBetweenFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *mockContestRepo) ListUpcoming(ctx context.Context, platform string) ([]*entity.Contest, error) {
	return nil, nil
}

func (m *mockContestRepo) Platforms(ctx context.Context) ([]string, error) { return nil, nil }

func (m *mockContestRepo) Upsert(ctx context.Context, contest *entity.Contest) error { return nil }

func (m *mockContestRepo) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// mockClaimLedger mimics the unique-index semantics of the real ledger: the
// first claim of a triple wins, repeats return false.
type mockClaimLedger struct {
	mu      sync.Mutex
	claimed map[string]bool
	err     error
}

func (m *mockClaimLedger) TryClaim(ctx context.Context, userID, contestID int64, kind entity.NotificationKind) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.claimed == nil {
		m.claimed = make(map[string]bool)
	}
	key := claimKey(userID, contestID, kind)
	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
}

func (m *mockClaimLedger) CountByKind(ctx context.Context, kind entity.NotificationKind) (int64, error) {
	return 0, nil
}

func (m *mockClaimLedger) ListRecent(ctx context.Context, limit int) ([]*entity.NotificationLogEntry, error) {
	return nil, nil
}

func claimKey(userID, contestID int64, kind entity.NotificationKind) string {
	return fmt.Sprintf("%d/%d/%s", userID, contestID, kind)
}

type browserSend struct {
	endpoint string
	payload  []byte
}

type mockBrowserSender struct {
	mu      sync.Mutex
	enabled bool
	outcome func(sub entity.PushSubscription) channel.Outcome
	sends   []browserSend
}

func (m *mockBrowserSender) Name() string  { return "webpush" }
func (m *mockBrowserSender) Enabled() bool { return m.enabled }

func (m *mockBrowserSender) Send(ctx context.Context, sub entity.PushSubscription, payload []byte) channel.Outcome {
	m.mu.Lock()
	m.sends = append(m.sends, browserSend{endpoint: sub.Endpoint, payload: payload})
	m.mu.Unlock()
	if m.outcome != nil {
		return m.outcome(sub)
	}
	return channel.Outcome{Status: channel.Delivered}
}

type mockNativeSender struct {
	mu      sync.Mutex
	enabled bool
	outcome func(token string) channel.Outcome
	tokens  []string
}

func (m *mockNativeSender) Name() string  { return "fcm" }
func (m *mockNativeSender) Enabled() bool { return m.enabled }

func (m *mockNativeSender) Send(ctx context.Context, token string, n channel.FCMNotification) channel.Outcome {
	m.mu.Lock()
	m.tokens = append(m.tokens, token)
	m.mu.Unlock()
	if m.outcome != nil {
		return m.outcome(token)
	}
	return channel.Outcome{Status: channel.Delivered}
}

type chatSend struct {
	chatID string
	text   string
}

type mockChatSender struct {
	mu      sync.Mutex
	enabled bool
	outcome func(chatID string) channel.Outcome
	sends   []chatSend
}

func (m *mockChatSender) Name() string  { return "telegram" }
func (m *mockChatSender) Enabled() bool { return m.enabled }

func (m *mockChatSender) Send(ctx context.Context, chatID string, text string) channel.Outcome {
	m.mu.Lock()
	m.sends = append(m.sends, chatSend{chatID: chatID, text: text})
	m.mu.Unlock()
	if m.outcome != nil {
		return m.outcome(chatID)
	}
	return channel.Outcome{Status: channel.Delivered}
}
