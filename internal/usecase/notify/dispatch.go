package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/infra/channel"

	"github.com/google/uuid"
)

// BrowserPushSender delivers one payload to one browser push subscription.
type BrowserPushSender interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, sub entity.PushSubscription, payload []byte) channel.Outcome
}

// NativePushSender delivers one notification to one device token.
type NativePushSender interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, token string, n channel.FCMNotification) channel.Outcome
}

// ChatSender delivers one Markdown message to one chat identity.
type ChatSender interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, chatID string, text string) channel.Outcome
}

// Dispatcher fans one payload out to every enabled channel and address of a
// single user. Addresses within a channel are tried concurrently; the
// aggregate per-channel result is success if at least one address was
// delivered. Permanent failures are handed to the health manager for
// cleanup before Dispatch returns.
type Dispatcher struct {
	browser BrowserPushSender
	native  NativePushSender
	chat    ChatSender
	health  *HealthManager
}

// NewDispatcher wires the three channel senders and the health manager.
// Disabled senders are passed in as-is; the dispatcher checks Enabled().
func NewDispatcher(browser BrowserPushSender, native NativePushSender, chat ChatSender, health *HealthManager) *Dispatcher {
	return &Dispatcher{
		browser: browser,
		native:  native,
		chat:    chat,
		health:  health,
	}
}

// DispatchReport aggregates the outcome of one user's fan-out.
type DispatchReport struct {
	UserID    int64
	Delivered int     // addresses that accepted the message, across channels
	Errors    []error // one entry per channel that delivered to no address
}

// Dispatch sends the payload to the user on every eligible channel.
//
// Eligibility is re-checked here (not only in the repository query) so an
// inconsistent preference flag with an empty address set still produces no
// send attempt. Failures never propagate: they are classified, counted,
// and folded into the report.
func (d *Dispatcher) Dispatch(ctx context.Context, user *entity.User, p Payload) DispatchReport {
	report := DispatchReport{UserID: user.ID}

	requestID, _ := ctx.Value(requestIDKey).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	logger := slog.With(
		slog.String("request_id", requestID),
		slog.Int64("user_id", user.ID),
		slog.String("kind", string(p.Kind())))

	if user.PushEligible() {
		content := p.Push()
		d.dispatchBrowserPush(ctx, logger, user, content, &report)
		d.dispatchNativePush(ctx, logger, user, content, &report)
	}

	if user.ChatEligible() && d.chat.Enabled() {
		d.dispatchChat(ctx, logger, user, p.Chat(), &report)
	}

	return report
}

// dispatchBrowserPush fans out over the user's push subscriptions
// concurrently and reconciles any endpoints the push service reported gone.
func (d *Dispatcher) dispatchBrowserPush(ctx context.Context, logger *slog.Logger, user *entity.User, content PushContent, report *DispatchReport) {
	if !d.browser.Enabled() || len(user.PushSubscriptions) == 0 {
		return
	}

	payload, err := EncodePush(content)
	if err != nil {
		report.Errors = append(report.Errors, err)
		return
	}

	recordDispatch(d.browser.Name())
	start := time.Now()

	outcomes := make([]channel.Outcome, len(user.PushSubscriptions))
	var wg sync.WaitGroup
	for i, sub := range user.PushSubscriptions {
		wg.Add(1)
		go func(i int, sub entity.PushSubscription) {
			defer wg.Done()
			outcomes[i] = d.browser.Send(ctx, sub, payload)
		}(i, sub)
	}
	wg.Wait()

	var deadEndpoints []string
	deliveredAny := false
	var lastErr error
	for i, out := range outcomes {
		recordSend(d.browser.Name(), out.Status)
		switch out.Status {
		case channel.Delivered:
			deliveredAny = true
			report.Delivered++
		case channel.PermanentFailure:
			deadEndpoints = append(deadEndpoints, user.PushSubscriptions[i].Endpoint)
			lastErr = out.Err
		case channel.TransientFailure:
			lastErr = out.Err
		}
	}
	recordDuration(d.browser.Name(), time.Since(start))

	if len(deadEndpoints) > 0 {
		d.health.Reconcile(ctx, user.ID, FailedAddresses{Endpoints: deadEndpoints})
	}
	if !deliveredAny && lastErr != nil {
		report.Errors = append(report.Errors, fmt.Errorf("browser push to user %d: %w", user.ID, lastErr))
		logger.Warn("browser push delivered to no subscription",
			slog.Int("subscriptions", len(user.PushSubscriptions)),
			slog.Any("error", lastErr))
	}
}

// dispatchNativePush fans out over the user's device tokens concurrently
// and reconciles tokens the gateway reported unregistered.
func (d *Dispatcher) dispatchNativePush(ctx context.Context, logger *slog.Logger, user *entity.User, content PushContent, report *DispatchReport) {
	if !d.native.Enabled() || len(user.DeviceTokens) == 0 {
		return
	}

	recordDispatch(d.native.Name())
	start := time.Now()
	notification := NativeNotification(content)

	outcomes := make([]channel.Outcome, len(user.DeviceTokens))
	var wg sync.WaitGroup
	for i, token := range user.DeviceTokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			outcomes[i] = d.native.Send(ctx, token, notification)
		}(i, token)
	}
	wg.Wait()

	var deadTokens []string
	deliveredAny := false
	var lastErr error
	for i, out := range outcomes {
		recordSend(d.native.Name(), out.Status)
		switch out.Status {
		case channel.Delivered:
			deliveredAny = true
			report.Delivered++
		case channel.PermanentFailure:
			deadTokens = append(deadTokens, user.DeviceTokens[i])
			lastErr = out.Err
		case channel.TransientFailure:
			lastErr = out.Err
		}
	}
	recordDuration(d.native.Name(), time.Since(start))

	if len(deadTokens) > 0 {
		d.health.Reconcile(ctx, user.ID, FailedAddresses{Tokens: deadTokens})
	}
	if !deliveredAny && lastErr != nil {
		report.Errors = append(report.Errors, fmt.Errorf("native push to user %d: %w", user.ID, lastErr))
		logger.Warn("native push delivered to no token",
			slog.Int("tokens", len(user.DeviceTokens)),
			slog.Any("error", lastErr))
	}
}

// dispatchChat sends the chat rendering to the user's single chat identity.
// Chat failures are logged and reported but never trigger cleanup.
func (d *Dispatcher) dispatchChat(ctx context.Context, logger *slog.Logger, user *entity.User, text string, report *DispatchReport) {
	recordDispatch(d.chat.Name())
	start := time.Now()

	out := d.chat.Send(ctx, user.ChatID, text)
	recordSend(d.chat.Name(), out.Status)
	recordDuration(d.chat.Name(), time.Since(start))

	if out.Status == channel.Delivered {
		report.Delivered++
		return
	}
	report.Errors = append(report.Errors, fmt.Errorf("chat to user %d: %w", user.ID, out.Err))
	logger.Warn("chat message failed", slog.Any("error", out.Err))
}
