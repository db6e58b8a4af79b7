// Package notify implements the notification scheduling and delivery core:
// the daily digest workflow, the pre-start reminder workflow, the per-user
// multi-channel dispatcher, the dedup ledger consultation, and the
// subscription health cleanup that consumes permanent send failures.
package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/infra/channel"
)

// digestBodyMaxNames caps how many contest names the push digest body lists
// before collapsing the rest into an overflow count. Push notification
// bodies get truncated by the OS well before they get long.
const digestBodyMaxNames = 3

// PushContent is the channel-independent content of a push notification.
// The browser channel ships it as JSON for the service worker; the native
// channel maps it onto an FCM notification.
type PushContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Payload is the closed set of notification variants. Each variant knows
// how to render itself for the push channels and for the chat channel, so
// a new variant cannot be added without supplying both renderings.
type Payload interface {
	// Kind identifies the variant in the dedup ledger and in logs.
	Kind() entity.NotificationKind

	// Push renders the compact push form.
	Push() PushContent

	// Chat renders the richer Markdown chat form.
	Chat() string

	payload() // closed: only this package defines variants
}

// DigestPayload summarizes all contests starting within the digest window.
// An empty contest list is a valid variant ("no contests today"), never a
// malformed notification.
type DigestPayload struct {
	Contests []*entity.Contest
	BaseURL  string
}

func (DigestPayload) payload() {}

// Kind returns the daily digest kind.
func (DigestPayload) Kind() entity.NotificationKind { return entity.KindDaily }

// Push builds the digest push content: the title carries the contest count,
// the body lists up to three names plus an overflow count.
func (p DigestPayload) Push() PushContent {
	if len(p.Contests) == 0 {
		return PushContent{
			Title: "No contests in the next 24 hours",
			Body:  "Enjoy the quiet day. We'll let you know when something is scheduled.",
			URL:   p.BaseURL,
		}
	}

	title := fmt.Sprintf("%d contest%s in the next 24 hours", len(p.Contests), plural(len(p.Contests)))

	names := make([]string, 0, digestBodyMaxNames)
	for i, c := range p.Contests {
		if i == digestBodyMaxNames {
			break
		}
		names = append(names, c.Name)
	}
	body := strings.Join(names, ", ")
	if overflow := len(p.Contests) - digestBodyMaxNames; overflow > 0 {
		body += fmt.Sprintf(" +%d more", overflow)
	}

	return PushContent{Title: title, Body: body, URL: p.BaseURL}
}

// Chat builds the digest chat message: the full contest list with platform,
// start time, and link per entry.
func (p DigestPayload) Chat() string {
	if len(p.Contests) == 0 {
		return "📅 No contests starting in the next 24 hours."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏁 *Upcoming contests in the next 24 hours (%d)*\n", len(p.Contests))
	for i, c := range p.Contests {
		fmt.Fprintf(&b, "\n%d. *%s*\n   📍 %s\n   ⏰ %s\n   🔗 %s\n",
			i+1, c.Name, c.Platform, formatStartTime(c.StartTime), c.URL)
	}
	return b.String()
}

// ReminderPayload announces a single contest approximately 30 minutes from
// starting.
type ReminderPayload struct {
	Contest *entity.Contest
}

func (ReminderPayload) payload() {}

// Kind returns the 30-minute reminder kind.
func (ReminderPayload) Kind() entity.NotificationKind { return entity.KindReminder30 }

// Push builds the reminder push content.
func (p ReminderPayload) Push() PushContent {
	return PushContent{
		Title: fmt.Sprintf("%s starts in 30 minutes", p.Contest.Name),
		Body:  fmt.Sprintf("%s on %s at %s", p.Contest.Name, p.Contest.Platform, formatStartTime(p.Contest.StartTime)),
		URL:   p.Contest.URL,
	}
}

// Chat builds the reminder chat message, matching the push content with the
// contest link inline.
func (p ReminderPayload) Chat() string {
	return fmt.Sprintf("⏰ Reminder: *%s* on %s starts in 30 minutes!\n🔗 %s",
		p.Contest.Name, p.Contest.Platform, p.Contest.URL)
}

// EncodePush marshals the push content for the browser channel. The service
// worker on the receiving end parses exactly these three fields.
func EncodePush(content PushContent) ([]byte, error) {
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode push payload: %w", err)
	}
	return data, nil
}

// NativeNotification maps push content onto the native channel's shape.
func NativeNotification(content PushContent) channel.FCMNotification {
	return channel.FCMNotification{
		Title: content.Title,
		Body:  content.Body,
		URL:   content.URL,
	}
}

func formatStartTime(t time.Time) string {
	return t.UTC().Format("Mon Jan 2, 15:04 MST")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
