package channel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"contest-reminder/pkg/config"
)

// TelegramConfig contains configuration for the chat-bot sender.
type TelegramConfig struct {
	// Enabled indicates whether a bot token was provided.
	Enabled bool

	// BotToken authenticates against the Telegram Bot API.
	BotToken string

	// Timeout bounds a single Bot API request.
	Timeout time.Duration
}

// LoadTelegramConfig reads the TELEGRAM_BOT_TOKEN from the environment.
// A missing token disables the channel without failing startup.
func LoadTelegramConfig(logger *slog.Logger) TelegramConfig {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, chat notifications disabled")
		return TelegramConfig{Enabled: false}
	}
	return TelegramConfig{
		Enabled:  true,
		BotToken: token,
		Timeout:  config.GetEnvDuration("TELEGRAM_TIMEOUT", 10*time.Second),
	}
}

// botAPI is the slice of tgbotapi.BotAPI the sender uses. Narrowing to an
// interface keeps the classification logic testable without the real API.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender delivers chat messages through the Telegram Bot API.
//
// Chat identities are never pruned: failures here are logged and counted,
// but no failure is classified as permanent. Bot API errors do not reliably
// distinguish "user blocked the bot" from transient conditions at this
// level, and a wrongly pruned chat link cannot self-heal.
type TelegramSender struct {
	bot         botAPI
	enabled     bool
	rateLimiter *RateLimiter
}

// NewTelegramSender constructs the bot client. An invalid token degrades to
// a disabled sender rather than aborting startup.
//
// The rate limiter tracks the global Bot API budget of ~30 messages per
// second; one process staying under 20/s with a small burst leaves headroom
// for the linking flow handled elsewhere.
func NewTelegramSender(cfg TelegramConfig, logger *slog.Logger) *TelegramSender {
	if !cfg.Enabled {
		return &TelegramSender{enabled: false}
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		logger.Warn("failed to create Telegram bot client, chat notifications disabled", slog.Any("error", err))
		return &TelegramSender{enabled: false}
	}

	return &TelegramSender{
		bot:         bot,
		enabled:     true,
		rateLimiter: NewRateLimiter(20, 5),
	}
}

// Name returns the channel identifier used in logs and metric labels.
func (s *TelegramSender) Name() string { return "telegram" }

// Enabled reports whether the bot client was constructed.
func (s *TelegramSender) Enabled() bool { return s.enabled }

// Send delivers one Markdown-formatted message to one chat.
func (s *TelegramSender) Send(ctx context.Context, chatID string, text string) Outcome {
	if !s.enabled {
		return transient(ErrChannelDisabled)
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return transient(fmt.Errorf("telegram chat id %q: %w", chatID, err))
	}

	if err := s.rateLimiter.Allow(ctx); err != nil {
		return transient(fmt.Errorf("telegram rate limiter: %w", err))
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := s.bot.Send(msg); err != nil {
		return transient(fmt.Errorf("telegram send: %w", err))
	}
	return delivered()
}
