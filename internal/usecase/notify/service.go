package notify

import (
	"time"

	"contest-reminder/internal/repository"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

const (
	defaultDigestLookahead = 24 * time.Hour
	defaultReminderLead    = 25 * time.Minute
	defaultReminderWindow  = 10 * time.Minute
	defaultMaxConcurrent   = 8
)

// Config tunes the notification workflows.
type Config struct {
	// DigestLookahead is how far ahead the daily digest looks for contests.
	DigestLookahead time.Duration
	// ReminderLead is the lower edge of the reminder window, measured from
	// the current time.
	ReminderLead time.Duration
	// ReminderWindow is the width of the reminder band. The band is
	// half-open: a contest starting exactly at the upper edge is left for
	// the next pass.
	ReminderWindow time.Duration
	// MaxConcurrent bounds how many users are processed at once.
	MaxConcurrent int
	// BaseURL is the public frontend URL used in digest click targets.
	BaseURL string
}

func (c Config) withDefaults() Config {
	if c.DigestLookahead <= 0 {
		c.DigestLookahead = defaultDigestLookahead
	}
	if c.ReminderLead <= 0 {
		c.ReminderLead = defaultReminderLead
	}
	if c.ReminderWindow <= 0 {
		c.ReminderWindow = defaultReminderWindow
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
	return c
}

// Service runs the digest and reminder workflows.
type Service struct {
	users      repository.UserRepository
	contests   repository.ContestRepository
	log        repository.NotificationLogRepository
	dispatcher *Dispatcher
	cfg        Config

	now func() time.Time
}

func NewService(
	users repository.UserRepository,
	contests repository.ContestRepository,
	log repository.NotificationLogRepository,
	dispatcher *Dispatcher,
	cfg Config,
) *Service {
	return &Service{
		users:      users,
		contests:   contests,
		log:        log,
		dispatcher: dispatcher,
		cfg:        cfg.withDefaults(),
		now:        time.Now,
	}
}
