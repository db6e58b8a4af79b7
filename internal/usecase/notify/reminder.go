package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"contest-reminder/internal/domain/entity"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ReminderResult summarizes one reminder pass.
type ReminderResult struct {
	ContestCount int
	UsersMatched int
	Claimed      int
	Skipped      int
	Delivered    int
	Errors       []error
}

// RunUpcomingReminders notifies every notifiable user about each contest
// starting inside the reminder band. The band is [now+lead, now+lead+window),
// sized so that a pass running on a shorter interval than the window sees
// every contest at least once; duplicates across overlapping passes are
// suppressed by the claim ledger.
//
// The claim is taken before sending. A claim followed by a failed send is
// accepted as a missed notification rather than risking a duplicate.
func (s *Service) RunUpcomingReminders(ctx context.Context) (*ReminderResult, error) {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	logger := slog.With(slog.String("request_id", requestID), slog.String("job", "reminders"))

	start := s.now()
	from := start.Add(s.cfg.ReminderLead)
	to := from.Add(s.cfg.ReminderWindow)

	contests, err := s.contests.ListStartingBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("RunUpcomingReminders: list contests: %w", err)
	}

	result := &ReminderResult{ContestCount: len(contests)}
	if len(contests) == 0 {
		return result, nil
	}

	users, err := s.users.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("RunUpcomingReminders: list users: %w", err)
	}
	result.UsersMatched = len(users)

	logger.Info("reminder pass started",
		slog.Int("contests", len(contests)),
		slog.Int("users", len(users)),
		slog.Time("window_from", from),
		slog.Time("window_to", to))

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for _, contest := range contests {
		contest := contest
		payload := &ReminderPayload{Contest: contest}
		for _, user := range users {
			user := user
			g.Go(func() error {
				s.remindOne(gctx, user, contest, payload, result, &mu)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("RunUpcomingReminders: %w", err)
	}

	logger.Info("reminder pass finished",
		slog.Int("claimed", result.Claimed),
		slog.Int("skipped", result.Skipped),
		slog.Int("delivered", result.Delivered),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (s *Service) remindOne(ctx context.Context, user *entity.User, contest *entity.Contest, payload *ReminderPayload, result *ReminderResult, mu *sync.Mutex) {
	claimed, err := s.log.TryClaim(ctx, user.ID, contest.ID, entity.KindReminder30)
	if err != nil {
		recordClaim("error")
		mu.Lock()
		result.Errors = append(result.Errors,
			fmt.Errorf("claim reminder user=%d contest=%d: %w", user.ID, contest.ID, err))
		mu.Unlock()
		return
	}
	if !claimed {
		recordClaim("duplicate")
		mu.Lock()
		result.Skipped++
		mu.Unlock()
		return
	}
	recordClaim("claimed")

	report := s.dispatcher.Dispatch(ctx, user, payload)
	mu.Lock()
	result.Claimed++
	result.Delivered += report.Delivered
	result.Errors = append(result.Errors, report.Errors...)
	mu.Unlock()
}
