package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DigestResult summarizes one daily digest run.
type DigestResult struct {
	UsersProcessed int
	Delivered      int
	ContestCount   int
	Errors         []error
}

// RunDailyDigest sends every notifiable user a summary of contests starting
// within the lookahead window. An empty window still produces a digest, with
// the "no contests" variant, so users can tell the system is alive.
//
// Per-user failures are collected, never fatal: one user's dead channel must
// not starve the rest of the run. Only the repository queries themselves can
// fail the whole run.
func (s *Service) RunDailyDigest(ctx context.Context) (*DigestResult, error) {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	logger := slog.With(slog.String("request_id", requestID), slog.String("job", "daily_digest"))

	start := s.now()
	from := start
	to := start.Add(s.cfg.DigestLookahead)

	contests, err := s.contests.ListStartingBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("RunDailyDigest: list contests: %w", err)
	}

	users, err := s.users.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("RunDailyDigest: list users: %w", err)
	}

	logger.Info("daily digest started",
		slog.Int("contests", len(contests)),
		slog.Int("users", len(users)))

	payload := &DigestPayload{Contests: contests, BaseURL: s.cfg.BaseURL}

	result := &DigestResult{ContestCount: len(contests)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for _, user := range users {
		user := user
		g.Go(func() error {
			report := s.dispatcher.Dispatch(gctx, user, payload)
			mu.Lock()
			result.UsersProcessed++
			result.Delivered += report.Delivered
			result.Errors = append(result.Errors, report.Errors...)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only surfaces context cancellation.
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("RunDailyDigest: %w", err)
	}

	logger.Info("daily digest finished",
		slog.Int("users_processed", result.UsersProcessed),
		slog.Int("delivered", result.Delivered),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}
