// Package ingest refreshes the contest catalog from the external contest
// listing API and prunes entries that are long over.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/repository"
)

const defaultRetention = 24 * time.Hour

// ContestSource provides upcoming contests. Implemented by the CLIST
// client; tests substitute their own.
type ContestSource interface {
	FetchUpcoming(ctx context.Context, now time.Time) ([]*entity.Contest, error)
}

// Config tunes the ingestion workflow.
type Config struct {
	// Retention is how long a contest stays in the catalog after its start
	// time has passed.
	Retention time.Duration
}

// Result summarizes one ingestion run.
type Result struct {
	Fetched  int
	Upserted int
	Pruned   int64
	Errors   []error
}

// Service runs catalog ingestion.
type Service struct {
	source   ContestSource
	contests repository.ContestRepository
	cfg      Config

	now func() time.Time
}

func NewService(source ContestSource, contests repository.ContestRepository, cfg Config) *Service {
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	return &Service{
		source:   source,
		contests: contests,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run fetches upcoming contests, upserts them by external ID, and prunes
// contests that started before the retention cutoff. A failed upsert skips
// that contest only; a failed fetch fails the run.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	start := s.now()
	logger := slog.With(slog.String("job", "ingest"))

	contests, err := s.source.FetchUpcoming(ctx, start)
	if err != nil {
		recordRun("error")
		return nil, fmt.Errorf("Run: fetch contests: %w", err)
	}

	result := &Result{Fetched: len(contests)}
	for _, contest := range contests {
		if err := s.contests.Upsert(ctx, contest); err != nil {
			result.Errors = append(result.Errors,
				fmt.Errorf("upsert contest %d: %w", contest.ExternalID, err))
			continue
		}
		result.Upserted++
	}
	recordUpserts(result.Upserted)

	pruned, err := s.contests.DeleteEndedBefore(ctx, start.Add(-s.cfg.Retention))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("prune contests: %w", err))
	} else {
		result.Pruned = pruned
	}

	recordRun("ok")
	logger.Info("catalog ingestion finished",
		slog.Int("fetched", result.Fetched),
		slog.Int("upserted", result.Upserted),
		slog.Int64("pruned", result.Pruned),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}
