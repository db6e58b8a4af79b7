package contest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contest-reminder/internal/domain/entity"
)

type stubContestRepo struct {
	upcoming    []*entity.Contest
	platforms   []string
	gotPlatform string
	err         error
}

func (s *stubContestRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Contest, error) {
	return nil, nil
}

func (s *stubContestRepo) ListUpcoming(ctx context.Context, platform string) ([]*entity.Contest, error) {
	s.gotPlatform = platform
	return s.upcoming, s.err
}

func (s *stubContestRepo) Platforms(ctx context.Context) ([]string, error) {
	return s.platforms, s.err
}

func (s *stubContestRepo) Upsert(ctx context.Context, contest *entity.Contest) error { return nil }

func (s *stubContestRepo) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestListHandler(t *testing.T) {
	repo := &stubContestRepo{upcoming: []*entity.Contest{
		{ID: 1, Name: "Round A", Platform: "Codeforces",
			StartTime: time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC), URL: "https://cf/a"},
	}}
	mux := http.NewServeMux()
	Register(mux, repo)

	req := httptest.NewRequest(http.MethodGet, "/contests?platform=Codeforces", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Codeforces", repo.gotPlatform)

	var out []DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Round A", out[0].Name)
}

func TestListHandler_RepositoryError(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux, &stubContestRepo{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/contests", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestPlatformsHandler_EmptyCatalog(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux, &stubContestRepo{})

	req := httptest.NewRequest(http.MethodGet, "/contests/platforms", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
