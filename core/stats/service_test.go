package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	counts map[string]int
}

var _ Repository = (*fakeRepo)(nil)

func (r *fakeRepo) IncrementVisitors(_ context.Context, date string) error {
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[date]++
	return nil
}

func (r *fakeRepo) QueryVisitorStats(_ context.Context) ([]VisitorStat, error) {
	stats := make([]VisitorStat, 0, len(r.counts))
	for date, count := range r.counts {
		stats = append(stats, VisitorStat{VisitDate: date, VisitorCount: count})
	}
	return stats, nil
}

func TestServiceTrackAndSummarize(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Track(ctx))
	require.NoError(t, svc.Track(ctx))

	// a visit the day before counts towards the total only
	now = now.AddDate(0, 0, -1)
	require.NoError(t, svc.Track(ctx))
	now = now.AddDate(0, 0, 1)

	sum, err := svc.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalVisitors)
	assert.Equal(t, 2, sum.TodayVisitors)
}

func TestServiceTrackRollsOverAtMidnightUTC(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo)

	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	require.NoError(t, svc.Track(ctx))

	now = now.Add(2 * time.Minute)
	require.NoError(t, svc.Track(ctx))

	assert.Equal(t, 1, repo.counts["2025-03-10"])
	assert.Equal(t, 1, repo.counts["2025-03-11"])
}
