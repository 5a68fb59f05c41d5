package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHashIPIsStableAndOpaque(t *testing.T) {
	s := openTest(t)
	a := s.HashIP("203.0.113.7")

	assert.Len(t, a, 16)
	assert.Equal(t, a, s.HashIP("203.0.113.7"))
	assert.NotEqual(t, a, s.HashIP("203.0.113.8"))
	assert.NotContains(t, a, "203")
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	now := time.Date(2025, 7, 10, 15, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.RecordVisit(ctx, "1.1.1.1", "ua", "/", "v1"))
	require.NoError(t, s.RecordVisit(ctx, "1.1.1.1", "ua", "/", "v2"))
	require.NoError(t, s.RecordVisit(ctx, "2.2.2.2", "ua", "/", "v3"))

	require.NoError(t, s.RecordReveal(ctx, "v1", "hero"))
	require.NoError(t, s.RecordReveal(ctx, "v1", "hero"))
	require.NoError(t, s.RecordReveal(ctx, "v2", "hero"))
	require.NoError(t, s.RecordReveal(ctx, "v2", "footer"))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalVisitors)
	assert.EqualValues(t, 2, stats.UniqueVisitors)
	assert.EqualValues(t, 3, stats.VisitorsToday)
	assert.EqualValues(t, 3, stats.VisitorsThisWeek)
	assert.EqualValues(t, 3, stats.TotalReveals)
	assert.Equal(t, []SectionStat{{"hero", 2}, {"footer", 1}}, stats.Sections)
	require.Len(t, stats.RecentVisitors, 3)
	assert.Equal(t, "v3", stats.RecentVisitors[0].ViewID)
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return old }
	require.NoError(t, s.RecordVisit(ctx, "1.1.1.1", "ua", "/", "old"))
	require.NoError(t, s.RecordReveal(ctx, "old", "hero"))

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	require.NoError(t, s.RecordVisit(ctx, "1.1.1.1", "ua", "/", "new"))

	n, err := s.Cleanup(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalVisitors)
	assert.EqualValues(t, 0, stats.TotalReveals)
}

func TestToken(t *testing.T) {
	a, err := Token()
	require.NoError(t, err)
	b, err := Token()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestCloseWaitsForBackgroundWrites(t *testing.T) {
	s, err := Open(context.Background(), ":memory:", zap.NewNop())
	require.NoError(t, err)

	started := make(chan struct{})
	proceed := make(chan struct{})
	var writeErr error
	s.Go(func(ctx context.Context) {
		close(started)
		<-proceed
		writeErr = s.RecordReveal(ctx, "v1", "hero")
	})
	<-started

	closed := make(chan error, 1)
	go func() { closed <- s.Close() }()
	select {
	case <-closed:
		t.Fatal("Close returned before the write finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(proceed)
	require.NoError(t, <-closed)
	assert.NoError(t, writeErr, "the write ran against an open database")

	ran := false
	s.Go(func(context.Context) { ran = true })
	assert.False(t, ran)
	assert.NoError(t, s.Close(), "Close is idempotent")
}
