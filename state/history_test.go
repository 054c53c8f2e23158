package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHistory(t *testing.T) *HuntHistory {
	t.Helper()
	history, err := OpenHuntHistory(filepath.Join(t.TempDir(), "history", "hunt_history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })
	return history
}

func TestHuntHistory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	history := openTestHistory(t)

	started := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	require.NoError(t, history.RecordStart(ctx, HuntRun{
		RunID:      "20261018093000-abcdef12",
		Provider:   "ytdlp",
		Terms:      []string{"gameplay commentary", "speedrun"},
		OutputFile: "youtube_leads.csv",
		StartedAt:  started,
	}))

	runs, err := history.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusRunning, runs[0].Status)
	assert.True(t, runs[0].FinishedAt.IsZero())
	assert.Equal(t, []string{"gameplay commentary", "speedrun"}, runs[0].Terms)
	assert.True(t, started.Equal(runs[0].StartedAt))

	require.NoError(t, history.RecordFinish(ctx, "20261018093000-abcdef12", 7, StatusCompleted))

	runs, err = history.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.Equal(t, 7, runs[0].Collected)
	assert.False(t, runs[0].FinishedAt.IsZero())
}

func TestHuntHistory_ListRunsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	history := openTestHistory(t)

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, history.RecordStart(ctx, HuntRun{
			RunID:     id,
			Provider:  "youtube",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	runs, err := history.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].RunID)
	assert.Equal(t, "run-b", runs[1].RunID)

	all, err := history.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHuntHistory_ListRunsWithinOneSecond(t *testing.T) {
	ctx := context.Background()
	history := openTestHistory(t)

	second := time.Date(2026, 10, 18, 12, 0, 5, 0, time.UTC)
	runs := []HuntRun{
		{RunID: "a-older", Provider: "ytdlp", StartedAt: second},
		{RunID: "b-newer", Provider: "ytdlp", StartedAt: second.Add(500 * time.Millisecond)},
		{RunID: "c-newest", Provider: "ytdlp", StartedAt: second.Add(520 * time.Millisecond)},
	}
	for _, run := range runs {
		require.NoError(t, history.RecordStart(ctx, run))
	}

	listed, err := history.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "c-newest", listed[0].RunID)
	assert.Equal(t, "b-newer", listed[1].RunID)
	assert.Equal(t, "a-older", listed[2].RunID)
	assert.True(t, second.Equal(listed[2].StartedAt))
}

func TestHuntHistory_Errors(t *testing.T) {
	ctx := context.Background()
	history := openTestHistory(t)

	assert.Error(t, history.RecordStart(ctx, HuntRun{}), "run ID is required")

	require.NoError(t, history.RecordStart(ctx, HuntRun{RunID: "dup"}))
	assert.Error(t, history.RecordStart(ctx, HuntRun{RunID: "dup"}), "duplicate run ID")

	assert.ErrorIs(t, history.RecordFinish(ctx, "missing", 0, StatusFailed), ErrRunNotFound)
	assert.Error(t, history.RecordFinish(ctx, "dup", 0, StatusRunning), "running is not a final status")
}

func TestHuntHistory_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hunt_history.db")

	first, err := OpenHuntHistory(path)
	require.NoError(t, err)
	require.NoError(t, first.RecordStart(ctx, HuntRun{RunID: "persisted", Provider: "ytdlp"}))
	require.NoError(t, first.Close())

	second, err := OpenHuntHistory(path)
	require.NoError(t, err)
	defer second.Close()

	runs, err := second.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "persisted", runs[0].RunID)
	assert.Nil(t, runs[0].Terms)
}
