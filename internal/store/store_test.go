package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tapcount/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "tapcount.db"), WithExportDir(filepath.Join(dir, "exports")))
	require.NoError(t, err, "open store")
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleState(now time.Time) model.State {
	st := model.NewState(now.Add(-time.Hour))
	st.Count = 12
	st.TotalClicks = 40
	st.HighestValue = 120
	st.LowestValue = -90
	st.Achievements = []string{"first_click", "reach_100", "goal_completed_1767366245000"}
	st.History = []model.HistoryEntry{
		{Action: model.ActionQuick, Value: 10, NewCount: 12, Timestamp: now.Add(-time.Second)},
		{Action: model.ActionReset, Value: 0, NewCount: 0, Timestamp: now.Add(-2 * time.Second)},
	}
	st.CurrentGoal = &model.Goal{Target: 50, StartValue: 2, StartTime: now.Add(-time.Minute)}
	st.Game = &model.MiniGame{Mode: model.ModePrecision, Precision: &model.PrecisionTest{Target: -17, StartValue: 3, Attempts: 4}}
	return st
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	_, found, err := st.LoadState(ctx, model.NewState(now))
	require.NoError(t, err)
	require.False(t, found)

	want := sampleState(now)
	require.NoError(t, st.SaveState(ctx, want, now))

	got, found, err := st.LoadState(ctx, model.NewState(now))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.Count, got.Count)
	assert.Equal(t, want.TotalClicks, got.TotalClicks)
	assert.Equal(t, want.HighestValue, got.HighestValue)
	assert.Equal(t, want.LowestValue, got.LowestValue)
	assert.Equal(t, want.Achievements, got.Achievements)
	require.Len(t, got.History, 2)
	assert.True(t, want.History[0].Timestamp.Equal(got.History[0].Timestamp))
	assert.Equal(t, model.ActionReset, got.History[1].Action)
	require.NotNil(t, got.CurrentGoal)
	assert.Equal(t, 50, got.CurrentGoal.Target)
	require.Equal(t, model.ModePrecision, got.Mode())
	assert.Equal(t, 4, got.Game.Precision.Attempts)
}

func TestLoadStateRejectsMistypedFields(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	doc := `{
		"count": "lots",
		"totalClicks": -3,
		"highestValue": 77,
		"lowestValue": 1.5,
		"achievements": [1, 2],
		"history": [{"action": "teleport", "value": 1, "newCount": 1, "timestamp": ""}],
		"currentGoal": 12,
		"gameMode": "challenge",
		"gameData": {"name": "x", "target": 1, "type": "sideways"}
	}`
	require.NoError(t, st.PutRecord(ctx, RecordAppData, doc))

	base := model.NewState(time.Unix(0, 0))
	base.Count = 9
	base.TotalClicks = 5
	base.LowestValue = -4
	base.Achievements = []string{"first_click"}
	base.CurrentGoal = &model.Goal{Target: 3}

	got, found, err := st.LoadState(ctx, base)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 9, got.Count)
	assert.Equal(t, 5, got.TotalClicks)
	assert.Equal(t, 77, got.HighestValue)
	assert.Equal(t, -4, got.LowestValue)
	assert.Equal(t, []string{"first_click"}, got.Achievements)
	assert.Empty(t, got.History)
	require.NotNil(t, got.CurrentGoal)
	assert.Equal(t, 3, got.CurrentGoal.Target)
	assert.Nil(t, got.Game)
}

func TestDecodeStateKeepsMissingFields(t *testing.T) {
	base := model.NewState(time.Unix(0, 0))
	base.Count = 3
	base.HighestValue = 8
	got, rejected, err := decodeState([]byte(`{"count": 5, "currentGoal": null, "gameMode": null}`), base)
	require.NoError(t, err)
	require.Empty(t, rejected)
	require.Equal(t, 5, got.Count)
	require.Equal(t, 8, got.HighestValue)
	require.Nil(t, got.CurrentGoal)

	_, _, err = decodeState([]byte(`[1,2,3]`), base)
	require.Error(t, err)
}

func TestDecodeStateRejectedNames(t *testing.T) {
	_, rejected, err := decodeState([]byte(`{"count": true, "gameMode": "speed", "gameData": {}}`), model.NewState(time.Unix(0, 0)))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"count", "gameMode"}, rejected)
}

func TestDecodeHistoryTruncates(t *testing.T) {
	entries := make([]historyJSON, 0, 14)
	for i := 0; i < 14; i++ {
		entries = append(entries, historyJSON{Action: "increase", Value: 1, NewCount: 14 - i, Timestamp: "not a time"})
	}
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	history, ok := decodeHistory(raw)
	require.True(t, ok)
	require.Len(t, history, model.HistoryLimit)
	require.Equal(t, 14, history[0].NewCount)
	require.True(t, history[0].Timestamp.IsZero())
}

func TestClearAllRemovesRecords(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, st.SaveState(ctx, sampleState(now), now))
	require.NoError(t, st.SaveTheme(ctx, "ocean"))

	theme, err := st.LoadTheme(ctx)
	require.NoError(t, err)
	require.Equal(t, "ocean", theme)

	require.NoError(t, st.ClearAll(ctx))
	_, err = st.LoadTheme(ctx)
	require.ErrorIs(t, err, ErrNotFound)
	_, found, err := st.LoadState(ctx, model.NewState(now))
	require.NoError(t, err)
	require.False(t, found)

	saves, err := st.ListSaves(ctx, 0)
	require.NoError(t, err)
	require.Len(t, saves, 1)
}

func TestListSavesOldestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s := model.NewState(start)
		s.Count = i * 10
		require.NoError(t, st.SaveState(ctx, s, start.Add(time.Duration(i)*time.Minute)))
	}

	saves, err := st.ListSaves(ctx, 3)
	require.NoError(t, err)
	require.Len(t, saves, 3)
	assert.Equal(t, 20, saves[0].Count)
	assert.Equal(t, 40, saves[2].Count)
	assert.True(t, saves[2].SavedAt.Equal(start.Add(4*time.Minute)))
}

func TestExportState(t *testing.T) {
	st := openTestStore(t)
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	path, err := st.ExportState(context.Background(), sampleState(now), now)
	require.NoError(t, err)
	require.Equal(t, "counter-app-data-2026-10-17.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "\n  \"count\": 12,")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, ExportVersion, doc["version"])
	require.Equal(t, "2026-10-17T09:30:00Z", doc["exportedAt"])
	require.Equal(t, "precision", doc["gameMode"])
}

func TestExportJSONWithoutGame(t *testing.T) {
	data, err := ExportJSON(model.NewState(time.Unix(0, 0)), time.Unix(0, 0))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Nil(t, doc["gameMode"])
	require.Nil(t, doc["currentGoal"])
	require.Equal(t, map[string]any{}, doc["gameData"])
}
