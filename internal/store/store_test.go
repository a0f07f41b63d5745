package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndReadOne(t *testing.T) {
	s := openTestStore(t)

	task := model.Task{
		ID:       "t1",
		Title:    "Write the report",
		Category: model.CategoryWorkPrep,
		Status:   model.StatusScheduled,
		Stakes:   model.StakesHigh,
	}
	require.NoError(t, store.Upsert(s, store.Tasks, task))

	got, ok, err := store.ReadOne[model.Task](s, store.Tasks, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Write the report", got.Title)
	assert.Equal(t, model.StatusScheduled, got.Status)
}

func TestReadOneAbsent(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := store.ReadOne[model.Task](s, store.Tasks, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertOverwritesById(t *testing.T) {
	s := openTestStore(t)

	task := model.Task{ID: "t1", Title: "before", Status: model.StatusScheduled}
	require.NoError(t, store.Upsert(s, store.Tasks, task))

	task.Title = "after"
	task.Status = model.StatusInProgress
	require.NoError(t, store.Upsert(s, store.Tasks, task))

	all, err := store.ReadAll[model.Task](s, store.Tasks)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "after", all[0].Title)
	assert.Equal(t, model.StatusInProgress, all[0].Status)
}

func TestUpsertLeavesSiblingsAlone(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, store.Upsert(s, store.Tasks, model.Task{ID: "a", Title: "a"}))
	require.NoError(t, store.Upsert(s, store.Tasks, model.Task{ID: "b", Title: "b"}))
	require.NoError(t, store.Upsert(s, store.Tasks, model.Task{ID: "a", Title: "a2"}))

	all, err := store.ReadAll[model.Task](s, store.Tasks)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReplaceCollectionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	// Seed with records that the replace must wipe out.
	require.NoError(t, store.Upsert(s, store.Tasks, model.Task{ID: "stale"}))

	want := []model.Task{
		{ID: "t1", Title: "one"},
		{ID: "t2", Title: "two"},
		{ID: "t3", Title: "three"},
	}
	require.NoError(t, store.ReplaceCollection(s, store.Tasks, want))

	got, err := store.ReadAll[model.Task](s, store.Tasks)
	require.NoError(t, err)
	require.Len(t, got, 3)

	byID := make(map[string]model.Task)
	for _, task := range got {
		byID[task.ID] = task
	}
	assert.NotContains(t, byID, "stale")
	for _, w := range want {
		assert.Equal(t, w.Title, byID[w.ID].Title)
	}
}

func TestReplaceCollectionEmpty(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, store.Upsert(s, store.Tasks, model.Task{ID: "t1"}))
	require.NoError(t, store.ReplaceCollection(s, store.Tasks, []model.Task{}))

	got, err := store.ReadAll[model.Task](s, store.Tasks)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectionsAreIsolated(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, store.Upsert(s, store.Tasks, model.Task{ID: "x", Title: "task"}))
	require.NoError(t, store.Upsert(s, store.Logs, model.LogEntry{
		ID:        "x",
		Timestamp: time.Now(),
		Kind:      model.LogSystemEvent,
		Content:   "log",
	}))

	require.NoError(t, store.ReplaceCollection(s, store.Tasks, []model.Task{}))

	logs, err := store.ReadAll[model.LogEntry](s, store.Logs)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "log", logs[0].Content)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, store.Upsert(s, store.Journals, model.JournalEntry{ID: "j1", Content: "note"}))
	require.NoError(t, s.Delete(store.Journals, "j1"))

	_, ok, err := store.ReadOne[model.JournalEntry](s, store.Journals, "j1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is a no-op.
	require.NoError(t, s.Delete(store.Journals, "j1"))
}
