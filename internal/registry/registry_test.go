package registry_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/registry"
	"github.com/mirrorcli/mirror/internal/store"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	r, err := registry.Load(s)
	require.NoError(t, err)
	return r
}

var t0 = time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

func TestSessionStartTracksInProgress(t *testing.T) {
	r := newRegistry(t)
	task := r.CreateTask(model.Task{Title: "drill"}, t0)

	got, err := r.Task(task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastSessionStart, "scheduled task must have no live session")

	require.NoError(t, r.StartTask(task.ID, t0))
	got, _ = r.Task(task.ID)
	assert.Equal(t, model.StatusInProgress, got.Status)
	require.NotNil(t, got.LastSessionStart)
	assert.True(t, got.LastSessionStart.Equal(t0))

	require.NoError(t, r.PauseTask(task.ID, 0, "", t0.Add(time.Minute)))
	got, _ = r.Task(task.ID)
	assert.Equal(t, model.StatusPaused, got.Status)
	assert.Nil(t, got.LastSessionStart, "paused task must have no live session")
}

func TestStartBlockedByDependency(t *testing.T) {
	r := newRegistry(t)
	dep := r.CreateTask(model.Task{Title: "foundation"}, t0)
	task := r.CreateTask(model.Task{Title: "tower", Dependencies: []string{dep.ID}}, t0)

	err := r.StartTask(task.ID, t0)
	var blocked *registry.BlockedError
	require.ErrorAs(t, err, &blocked)
	require.Len(t, blocked.Blocking, 1)
	assert.Equal(t, "foundation", blocked.Blocking[0].Title)

	// Refusal is a no-op.
	got, _ := r.Task(task.ID)
	assert.Equal(t, model.StatusScheduled, got.Status)
	assert.Nil(t, got.LastSessionStart)

	// Completing the dependency unblocks the start.
	require.NoError(t, r.StartTask(dep.ID, t0))
	_, err = r.CompleteTask(dep.ID, t0.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, r.StartTask(task.ID, t0.Add(2*time.Minute)))
}

func TestAccumulatedSecondsMonotonic(t *testing.T) {
	r := newRegistry(t)
	task := r.CreateTask(model.Task{Title: "grind"}, t0)

	require.NoError(t, r.StartTask(task.ID, t0))
	require.NoError(t, r.PauseTask(task.ID, 0, "", t0.Add(90*time.Second)))

	got, _ := r.Task(task.ID)
	assert.Equal(t, int64(90), got.AccumulatedSeconds)

	require.NoError(t, r.ResumeTask(task.ID, t0.Add(5*time.Minute)))
	got, _ = r.Task(task.ID)
	assert.Equal(t, int64(90), got.AccumulatedSeconds, "resume must not change the total")

	_, err := r.CompleteTask(task.ID, t0.Add(5*time.Minute+30*time.Second))
	require.NoError(t, err)
	got, _ = r.Task(task.ID)
	assert.Equal(t, int64(120), got.AccumulatedSeconds)
	assert.Nil(t, got.LastSessionStart)
}

func TestNoTransitionOutOfCompleted(t *testing.T) {
	r := newRegistry(t)
	task := r.CreateTask(model.Task{Title: "done deal"}, t0)
	require.NoError(t, r.StartTask(task.ID, t0))
	_, err := r.CompleteTask(task.ID, t0.Add(time.Minute))
	require.NoError(t, err)

	assert.ErrorIs(t, r.StartTask(task.ID, t0.Add(2*time.Minute)), registry.ErrCompleted)
	assert.ErrorIs(t, r.ResumeTask(task.ID, t0.Add(2*time.Minute)), registry.ErrCompleted)
	_, err = r.CompleteTask(task.ID, t0.Add(2*time.Minute))
	assert.ErrorIs(t, err, registry.ErrCompleted)
}

func TestCompleteClonesRecurringTask(t *testing.T) {
	r := newRegistry(t)
	task := r.CreateTask(model.Task{
		Title:      "daily review",
		Recurrence: model.RecurDaily,
		Deadline:   &t0,
	}, t0)
	require.NoError(t, r.StartTask(task.ID, t0))
	require.NoError(t, r.PauseTask(task.ID, 0, "", t0.Add(time.Minute)))
	require.NoError(t, r.ResumeTask(task.ID, t0.Add(2*time.Minute)))

	next, err := r.CompleteTask(task.ID, t0.Add(3*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.NotEqual(t, task.ID, next.ID)
	assert.Equal(t, model.StatusScheduled, next.Status)
	assert.Zero(t, next.AccumulatedSeconds)
	assert.Zero(t, next.EscapeAttempts)
	assert.Nil(t, next.Deadline)
	require.NotNil(t, next.ScheduledAt)
	assert.True(t, next.ScheduledAt.Equal(t0.Add(3*time.Minute).AddDate(0, 0, 1)))

	// Exactly one successor.
	count := 0
	for _, candidate := range r.Tasks {
		if candidate.Title == "daily review" {
			count++
		}
	}
	assert.Equal(t, 2, count)

	// Non-recurring completion produces none.
	plain := r.CreateTask(model.Task{Title: "one-off"}, t0)
	require.NoError(t, r.StartTask(plain.ID, t0))
	next, err = r.CompleteTask(plain.ID, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestPauseSetsWindowAndEscapeAttempts(t *testing.T) {
	r := newRegistry(t)
	task := r.CreateTask(model.Task{Title: "escape artist"}, t0)
	require.NoError(t, r.StartTask(task.ID, t0))
	require.NoError(t, r.PauseTask(task.ID, 3*time.Minute, "AI: why?\nUSER: because", t0.Add(time.Minute)))

	got, _ := r.Task(task.ID)
	assert.Equal(t, 1, got.EscapeAttempts)
	require.NotNil(t, got.PausedUntil)
	assert.True(t, got.PausedUntil.Equal(t0.Add(4*time.Minute)))

	assert.Equal(t, model.LogTaskPaused, r.Logs[0].Kind)
	assert.Contains(t, r.Logs[0].Metadata["transcript"], "because")
}

func TestDeleteUnfinishedAccruesDebt(t *testing.T) {
	r := newRegistry(t)
	r.SaveProfile(model.UserProfile{Situation: "behind"})
	task := r.CreateTask(model.Task{Title: "dodged"}, t0)

	require.NoError(t, r.DeleteTask(task.ID, "too hard", t0))

	_, err := r.Task(task.ID)
	assert.ErrorIs(t, err, registry.ErrTaskNotFound)
	assert.Equal(t, float64(10), r.Profile.IntegrityDebt)

	kinds := make(map[model.LogKind]bool)
	for _, l := range r.Logs {
		kinds[l.Kind] = true
	}
	assert.True(t, kinds[model.LogTaskDeleted])
	assert.True(t, kinds[model.LogRepudiation])
	assert.True(t, kinds[model.LogIntegrityDebt])
}

func TestDeleteCompletedIsNotRepudiation(t *testing.T) {
	r := newRegistry(t)
	r.SaveProfile(model.UserProfile{})
	task := r.CreateTask(model.Task{Title: "finished"}, t0)
	require.NoError(t, r.StartTask(task.ID, t0))
	_, err := r.CompleteTask(task.ID, t0.Add(time.Minute))
	require.NoError(t, err)

	require.NoError(t, r.DeleteTask(task.ID, "cleanup", t0.Add(2*time.Minute)))
	assert.Zero(t, r.Profile.IntegrityDebt)
}

func TestReflectionUpsertPerDayAndPrompt(t *testing.T) {
	r := newRegistry(t)
	resp := model.ReflectionResponse{
		ID: "2026-02-27-3", PromptID: 3, Question: "q", Category: "Self-Awareness",
		Response: "first", Timestamp: t0, Date: "2026-02-27",
	}
	r.SaveReflection(resp, t0)
	resp.Response = "second"
	r.SaveReflection(resp, t0.Add(time.Hour))

	count := 0
	for _, got := range r.Reflections {
		if got.ID == "2026-02-27-3" {
			count++
			assert.Equal(t, "second", got.Response)
		}
	}
	assert.Equal(t, 1, count)
}

func TestStatePersistsAcrossLoad(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	defer s.Close()

	r, err := registry.Load(s)
	require.NoError(t, err)
	task := r.CreateTask(model.Task{Title: "durable"}, t0)
	require.NoError(t, r.StartTask(task.ID, t0.Add(time.Second)))

	fresh, err := registry.Load(s)
	require.NoError(t, err)
	got, err := fresh.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	require.NotNil(t, got.LastSessionStart)

	// Logs come back newest first.
	require.NotEmpty(t, fresh.Logs)
	assert.Equal(t, model.LogTaskStarted, fresh.Logs[0].Kind)
}

func TestAttachReflectionToDeletedEntryIsDropped(t *testing.T) {
	r := newRegistry(t)
	entry := model.JournalEntry{ID: "j1", Timestamp: t0, StartTime: t0, Content: "dump"}
	r.SaveJournal(entry, t0)
	require.NoError(t, r.DeleteJournal("j1"))

	// Late async completion referring to the deleted entry.
	r.AttachReflection("j1", "too late")
	for _, j := range r.Journals {
		assert.NotEqual(t, "j1", j.ID)
	}
}

func TestIntegrityPercentage(t *testing.T) {
	r := newRegistry(t)
	assert.Equal(t, 100, r.Integrity())

	a := r.CreateTask(model.Task{Title: "a"}, t0)
	r.CreateTask(model.Task{Title: "b"}, t0)
	require.NoError(t, r.StartTask(a.ID, t0))
	_, err := r.CompleteTask(a.ID, t0.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 50, r.Integrity())
}

func TestCreateDefaultsToHighStakes(t *testing.T) {
	r := newRegistry(t)

	plain := r.CreateTask(model.Task{Title: "unmarked"}, t0)
	assert.Equal(t, model.StakesHigh, plain.Stakes)

	explicit := r.CreateTask(model.Task{Title: "marked", Stakes: model.StakesLow}, t0)
	assert.Equal(t, model.StakesLow, explicit.Stakes)
}

func TestUpdatePreservesLifecycleState(t *testing.T) {
	r := newRegistry(t)
	task := r.CreateTask(model.Task{Title: "draft"}, t0)
	require.NoError(t, r.StartTask(task.ID, t0))
	require.NoError(t, r.PauseTask(task.ID, 0, "", t0.Add(time.Minute)))

	// An amendment carrying tampered lifecycle fields must not take effect.
	amended, _ := r.Task(task.ID)
	amended.Title = "final"
	amended.Stakes = model.StakesCritical
	amended.Status = model.StatusCompleted
	amended.AccumulatedSeconds = 9999
	amended.EscapeAttempts = 0
	forged := t0.Add(-time.Hour)
	amended.LastSessionStart = &forged
	require.NoError(t, r.UpdateTask(amended, t0.Add(2*time.Minute)))

	got, _ := r.Task(task.ID)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, model.StakesCritical, got.Stakes)
	assert.Equal(t, model.StatusPaused, got.Status)
	assert.Equal(t, int64(60), got.AccumulatedSeconds)
	assert.Equal(t, 1, got.EscapeAttempts)
	assert.Nil(t, got.LastSessionStart)

	assert.Equal(t, model.LogContractAmended, r.Logs[0].Kind)
}

func TestUpdateUnknownTask(t *testing.T) {
	r := newRegistry(t)
	err := r.UpdateTask(model.Task{ID: "ghost", Title: "x"}, t0)
	assert.True(t, errors.Is(err, registry.ErrTaskNotFound))
}

func TestBadTransitionErrors(t *testing.T) {
	r := newRegistry(t)
	task := r.CreateTask(model.Task{Title: "strict"}, t0)

	assert.True(t, errors.Is(r.PauseTask(task.ID, 0, "", t0), registry.ErrBadTransition))
	assert.True(t, errors.Is(r.ResumeTask(task.ID, t0), registry.ErrBadTransition))

	require.NoError(t, r.StartTask(task.ID, t0))
	assert.True(t, errors.Is(r.StartTask(task.ID, t0), registry.ErrBadTransition))
}
