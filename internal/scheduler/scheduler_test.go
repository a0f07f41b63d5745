package scheduler_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/registry"
	"github.com/mirrorcli/mirror/internal/scheduler"
	"github.com/mirrorcli/mirror/internal/store"
)

type fakeNotifier struct {
	titles []string
	fail   bool
}

func (n *fakeNotifier) Notify(title, body string) error {
	n.titles = append(n.titles, title)
	if n.fail {
		return fmt.Errorf("notification daemon unavailable")
	}
	return nil
}

func newFixture(t *testing.T) (*registry.Registry, *scheduler.Scheduler, *fakeNotifier) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	reg, err := registry.Load(s)
	require.NoError(t, err)

	n := &fakeNotifier{}
	return reg, scheduler.New(reg, n), n
}

var t0 = time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

func countLogs(reg *registry.Registry, kind model.LogKind) int {
	n := 0
	for _, l := range reg.Logs {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

func TestUpcomingReminderFiresExactlyOnce(t *testing.T) {
	reg, sched, notifier := newFixture(t)

	start := t0.Add(10 * time.Minute)
	reg.CreateTask(model.Task{
		Title:            "client call prep",
		ScheduledAt:      &start,
		RemindersEnabled: true,
		DurationMinutes:  60,
	}, t0.Add(-time.Hour))

	// The T-10 window opens just under 11 minutes out and closes at exactly
	// 10 minutes; the predicate holds on every tick inside it.
	windowOpen := start.Add(-10*time.Minute - 50*time.Second)
	sched.Tick(windowOpen)
	assert.Len(t, notifier.titles, 1)
	assert.Contains(t, notifier.titles[0], "client call prep")
	assert.Equal(t, 1, countLogs(reg, model.LogReminderFired))

	// Fifty more ticks inside the window: the effect does not repeat.
	for i := 1; i <= 50; i++ {
		sched.Tick(windowOpen.Add(time.Duration(i) * time.Second))
	}
	assert.Len(t, notifier.titles, 1)

	// T-5 and T-2 are distinct thresholds with their own single firings.
	sched.Tick(t0.Add(5 * time.Minute))
	sched.Tick(t0.Add(5*time.Minute + time.Second))
	sched.Tick(t0.Add(8 * time.Minute))
	sched.Tick(t0.Add(8*time.Minute + time.Second))
	assert.Len(t, notifier.titles, 3)
	assert.Equal(t, 3, countLogs(reg, model.LogReminderFired))
}

func TestNoReminderWhenDisabled(t *testing.T) {
	reg, sched, notifier := newFixture(t)

	start := t0.Add(10 * time.Minute)
	reg.CreateTask(model.Task{
		Title:            "silent task",
		ScheduledAt:      &start,
		RemindersEnabled: false,
	}, t0.Add(-time.Hour))

	sched.Tick(t0)
	assert.Empty(t, notifier.titles)
}

func TestPomodoroExpiryFiresOnceAndDeactivates(t *testing.T) {
	reg, sched, notifier := newFixture(t)

	begin := t0
	pomo := model.DefaultPomodoro()
	pomo.IsActive = true
	pomo.StartTime = &begin
	pomo.DurationMinutes = 25
	reg.SavePomodoro(pomo)

	// One second short: nothing happens.
	sched.Tick(t0.Add(1499 * time.Second))
	assert.Empty(t, notifier.titles)
	assert.True(t, reg.Pomodoro.IsActive)

	sched.Tick(t0.Add(1500 * time.Second))
	assert.Len(t, notifier.titles, 1)
	assert.Equal(t, "Timer Complete", notifier.titles[0])
	assert.False(t, reg.Pomodoro.IsActive)
	assert.Nil(t, reg.Pomodoro.StartTime)
	assert.Equal(t, 1, countLogs(reg, model.LogPomodoroSession))

	sched.Tick(t0.Add(1501 * time.Second))
	assert.Len(t, notifier.titles, 1)
}

func TestPauseWindowWarningAndExpiry(t *testing.T) {
	reg, sched, notifier := newFixture(t)

	task := reg.CreateTask(model.Task{Title: "weights"}, t0.Add(-time.Hour))
	require.NoError(t, reg.StartTask(task.ID, t0.Add(-30*time.Minute)))
	require.NoError(t, reg.PauseTask(task.ID, 2*time.Minute, "", t0))
	until := t0.Add(2 * time.Minute)

	// Outside the trailing window: silent.
	sched.Tick(until.Add(-10 * time.Second))
	assert.Empty(t, notifier.titles)

	// Warning fires once inside the final five seconds.
	sched.Tick(until.Add(-4 * time.Second))
	sched.Tick(until.Add(-3 * time.Second))
	assert.Equal(t, []string{"BREAK ENDING"}, notifier.titles)

	// Expiry is a distinct one-shot with its own ledger entry.
	sched.Tick(until)
	sched.Tick(until.Add(time.Second))
	sched.Tick(until.Add(2 * time.Second))
	assert.Equal(t, []string{"BREAK ENDING", "BREAK OVER"}, notifier.titles)
	assert.Equal(t, 1, countLogs(reg, model.LogAlarmTriggered))
}

func TestGhostingDetection(t *testing.T) {
	reg, sched, notifier := newFixture(t)
	sched.InactivityThreshold = time.Minute

	task := reg.CreateTask(model.Task{Title: "deep work"}, t0)
	require.NoError(t, reg.StartTask(task.ID, t0))

	// Still within the threshold.
	sched.Tick(t0.Add(time.Minute))
	assert.Empty(t, notifier.titles)

	// Just past the threshold: fires once.
	sched.Tick(t0.Add(time.Minute + time.Second))
	assert.Equal(t, []string{"Inertia Detected"}, notifier.titles)
	assert.Equal(t, 1, countLogs(reg, model.LogGhostingDetected))

	// The detection log advanced the last-action instant, so the next
	// threshold crossing is measured from it and fires again.
	sched.Tick(t0.Add(time.Minute + 2*time.Second))
	assert.Len(t, notifier.titles, 1)

	fired := t0.Add(time.Minute + time.Second)
	sched.Tick(fired.Add(time.Minute + time.Second))
	assert.Len(t, notifier.titles, 2)
	assert.Equal(t, 2, countLogs(reg, model.LogGhostingDetected))
}

func TestGhostingRequiresRunningTask(t *testing.T) {
	reg, sched, notifier := newFixture(t)
	sched.InactivityThreshold = time.Minute

	reg.CreateTask(model.Task{Title: "idle"}, t0)

	sched.Tick(t0.Add(time.Minute + time.Second))
	assert.Empty(t, notifier.titles)
	assert.Zero(t, countLogs(reg, model.LogGhostingDetected))
}

func TestNotifierFailureDoesNotStopTheLoop(t *testing.T) {
	reg, sched, notifier := newFixture(t)
	notifier.fail = true

	begin := t0
	pomo := model.DefaultPomodoro()
	pomo.IsActive = true
	pomo.StartTime = &begin
	pomo.DurationMinutes = 1
	reg.SavePomodoro(pomo)

	sched.Tick(t0.Add(time.Minute))
	// The effect still completed despite delivery failure.
	assert.False(t, reg.Pomodoro.IsActive)
	assert.Equal(t, 1, countLogs(reg, model.LogPomodoroSession))

	// Later predicates keep evaluating on subsequent ticks.
	start := t0.Add(time.Minute + 10*time.Minute)
	reg.CreateTask(model.Task{Title: "next", ScheduledAt: &start, RemindersEnabled: true}, t0)
	sched.Tick(t0.Add(time.Minute))
	assert.Equal(t, 1, countLogs(reg, model.LogReminderFired))
}
