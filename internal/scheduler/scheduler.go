// Package scheduler runs the 1 Hz reminder loop: every tick it evaluates
// time-based predicates against the registry and fires each matching side
// effect exactly once, guarded by a process-lifetime dedupe set.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/registry"
)

// Reminder thresholds for upcoming scheduled tasks, in minutes before start.
var reminderThresholds = []int{10, 5, 2}

const (
	// pauseWarnWindow is the trailing window before a pause expires in
	// which the single warning fires.
	pauseWarnWindow = 5 * time.Second
	// DefaultInactivityThreshold is how long without a ledger write counts
	// as ghosting while a task is in progress.
	DefaultInactivityThreshold = 45 * time.Minute
	// ghostingWindow bounds the firing window just past the threshold so
	// the effect cannot re-fire on every subsequent tick.
	ghostingWindow = 2 * time.Second
)

// Notifier delivers a single title+body notification. Delivery is
// best-effort; errors are swallowed by the scheduler.
type Notifier interface {
	Notify(title, body string) error
}

// Scheduler evaluates reminder predicates against registry state.
type Scheduler struct {
	reg      *registry.Registry
	notifier Notifier

	// InactivityThreshold is the ghosting cutoff; tests shorten it.
	InactivityThreshold time.Duration
	// ReloadEachTick makes Tick re-read the store first, so the watch
	// daemon observes writes from other mirror processes.
	ReloadEachTick bool

	fired map[string]struct{}
}

// New returns a scheduler over reg that delivers through notifier.
func New(reg *registry.Registry, notifier Notifier) *Scheduler {
	return &Scheduler{
		reg:                 reg,
		notifier:            notifier,
		InactivityThreshold: DefaultInactivityThreshold,
		fired:               make(map[string]struct{}),
	}
}

// Run ticks once per second until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if s.ReloadEachTick {
				if err := s.reg.Reload(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: reloading registry: %v\n", err)
					continue
				}
			}
			s.Tick(now)
		}
	}
}

// fireOnce records key in the dedupe set and reports whether this is its
// first appearance. Keys are never purged within a session.
func (s *Scheduler) fireOnce(key string) bool {
	if _, seen := s.fired[key]; seen {
		return false
	}
	s.fired[key] = struct{}{}
	return true
}

func (s *Scheduler) notify(title, body string) {
	if s.notifier == nil {
		return
	}
	// Permission problems and missing notification daemons are not this
	// loop's concern.
	_ = s.notifier.Notify(title, body)
}

// Tick evaluates every predicate at the given instant.
func (s *Scheduler) Tick(now time.Time) {
	s.tickPomodoro(now)
	for _, t := range s.reg.Tasks {
		s.tickUpcoming(t, now)
		s.tickPauseWindow(t, now)
	}
	s.tickGhosting(now)
}

func (s *Scheduler) tickPomodoro(now time.Time) {
	p := s.reg.Pomodoro
	if !p.IsActive || p.StartTime == nil {
		return
	}
	elapsed := now.Sub(*p.StartTime)
	if elapsed < time.Duration(p.DurationMinutes)*time.Minute {
		return
	}
	if !s.fireOnce(fmt.Sprintf("pomodoro-%d", p.StartTime.UnixMilli())) {
		return
	}
	cycle := "Work"
	if p.IsBreak {
		cycle = "Recovery"
	}
	s.notify("Timer Complete", "Cycle finished. Report to console.")
	s.reg.AppendLog(model.LogPomodoroSession, cycle+" cycle complete.", nil, now)
	p.IsActive = false
	p.StartTime = nil
	s.reg.SavePomodoro(p)
}

func (s *Scheduler) tickUpcoming(t model.Task, now time.Time) {
	if t.Status != model.StatusScheduled || t.ScheduledAt == nil || !t.RemindersEnabled {
		return
	}
	until := t.ScheduledAt.Sub(now)
	if until <= 0 {
		return
	}
	minutes := int(until / time.Minute)
	for _, threshold := range reminderThresholds {
		if minutes != threshold {
			continue
		}
		if !s.fireOnce(fmt.Sprintf("%s-remind-%d", t.ID, threshold)) {
			continue
		}
		s.notify("Task Starting Soon: "+t.Title,
			fmt.Sprintf("%d minutes remaining. Prepare for execution.", threshold))
		s.reg.AppendLog(model.LogReminderFired,
			fmt.Sprintf("T-%d reminder for %s", threshold, t.Title),
			map[string]any{"task_id": t.ID, "minutes": threshold}, now)
	}
}

func (s *Scheduler) tickPauseWindow(t model.Task, now time.Time) {
	if t.Status != model.StatusPaused || t.PausedUntil == nil {
		return
	}
	left := t.PausedUntil.Sub(now)

	if left > 0 && left <= pauseWarnWindow {
		if s.fireOnce(t.ID + "-pause-warn") {
			s.notify("BREAK ENDING", "Return to: "+t.Title+" immediately.")
		}
	}

	if left <= 0 {
		if s.fireOnce(t.ID + "-pause-end-log") {
			s.notify("BREAK OVER", "Return to: "+t.Title+" now.")
			s.reg.AppendLog(model.LogAlarmTriggered,
				"Break ended for "+t.Title+". Alarm engaged.",
				map[string]any{"task_id": t.ID}, now)
		}
	}
}

func (s *Scheduler) tickGhosting(now time.Time) {
	anyRunning := false
	for _, t := range s.reg.Tasks {
		if t.Status == model.StatusInProgress {
			anyRunning = true
			break
		}
	}
	if !anyRunning {
		return
	}
	last, ok := s.reg.LastAction()
	if !ok {
		return
	}
	idle := now.Sub(last)
	if idle <= s.InactivityThreshold || idle > s.InactivityThreshold+ghostingWindow {
		return
	}
	if !s.fireOnce(fmt.Sprintf("ghost-%d", last.UnixMilli())) {
		return
	}
	s.notify("Inertia Detected", "Are you working or drifting? Log your status.")
	// The log itself advances the last-action instant, so detection re-arms.
	s.reg.AppendLog(model.LogGhostingDetected,
		"System detected prolonged inactivity during active protocol.", nil, now)
}
