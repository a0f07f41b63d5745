// Package registry owns the in-memory application state and the task state
// machine. Mutations apply in memory first and are then mirrored to the
// store; a failed durable write is reported as a warning and never rolls the
// in-memory update back.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/store"
)

var (
	// ErrTaskNotFound is returned when the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrCompleted is returned for transitions attempted on a completed task.
	ErrCompleted = errors.New("task is completed; no further transitions")
	// ErrBadTransition is returned when the task is not in a state the
	// operation accepts.
	ErrBadTransition = errors.New("invalid state transition")
)

// BlockedError reports a start refused by incomplete dependencies.
type BlockedError struct {
	Blocking []model.Task
}

func (e *BlockedError) Error() string {
	titles := make([]string, len(e.Blocking))
	for i, t := range e.Blocking {
		titles[i] = t.Title
	}
	return "blocked by: " + strings.Join(titles, ", ")
}

// Registry is the single owner of application state. It is not safe for
// concurrent use; the CLI mutates it from one goroutine only.
type Registry struct {
	store *store.Store

	Tasks       []model.Task
	Logs        []model.LogEntry // newest first
	Journals    []model.JournalEntry
	Reflections []model.ReflectionResponse
	Profile     *model.UserProfile
	Pomodoro    model.PomodoroState
}

// Load reads every collection from the store into memory.
func Load(s *store.Store) (*Registry, error) {
	r := &Registry{store: s}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads all collections, discarding in-memory state. The watch
// daemon calls this to observe writes made by other mirror processes.
func (r *Registry) Reload() error {
	tasks, err := store.ReadAll[model.Task](r.store, store.Tasks)
	if err != nil {
		return err
	}
	logs, err := store.ReadAll[model.LogEntry](r.store, store.Logs)
	if err != nil {
		return err
	}
	journals, err := store.ReadAll[model.JournalEntry](r.store, store.Journals)
	if err != nil {
		return err
	}
	reflections, err := store.ReadAll[model.ReflectionResponse](r.store, store.Reflections)
	if err != nil {
		return err
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Timestamp.After(logs[j].Timestamp) })
	sort.Slice(journals, func(i, j int) bool { return journals[i].Timestamp.After(journals[j].Timestamp) })

	r.Tasks, r.Logs, r.Journals, r.Reflections = tasks, logs, journals, reflections

	profile, ok, err := store.ReadOne[model.UserProfile](r.store, store.Profile, model.ProfileID)
	if err != nil {
		return err
	}
	if ok {
		r.Profile = &profile
	} else {
		r.Profile = nil
	}

	pomo, ok, err := store.ReadOne[model.PomodoroState](r.store, store.Pomodoro, model.PomodoroID)
	if err != nil {
		return err
	}
	if !ok {
		pomo = model.DefaultPomodoro()
	}
	r.Pomodoro = pomo
	return nil
}

// warnf reports a lost durable write without interrupting the operation.
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

func (r *Registry) persistTask(t model.Task) {
	if err := store.Upsert(r.store, store.Tasks, t); err != nil {
		warnf("persisting task %s: %v", t.ID, err)
	}
}

// AppendLog writes an immutable ledger entry. Every user action goes through
// here, so the newest log timestamp doubles as the last-action instant for
// the ghosting predicate.
func (r *Registry) AppendLog(kind model.LogKind, content string, metadata map[string]any, now time.Time) model.LogEntry {
	entry := model.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Kind:      kind,
		Content:   content,
		Metadata:  metadata,
	}
	r.Logs = append([]model.LogEntry{entry}, r.Logs...)
	if err := store.Upsert(r.store, store.Logs, entry); err != nil {
		warnf("persisting log entry: %v", err)
	}
	return entry
}

// LastAction returns the timestamp of the most recent ledger entry.
func (r *Registry) LastAction() (time.Time, bool) {
	if len(r.Logs) == 0 {
		return time.Time{}, false
	}
	return r.Logs[0].Timestamp, true
}

func (r *Registry) findTask(id string) (int, error) {
	for i := range r.Tasks {
		if r.Tasks[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// Task returns a copy of the task with the given id.
func (r *Registry) Task(id string) (model.Task, error) {
	i, err := r.findTask(id)
	if err != nil {
		return model.Task{}, err
	}
	return r.Tasks[i], nil
}

// CreateTask registers a new obligation and logs the signing.
func (r *Registry) CreateTask(t model.Task, now time.Time) model.Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Status = model.StatusScheduled
	t.AccumulatedSeconds = 0
	t.EscapeAttempts = 0
	t.LastSessionStart = nil
	t.PausedUntil = nil
	// Every obligation binds hard unless the caller says otherwise.
	if t.Stakes == "" {
		t.Stakes = model.StakesHigh
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Dependencies == nil {
		t.Dependencies = []string{}
	}
	if t.SubTasks == nil {
		t.SubTasks = []model.SubTask{}
	}
	r.Tasks = append([]model.Task{t}, r.Tasks...)
	r.persistTask(t)
	r.AppendLog(model.LogContractSigned, "Obligation etched: "+t.Title, nil, now)
	return t
}

// UpdateTask overwrites an existing task's editable fields and logs the
// amendment. Lifecycle state is kept from the stored record; an amendment
// can never move a task through its lifecycle or touch its counters.
func (r *Registry) UpdateTask(t model.Task, now time.Time) error {
	i, err := r.findTask(t.ID)
	if err != nil {
		return err
	}
	cur := r.Tasks[i]
	t.Status = cur.Status
	t.AccumulatedSeconds = cur.AccumulatedSeconds
	t.EscapeAttempts = cur.EscapeAttempts
	t.LastSessionStart = cur.LastSessionStart
	t.PausedUntil = cur.PausedUntil
	r.Tasks[i] = t
	r.persistTask(t)
	r.AppendLog(model.LogContractAmended, "Obligation updated: "+t.Title, nil, now)
	return nil
}

// StartTask moves a SCHEDULED task to IN_PROGRESS. It refuses while any
// dependency is not COMPLETED.
func (r *Registry) StartTask(id string, now time.Time) error {
	return r.begin(id, now, model.StatusScheduled, model.LogTaskStarted, "Execution initiated: ")
}

// ResumeTask moves a PAUSED task back to IN_PROGRESS.
func (r *Registry) ResumeTask(id string, now time.Time) error {
	return r.begin(id, now, model.StatusPaused, model.LogTaskResumed, "Execution resumed: ")
}

func (r *Registry) begin(id string, now time.Time, from model.Status, kind model.LogKind, prefix string) error {
	i, err := r.findTask(id)
	if err != nil {
		return err
	}
	t := r.Tasks[i]
	if t.Status == model.StatusCompleted {
		return ErrCompleted
	}
	if t.Status != from {
		return fmt.Errorf("%w: %s is %s", ErrBadTransition, t.Title, t.Status)
	}
	if blocking := t.BlockedBy(r.Tasks); len(blocking) > 0 {
		return &BlockedError{Blocking: blocking}
	}
	start := now
	t.Status = model.StatusInProgress
	t.LastSessionStart = &start
	t.PausedUntil = nil
	r.Tasks[i] = t
	r.persistTask(t)
	r.AppendLog(kind, prefix+t.Title, nil, now)
	return nil
}

// PauseTask folds the live session into the accumulated total and parks the
// task. A positive window sets PausedUntil for the scheduler's pause-expiry
// alarm; transcript, when non-empty, preserves the gatekeeper exchange.
func (r *Registry) PauseTask(id string, window time.Duration, transcript string, now time.Time) error {
	i, err := r.findTask(id)
	if err != nil {
		return err
	}
	t := r.Tasks[i]
	if t.Status != model.StatusInProgress {
		return fmt.Errorf("%w: %s is %s", ErrBadTransition, t.Title, t.Status)
	}
	if t.LastSessionStart != nil {
		t.AccumulatedSeconds += int64(now.Sub(*t.LastSessionStart).Seconds())
		t.LastSessionStart = nil
	}
	t.Status = model.StatusPaused
	t.PausedUntil = nil
	if window > 0 {
		until := now.Add(window)
		t.PausedUntil = &until
	}
	t.EscapeAttempts++
	r.Tasks[i] = t
	r.persistTask(t)

	var meta map[string]any
	if transcript != "" {
		meta = map[string]any{"transcript": transcript}
	}
	r.AppendLog(model.LogTaskPaused,
		fmt.Sprintf("Paused task %q for %s", t.Title, window), meta, now)
	return nil
}

// CompleteTask finishes a task. When the task recurs, exactly one successor
// is created: SCHEDULED, zeroed counters, start shifted a day or a week.
// The successor (or nil) is returned.
func (r *Registry) CompleteTask(id string, now time.Time) (*model.Task, error) {
	i, err := r.findTask(id)
	if err != nil {
		return nil, err
	}
	t := r.Tasks[i]
	if t.Status == model.StatusCompleted {
		return nil, ErrCompleted
	}
	if t.LastSessionStart != nil {
		t.AccumulatedSeconds += int64(now.Sub(*t.LastSessionStart).Seconds())
		t.LastSessionStart = nil
	}
	t.Status = model.StatusCompleted
	t.PausedUntil = nil
	r.Tasks[i] = t
	r.persistTask(t)
	r.AppendLog(model.LogTaskCompleted, "Task verified and completed: "+t.Title, nil, now)

	if t.Recurrence != model.RecurDaily && t.Recurrence != model.RecurWeekly {
		return nil, nil
	}

	next := t
	next.ID = uuid.NewString()
	next.Status = model.StatusScheduled
	next.AccumulatedSeconds = 0
	next.EscapeAttempts = 0
	next.LastSessionStart = nil
	next.PausedUntil = nil
	next.Deadline = nil
	days := 1
	if t.Recurrence == model.RecurWeekly {
		days = 7
	}
	start := now.AddDate(0, 0, days)
	next.ScheduledAt = &start
	r.Tasks = append([]model.Task{next}, r.Tasks...)
	r.persistTask(next)
	return &next, nil
}

// DeleteTask removes the task entirely and rewrites the collection in bulk.
// Deleting an unfinished obligation is a repudiation and accrues debt.
func (r *Registry) DeleteTask(id, reason string, now time.Time) error {
	i, err := r.findTask(id)
	if err != nil {
		return err
	}
	t := r.Tasks[i]
	r.Tasks = append(r.Tasks[:i], r.Tasks[i+1:]...)
	if err := store.ReplaceCollection(r.store, store.Tasks, r.Tasks); err != nil {
		warnf("persisting task delete: %v", err)
	}
	r.AppendLog(model.LogTaskDeleted, "Task destroyed: "+t.Title,
		map[string]any{"reason": reason}, now)
	if t.Status != model.StatusCompleted {
		r.AppendLog(model.LogRepudiation, "Unfinished obligation repudiated: "+t.Title, nil, now)
		r.AccrueDebt(10, "repudiation of "+t.Title, now)
	}
	return nil
}

// Integrity returns the completed-task percentage, 100 with no tasks.
func (r *Registry) Integrity() int {
	if len(r.Tasks) == 0 {
		return 100
	}
	done := 0
	for _, t := range r.Tasks {
		if t.Status == model.StatusCompleted {
			done++
		}
	}
	return int(float64(done)/float64(len(r.Tasks))*100 + 0.5)
}

// SaveProfile stores the singleton profile record.
func (r *Registry) SaveProfile(p model.UserProfile) {
	p.ID = model.ProfileID
	r.Profile = &p
	if err := store.Upsert(r.store, store.Profile, p); err != nil {
		warnf("persisting profile: %v", err)
	}
}

// AccrueDebt increases the integrity-debt counter. The counter never
// decreases; callers pass only positive amounts.
func (r *Registry) AccrueDebt(points float64, reason string, now time.Time) {
	if r.Profile == nil || points <= 0 {
		return
	}
	r.Profile.IntegrityDebt += points
	if err := store.Upsert(r.store, store.Profile, *r.Profile); err != nil {
		warnf("persisting profile: %v", err)
	}
	r.AppendLog(model.LogIntegrityDebt,
		fmt.Sprintf("Integrity debt +%.0f: %s", points, reason), nil, now)
}

// SavePomodoro stores the singleton timer record.
func (r *Registry) SavePomodoro(p model.PomodoroState) {
	p.ID = model.PomodoroID
	r.Pomodoro = p
	if err := store.Upsert(r.store, store.Pomodoro, p); err != nil {
		warnf("persisting pomodoro state: %v", err)
	}
}

// SaveJournal appends a journal entry and records the dump in the ledger.
func (r *Registry) SaveJournal(entry model.JournalEntry, now time.Time) {
	r.Journals = append([]model.JournalEntry{entry}, r.Journals...)
	if err := store.Upsert(r.store, store.Journals, entry); err != nil {
		warnf("persisting journal entry: %v", err)
	}
	r.AppendLog(model.LogJournalDump, "Journal entry saved.",
		map[string]any{"entry_id": entry.ID, "chars": len(entry.Content)}, now)
}

// AttachReflection performs the one permitted mutation of a journal entry:
// attaching the asynchronously computed reflection. If the entry has been
// deleted since the reflection was requested, the update is dropped.
func (r *Registry) AttachReflection(entryID, reflection string) {
	for i := range r.Journals {
		if r.Journals[i].ID == entryID {
			r.Journals[i].Reflection = reflection
			if err := store.Upsert(r.store, store.Journals, r.Journals[i]); err != nil {
				warnf("persisting journal reflection: %v", err)
			}
			return
		}
	}
}

// DeleteJournal removes a journal entry.
func (r *Registry) DeleteJournal(entryID string) error {
	for i := range r.Journals {
		if r.Journals[i].ID == entryID {
			r.Journals = append(r.Journals[:i], r.Journals[i+1:]...)
			return r.store.Delete(store.Journals, entryID)
		}
	}
	return fmt.Errorf("journal entry not found: %s", entryID)
}

// SaveReflection upserts the answer for (day, prompt); answering the same
// prompt twice in a day overwrites the earlier answer.
func (r *Registry) SaveReflection(resp model.ReflectionResponse, now time.Time) {
	for i := range r.Reflections {
		if r.Reflections[i].ID == resp.ID {
			r.Reflections[i] = resp
			if err := store.Upsert(r.store, store.Reflections, resp); err != nil {
				warnf("persisting reflection: %v", err)
			}
			return
		}
	}
	r.Reflections = append(r.Reflections, resp)
	if err := store.Upsert(r.store, store.Reflections, resp); err != nil {
		warnf("persisting reflection: %v", err)
	}
	r.AppendLog(model.LogReflectionSubmitted,
		fmt.Sprintf("Prompt %d answered", resp.PromptID),
		map[string]any{"prompt_id": resp.PromptID, "category": resp.Category}, now)
}

// RecordShield logs an admitted avoidance behaviour.
func (r *Registry) RecordShield(description string, now time.Time) {
	r.AppendLog(model.LogShieldLogged, "Shield activated: "+description, nil, now)
}
