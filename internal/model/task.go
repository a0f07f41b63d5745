package model

import "time"

// Category classifies what an obligation is for.
type Category string

const (
	CategoryWorkPrep        Category = "WORK_PREP"
	CategoryLifeMaintenance Category = "LIFE_MAINTENANCE"
	CategoryOther           Category = "OTHER"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryWorkPrep, CategoryLifeMaintenance, CategoryOther:
		return true
	}
	return false
}

// Recurrence controls whether completing a task schedules a successor.
type Recurrence string

const (
	RecurNone   Recurrence = "NONE"
	RecurDaily  Recurrence = "DAILY"
	RecurWeekly Recurrence = "WEEKLY"
)

// ValidRecurrence reports whether r is a known recurrence rule.
func ValidRecurrence(r Recurrence) bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly:
		return true
	}
	return false
}

// Stakes is the declared priority of an obligation.
type Stakes string

const (
	StakesLow      Stakes = "LOW"
	StakesHigh     Stakes = "HIGH"
	StakesCritical Stakes = "CRITICAL"
)

// ValidStakes reports whether s is a known stakes level.
func ValidStakes(s Stakes) bool {
	switch s {
	case StakesLow, StakesHigh, StakesCritical:
		return true
	}
	return false
}

// Status is the lifecycle state of a task.
//
// SCHEDULED -> IN_PROGRESS <-> PAUSED -> COMPLETED. COMPLETED is terminal.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaused     Status = "PAUSED"
	StatusCompleted  Status = "COMPLETED"
)

// SubTask is a single checklist item inside a task.
type SubTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task represents a single user obligation ("contract").
//
// AccumulatedSeconds only ever grows; LastSessionStart is set if and only if
// the task is IN_PROGRESS. The registry enforces both.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Tags        []string `json:"tags"`

	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	DurationMinutes  int        `json:"duration_minutes"`
	Recurrence       Recurrence `json:"recurrence"`
	RemindersEnabled bool       `json:"reminders_enabled"`

	Status         Status `json:"status"`
	Stakes         Stakes `json:"stakes"`
	EscapeAttempts int    `json:"escape_attempts"`

	AccumulatedSeconds int64      `json:"accumulated_seconds"`
	LastSessionStart   *time.Time `json:"last_session_start,omitempty"`
	PausedUntil        *time.Time `json:"paused_until,omitempty"`

	Dependencies []string  `json:"dependencies"`
	SubTasks     []SubTask `json:"sub_tasks"`
}

// Key returns the store identifier for the task.
func (t Task) Key() string { return t.ID }

// Elapsed returns total worked time including the live session, if any.
func (t Task) Elapsed(now time.Time) int64 {
	total := t.AccumulatedSeconds
	if t.LastSessionStart != nil {
		total += int64(now.Sub(*t.LastSessionStart).Seconds())
	}
	return total
}

// BlockedBy returns the incomplete dependencies of t within all.
func (t Task) BlockedBy(all []Task) []Task {
	if len(t.Dependencies) == 0 {
		return nil
	}
	deps := make(map[string]bool, len(t.Dependencies))
	for _, id := range t.Dependencies {
		deps[id] = true
	}
	var blocking []Task
	for _, other := range all {
		if deps[other.ID] && other.Status != StatusCompleted {
			blocking = append(blocking, other)
		}
	}
	return blocking
}
