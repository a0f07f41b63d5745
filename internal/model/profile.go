package model

import "time"

// ProfileID is the fixed key of the singleton profile record.
const ProfileID = "profile"

// PomodoroID is the fixed key of the singleton pomodoro record.
const PomodoroID = "global_pomodoro"

// UserProfile is the singleton onboarding record. IntegrityDebt is a
// cumulative counter that only increases, via Registry.AccrueDebt.
type UserProfile struct {
	ID                     string     `json:"id"`
	Situation              string     `json:"situation"`
	Distractions           string     `json:"distractions"`
	Routine                string     `json:"routine"`
	DelayReason            string     `json:"delay_reason"`
	DeadlineDate           *time.Time `json:"deadline_date,omitempty"`
	HasCompletedOnboarding bool       `json:"has_completed_onboarding"`
	SprintGoals            []string   `json:"sprint_goals"`
	IntegrityDebt          float64    `json:"integrity_debt"`
}

// Key returns the store identifier for the profile.
func (p UserProfile) Key() string { return p.ID }

// PomodoroSettings holds the configured work/break cycle lengths in minutes.
type PomodoroSettings struct {
	Work  int `json:"work"`
	Break int `json:"break"`
}

// PomodoroState is the singleton pomodoro timer record.
type PomodoroState struct {
	ID              string           `json:"id"`
	IsActive        bool             `json:"is_active"`
	IsBreak         bool             `json:"is_break"`
	StartTime       *time.Time       `json:"start_time,omitempty"`
	DurationMinutes int              `json:"duration_minutes"`
	Settings        PomodoroSettings `json:"settings"`
}

// Key returns the store identifier for the pomodoro record.
func (p PomodoroState) Key() string { return p.ID }

// DefaultPomodoro returns the initial timer record.
func DefaultPomodoro() PomodoroState {
	return PomodoroState{
		ID:              PomodoroID,
		DurationMinutes: 25,
		Settings:        PomodoroSettings{Work: 25, Break: 5},
	}
}

// ReflectionResponse is one answer to one fixed daily prompt. The ID is
// "<date>-<promptID>", which guarantees at most one live answer per prompt
// per calendar day.
type ReflectionResponse struct {
	ID        string    `json:"id"`
	PromptID  int       `json:"prompt_id"`
	Question  string    `json:"question"`
	Category  string    `json:"category"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
}

// Key returns the store identifier for the response.
func (r ReflectionResponse) Key() string { return r.ID }
