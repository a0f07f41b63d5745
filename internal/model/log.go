package model

import "time"

// LogKind is the closed set of ledger event kinds.
type LogKind string

const (
	LogConfession           LogKind = "CONFESSION"
	LogSystemEvent          LogKind = "SYSTEM_EVENT"
	LogContractSigned       LogKind = "CONTRACT_SIGNED"
	LogTaskStarted          LogKind = "TASK_STARTED"
	LogTaskPaused           LogKind = "TASK_PAUSED"
	LogTaskResumed          LogKind = "TASK_RESUMED"
	LogContractBreached     LogKind = "CONTRACT_BREACHED"
	LogTaskDeleted          LogKind = "TASK_DELETED"
	LogRepudiation          LogKind = "OBLIGATION_REPUDIATION"
	LogGhostingDetected     LogKind = "GHOSTING_DETECTED"
	LogInterrogation        LogKind = "SOCRATIC_INTERROGATION"
	LogQuizFailure          LogKind = "QUIZ_FAILURE"
	LogQuizSuccess          LogKind = "QUIZ_SUCCESS"
	LogJournalDump          LogKind = "JOURNAL_DUMP"
	LogPsychProfile         LogKind = "AI_PSYCH_PROFILE"
	LogIntegrityDebt        LogKind = "INTEGRITY_DEBT_ACCRUED"
	LogVoidExplanation      LogKind = "VOID_EXPLANATION"
	LogSelfInquisition      LogKind = "SELF_INQUISITION"
	LogAlarmTriggered       LogKind = "ALARM_TRIGGERED"
	LogContractAmended      LogKind = "CONTRACT_AMENDED"
	LogShieldLogged         LogKind = "SHIELD_LOGGED"
	LogPomodoroSession      LogKind = "POMODORO_SESSION"
	LogTaskCompleted        LogKind = "TASK_COMPLETED"
	LogReflectionSubmitted  LogKind = "REFLECTION_SUBMITTED"
	LogReflectionCompleted  LogKind = "REFLECTION_SESSION_COMPLETED"
	LogReminderFired        LogKind = "REMINDER_FIRED"
)

// LogEntry is a single append-only ledger record. Entries are immutable once
// written; display order is newest first.
type LogEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      LogKind        `json:"kind"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Key returns the store identifier for the entry.
func (l LogEntry) Key() string { return l.ID }
