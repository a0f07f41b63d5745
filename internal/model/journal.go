package model

import "time"

// JournalMetadata captures writing-session metrics for a journal entry.
type JournalMetadata struct {
	WordCount              int     `json:"word_count"`
	CharCount              int     `json:"char_count"`
	WritingDurationSeconds int64   `json:"writing_duration_seconds"`
	Keystrokes             int     `json:"keystrokes"`
	Pauses                 int     `json:"pauses"`
	WordsPerMinute         float64 `json:"words_per_minute"`
	TimeOfDay              string  `json:"time_of_day"`
	HourOfDay              int     `json:"hour_of_day"`
	DayOfWeek              string  `json:"day_of_week"`
}

// JournalEntry is a free-text reflective note. It is mutated at most once
// after creation, to attach the asynchronously computed Reflection.
type JournalEntry struct {
	ID         string           `json:"id"`
	Timestamp  time.Time        `json:"timestamp"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    *time.Time       `json:"end_time,omitempty"`
	Content    string           `json:"content"`
	Reflection string           `json:"reflection,omitempty"`
	Metadata   *JournalMetadata `json:"metadata,omitempty"`
}

// Key returns the store identifier for the entry.
func (j JournalEntry) Key() string { return j.ID }
