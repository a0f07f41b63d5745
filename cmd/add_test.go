package cmd

import (
	"testing"
	"time"
)

func TestParseFlagTime(t *testing.T) {
	tests := []struct {
		input   string
		wantNil bool
		wantErr bool
	}{
		{"", true, false},
		{"2026-03-01T09:30:00Z", false, false},
		{"2026-03-01 09:30", false, false},
		{"tomorrow", false, true},
		{"2026-13-01 09:30", false, true},
	}
	for _, tt := range tests {
		got, err := parseFlagTime(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseFlagTime(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseFlagTime(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if (got == nil) != tt.wantNil {
			t.Errorf("parseFlagTime(%q) = %v, wantNil=%v", tt.input, got, tt.wantNil)
		}
	}
}

func TestParseFlagTimeLocalFormat(t *testing.T) {
	got, err := parseFlagTime("2026-03-01 09:30")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("parseFlagTime local = %v, want %v", got, want)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abc", "abc"},
		{"12345678", "12345678"},
		{"123456789abcdef", "12345678"},
	}
	for _, tt := range tests {
		if got := shortID(tt.input); got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
