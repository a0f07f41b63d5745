package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is running and where you stand",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	now := time.Now()
	running := false
	for _, t := range reg.Tasks {
		if t.Status != model.StatusInProgress {
			continue
		}
		if !running {
			fmt.Println("Running:")
			running = true
		}
		fmt.Printf("  %-8s  %s  elapsed %s\n",
			shortID(t.ID), t.Title, timecalc.FormatDurationHHMMSS(t.Elapsed(now)))
	}
	for _, t := range reg.Tasks {
		if t.Status != model.StatusPaused || t.PausedUntil == nil {
			continue
		}
		remaining := t.PausedUntil.Sub(now)
		if remaining < 0 {
			fmt.Printf("  %-8s  %s  BREAK OVERDUE by %s\n",
				shortID(t.ID), t.Title, timecalc.FormatDurationHHMMSS(int64(-remaining.Seconds())))
		} else {
			fmt.Printf("  %-8s  %s  break ends in %s\n",
				shortID(t.ID), t.Title, timecalc.FormatDurationHHMMSS(int64(remaining.Seconds())))
		}
	}
	if !running {
		fmt.Println("Nothing running.")
	}

	if reg.Pomodoro.IsActive && reg.Pomodoro.StartTime != nil {
		kind := "Work"
		if reg.Pomodoro.IsBreak {
			kind = "Recovery"
		}
		total := time.Duration(reg.Pomodoro.DurationMinutes) * time.Minute
		left := total - now.Sub(*reg.Pomodoro.StartTime)
		if left < 0 {
			left = 0
		}
		fmt.Printf("Pomodoro: %s cycle, %s remaining.\n",
			kind, timecalc.FormatDurationHHMMSS(int64(left.Seconds())))
	}

	fmt.Printf("Integrity: %d%%", reg.Integrity())
	if reg.Profile != nil && reg.Profile.IntegrityDebt > 0 {
		fmt.Printf("  (debt: %.0f)", reg.Profile.IntegrityDebt)
	}
	fmt.Println()

	if last, ok := reg.LastAction(); ok {
		fmt.Printf("Last action: %s\n", last.Format("2006-01-02 15:04:05"))
	}
	return nil
}
