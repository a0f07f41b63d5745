package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/config"
	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/store"
	"github.com/mirrorcli/mirror/internal/timecalc"
)

var (
	pomodoroBreak bool
	pomodoroWork  int
	pomodoroRest  int
)

var pomodoroCmd = &cobra.Command{
	Use:   "pomodoro",
	Short: "Control the focus cycle timer",
}

var pomodoroStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a work or recovery cycle",
	Args:  cobra.NoArgs,
	RunE:  runPomodoroStart,
}

var pomodoroStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running cycle",
	Args:  cobra.NoArgs,
	RunE:  runPomodoroStop,
}

var pomodoroStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running cycle",
	Args:  cobra.NoArgs,
	RunE:  runPomodoroStatus,
}

var pomodoroConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Set cycle lengths",
	Args:  cobra.NoArgs,
	RunE:  runPomodoroConfig,
}

func init() {
	pomodoroStartCmd.Flags().BoolVar(&pomodoroBreak, "break", false, "Start a recovery cycle instead of work")
	pomodoroConfigCmd.Flags().IntVar(&pomodoroWork, "work", 0, "Work cycle length in minutes")
	pomodoroConfigCmd.Flags().IntVar(&pomodoroRest, "break", 0, "Recovery cycle length in minutes")
	pomodoroCmd.AddCommand(pomodoroStartCmd)
	pomodoroCmd.AddCommand(pomodoroStopCmd)
	pomodoroCmd.AddCommand(pomodoroStatusCmd)
	pomodoroCmd.AddCommand(pomodoroConfigCmd)
}

func runPomodoroStart(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	p := reg.Pomodoro
	// Config supplies the cycle lengths until `pomodoro config` has written
	// a record of its own.
	if _, exists, err := store.ReadOne[model.PomodoroState](st, store.Pomodoro, model.PomodoroID); err == nil && !exists {
		if cfg, err := config.Load(); err == nil {
			p.Settings = model.PomodoroSettings{
				Work:  cfg.Pomodoro.WorkMinutes,
				Break: cfg.Pomodoro.BreakMinutes,
			}
		}
	}
	if p.IsActive {
		fmt.Fprintln(os.Stderr, "A cycle is already running. Stop it first.")
		os.Exit(1)
	}

	now := time.Now()
	p.IsActive = true
	p.IsBreak = pomodoroBreak
	p.StartTime = &now
	p.DurationMinutes = p.Settings.Work
	if pomodoroBreak {
		p.DurationMinutes = p.Settings.Break
	}
	reg.SavePomodoro(p)

	kind := "Work"
	if pomodoroBreak {
		kind = "Recovery"
	}
	fmt.Printf("%s cycle started: %d minutes. Run `mirror watch` to hear the bell.\n",
		kind, p.DurationMinutes)
	return nil
}

func runPomodoroStop(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	p := reg.Pomodoro
	if !p.IsActive {
		fmt.Fprintln(os.Stderr, "No cycle running.")
		os.Exit(1)
	}
	p.IsActive = false
	p.StartTime = nil
	reg.SavePomodoro(p)
	fmt.Println("Cycle stopped.")
	return nil
}

func runPomodoroStatus(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	p := reg.Pomodoro
	if !p.IsActive || p.StartTime == nil {
		fmt.Printf("Idle. Cycle lengths: %d minute work, %d minute recovery.\n",
			p.Settings.Work, p.Settings.Break)
		return nil
	}
	kind := "Work"
	if p.IsBreak {
		kind = "Recovery"
	}
	total := time.Duration(p.DurationMinutes) * time.Minute
	left := total - time.Since(*p.StartTime)
	if left < 0 {
		left = 0
	}
	fmt.Printf("%s cycle: %s remaining.\n", kind, timecalc.FormatDurationHHMMSS(int64(left.Seconds())))
	return nil
}

func runPomodoroConfig(cmd *cobra.Command, args []string) error {
	if pomodoroWork <= 0 && pomodoroRest <= 0 {
		return fmt.Errorf("nothing to change: pass --work and/or --break")
	}

	reg, st := openRegistry()
	defer st.Close()

	p := reg.Pomodoro
	if pomodoroWork > 0 {
		p.Settings.Work = pomodoroWork
	}
	if pomodoroRest > 0 {
		p.Settings.Break = pomodoroRest
	}
	reg.SavePomodoro(p)
	fmt.Printf("Cycle lengths set: %d minute work, %d minute recovery.\n",
		p.Settings.Work, p.Settings.Break)
	return nil
}
