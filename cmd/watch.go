package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/config"
	"github.com/mirrorcli/mirror/internal/notify"
	"github.com/mirrorcli/mirror/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the reminder daemon until interrupted",
	Long: `watch evaluates reminders once per second: upcoming task warnings,
pause-window alarms, pomodoro bells, and inactivity detection. State written
by other mirror commands is picked up automatically.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s := scheduler.New(reg, notify.NewDesktop())
	s.ReloadEachTick = true
	s.InactivityThreshold = time.Duration(cfg.Watch.InactivityMinutes) * time.Minute

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("Watching. Ctrl-C to stop.")
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("Watch stopped.")
	return nil
}
