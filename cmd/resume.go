package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/registry"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <task-id>",
	Short: "Resume a paused obligation",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	id := resolveTaskID(reg, args[0])
	now := time.Now()
	if err := reg.ResumeTask(id, now); err != nil {
		var blocked *registry.BlockedError
		if errors.As(err, &blocked) {
			fmt.Fprintln(os.Stderr, "Cannot resume:", blocked.Error())
			os.Exit(1)
		}
		return err
	}

	task, err := reg.Task(id)
	if err != nil {
		return err
	}
	fmt.Printf("Back on the hook: %q. Accumulated so far: %s.\n",
		task.Title, formatElapsed(task.AccumulatedSeconds))
	return nil
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
