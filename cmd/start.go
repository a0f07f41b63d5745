package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/registry"
)

var startCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Start working on a scheduled obligation",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	id := resolveTaskID(reg, args[0])
	now := time.Now()
	if err := reg.StartTask(id, now); err != nil {
		var blocked *registry.BlockedError
		if errors.As(err, &blocked) {
			fmt.Fprintln(os.Stderr, "Cannot start:", blocked.Error())
			os.Exit(1)
		}
		return err
	}

	task, err := reg.Task(id)
	if err != nil {
		return err
	}
	fmt.Printf("Execution started: %q at %s. The clock is running.\n",
		task.Title, now.Format("15:04:05"))
	return nil
}
