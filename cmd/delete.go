package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
)

var (
	deleteReason string
	deleteForce  bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Destroy an obligation",
	Long: `delete removes a task permanently. Deleting an unfinished obligation
is a repudiation: it is logged as such and accrues integrity debt.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteReason, "reason", "", "Why this obligation no longer binds you")
	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip the confrontation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	id := resolveTaskID(reg, args[0])
	task, err := reg.Task(id)
	if err != nil {
		return err
	}

	if !deleteForce && task.Status != model.StatusCompleted {
		question := newAdvisor(cmd.Context()).SocraticQuestion(cmd.Context(), task, reg.Logs)
		fmt.Println(question)
		in := bufio.NewReader(os.Stdin)
		answer := promptLine(in, "Delete anyway? [y/N]")
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Println("The obligation stands.")
			return nil
		}
	}

	if err := reg.DeleteTask(id, deleteReason, time.Now()); err != nil {
		return err
	}

	if task.Status != model.StatusCompleted {
		fmt.Printf("Repudiated: %q. The debt is recorded.\n", task.Title)
	} else {
		fmt.Printf("Removed: %q.\n", task.Title)
	}
	return nil
}
