package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
)

var (
	editTitle     string
	editDesc      string
	editCategory  string
	editTags      string
	editAt        string
	editDeadline  string
	editDuration  int
	editRecur     string
	editStakes    string
	editReminders bool
)

var editCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Amend an obligation's terms",
	Long: `edit changes what a task demands, not where it stands: status,
accumulated time and escape attempts are untouchable. Only flags you pass
are changed; every amendment is logged.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editDesc, "desc", "", "New description")
	editCmd.Flags().StringVar(&editCategory, "category", "", "Category: WORK_PREP, LIFE_MAINTENANCE, OTHER")
	editCmd.Flags().StringVar(&editTags, "tags", "", "Comma-separated tags (replaces existing)")
	editCmd.Flags().StringVar(&editAt, "at", "", "Scheduled start (RFC3339 or \"2006-01-02 15:04\")")
	editCmd.Flags().StringVar(&editDeadline, "deadline", "", "Deadline (RFC3339 or \"2006-01-02 15:04\")")
	editCmd.Flags().IntVar(&editDuration, "duration", 0, "Planned duration in minutes")
	editCmd.Flags().StringVar(&editRecur, "recur", "", "Recurrence: NONE, DAILY, WEEKLY")
	editCmd.Flags().StringVar(&editStakes, "stakes", "", "Stakes: LOW, HIGH, CRITICAL")
	editCmd.Flags().BoolVar(&editReminders, "reminders", true, "Enable pre-start reminders")
}

func runEdit(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	id := resolveTaskID(reg, args[0])
	task, err := reg.Task(id)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.NFlag() == 0 {
		return fmt.Errorf("nothing to amend: pass at least one flag")
	}

	if flags.Changed("title") {
		if strings.TrimSpace(editTitle) == "" {
			return fmt.Errorf("task title must not be empty")
		}
		task.Title = strings.TrimSpace(editTitle)
	}
	if flags.Changed("desc") {
		task.Description = editDesc
	}
	if flags.Changed("category") {
		if !model.ValidCategory(model.Category(editCategory)) {
			return fmt.Errorf("unknown category %q", editCategory)
		}
		task.Category = model.Category(editCategory)
	}
	if flags.Changed("tags") {
		task.Tags = nil
		for _, t := range strings.Split(editTags, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				task.Tags = append(task.Tags, trimmed)
			}
		}
	}
	if flags.Changed("at") {
		at, err := parseFlagTime(editAt)
		if err != nil {
			return fmt.Errorf("parsing --at: %w", err)
		}
		task.ScheduledAt = at
	}
	if flags.Changed("deadline") {
		deadline, err := parseFlagTime(editDeadline)
		if err != nil {
			return fmt.Errorf("parsing --deadline: %w", err)
		}
		task.Deadline = deadline
	}
	if flags.Changed("duration") {
		if editDuration <= 0 {
			return fmt.Errorf("duration must be positive")
		}
		task.DurationMinutes = editDuration
	}
	if flags.Changed("recur") {
		if !model.ValidRecurrence(model.Recurrence(editRecur)) {
			return fmt.Errorf("unknown recurrence %q", editRecur)
		}
		task.Recurrence = model.Recurrence(editRecur)
	}
	if flags.Changed("stakes") {
		if !model.ValidStakes(model.Stakes(editStakes)) {
			return fmt.Errorf("unknown stakes %q", editStakes)
		}
		task.Stakes = model.Stakes(editStakes)
	}
	if flags.Changed("reminders") {
		task.RemindersEnabled = editReminders
	}

	if err := reg.UpdateTask(task, time.Now()); err != nil {
		return err
	}
	fmt.Printf("Contract amended: %q.\n", task.Title)
	return nil
}
