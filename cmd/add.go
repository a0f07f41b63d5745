package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
)

var (
	addDesc        string
	addCategory    string
	addTags        string
	addAt          string
	addDeadline    string
	addDuration    int
	addRecur       string
	addStakes      string
	addDepends     []string
	addSubtasks    []string
	addNoReminders bool
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Register a new obligation",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDesc, "desc", "", "Task description")
	addCmd.Flags().StringVar(&addCategory, "category", string(model.CategoryOther), "Category: WORK_PREP, LIFE_MAINTENANCE, OTHER")
	addCmd.Flags().StringVar(&addTags, "tags", "", "Comma-separated tags")
	addCmd.Flags().StringVar(&addAt, "at", "", "Scheduled start (RFC3339 or \"2006-01-02 15:04\")")
	addCmd.Flags().StringVar(&addDeadline, "deadline", "", "Deadline (RFC3339 or \"2006-01-02 15:04\")")
	addCmd.Flags().IntVar(&addDuration, "duration", 30, "Planned duration in minutes")
	addCmd.Flags().StringVar(&addRecur, "recur", string(model.RecurNone), "Recurrence: NONE, DAILY, WEEKLY")
	addCmd.Flags().StringVar(&addStakes, "stakes", string(model.StakesHigh), "Stakes: LOW, HIGH, CRITICAL")
	addCmd.Flags().StringArrayVar(&addDepends, "depends", nil, "Task ID this depends on (repeatable)")
	addCmd.Flags().StringArrayVar(&addSubtasks, "subtask", nil, "Checklist item (repeatable)")
	addCmd.Flags().BoolVar(&addNoReminders, "no-reminders", false, "Disable pre-start reminders")
}

func runAdd(cmd *cobra.Command, args []string) error {
	title := strings.TrimSpace(args[0])
	if title == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if !model.ValidCategory(model.Category(addCategory)) {
		return fmt.Errorf("unknown category %q", addCategory)
	}
	if !model.ValidRecurrence(model.Recurrence(addRecur)) {
		return fmt.Errorf("unknown recurrence %q", addRecur)
	}
	if !model.ValidStakes(model.Stakes(addStakes)) {
		return fmt.Errorf("unknown stakes %q", addStakes)
	}
	if addDuration <= 0 {
		return fmt.Errorf("duration must be positive")
	}

	scheduledAt, err := parseFlagTime(addAt)
	if err != nil {
		return fmt.Errorf("parsing --at: %w", err)
	}
	deadline, err := parseFlagTime(addDeadline)
	if err != nil {
		return fmt.Errorf("parsing --deadline: %w", err)
	}

	task := model.Task{
		Title:            title,
		Description:      addDesc,
		Category:         model.Category(addCategory),
		ScheduledAt:      scheduledAt,
		Deadline:         deadline,
		DurationMinutes:  addDuration,
		Recurrence:       model.Recurrence(addRecur),
		RemindersEnabled: !addNoReminders,
		Stakes:           model.Stakes(addStakes),
		Dependencies:     addDepends,
	}
	if addTags != "" {
		for _, t := range strings.Split(addTags, ",") {
			task.Tags = append(task.Tags, strings.TrimSpace(t))
		}
	}
	for _, s := range addSubtasks {
		task.SubTasks = append(task.SubTasks, model.SubTask{ID: uuid.NewString(), Title: s})
	}

	reg, st := openRegistry()
	defer st.Close()

	// Dependencies must name tasks that exist; a typo here would silently
	// block the task forever.
	for _, dep := range task.Dependencies {
		if _, err := reg.Task(dep); err != nil {
			fmt.Fprintf(os.Stderr, "Unknown dependency %q\n", dep)
			os.Exit(1)
		}
	}

	created := reg.CreateTask(task, time.Now())
	fmt.Printf("Obligation registered: %q (%s)\n", created.Title, created.ID)
	return nil
}

// parseFlagTime parses the two accepted time formats, returning nil for "".
func parseFlagTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
