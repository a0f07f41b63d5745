package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/timecalc"
)

var (
	listStatus string
	listAll    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List obligations grouped by status",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only this status: SCHEDULED, IN_PROGRESS, PAUSED, COMPLETED")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include completed tasks")
}

// listOrder is the planner display order.
var listOrder = []model.Status{
	model.StatusInProgress,
	model.StatusPaused,
	model.StatusScheduled,
	model.StatusCompleted,
}

func runList(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	now := time.Now()
	printed := 0
	for _, status := range listOrder {
		if listStatus != "" && string(status) != listStatus {
			continue
		}
		if status == model.StatusCompleted && !listAll && listStatus == "" {
			continue
		}
		var group []model.Task
		for _, t := range reg.Tasks {
			if t.Status == status {
				group = append(group, t)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Println(status)
		for _, t := range group {
			printTaskLine(t, reg.Tasks, now)
			printed++
		}
	}

	if printed == 0 {
		fmt.Println("No obligations found.")
	}
	return nil
}

func printTaskLine(t model.Task, all []model.Task, now time.Time) {
	line := fmt.Sprintf("  %-8s  %s", shortID(t.ID), t.Title)
	if t.Stakes != model.StakesHigh {
		line += fmt.Sprintf(" [%s]", t.Stakes)
	}
	if t.ScheduledAt != nil {
		line += "  @" + t.ScheduledAt.Format("2006-01-02 15:04")
	}
	if elapsed := t.Elapsed(now); elapsed > 0 {
		line += fmt.Sprintf("  (%s)", timecalc.FormatDuration(elapsed))
	}
	if blocking := t.BlockedBy(all); len(blocking) > 0 {
		line += fmt.Sprintf("  blocked by %d task(s)", len(blocking))
	}
	fmt.Println(line)
}

// shortID abbreviates a UUID for display; full IDs still work everywhere.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
