package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/advisor"
	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/registry"
	"github.com/mirrorcli/mirror/internal/timecalc"
)

var (
	reportLocal       bool
	reportSave        bool
	reportInquisition bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Weekly behaviour analysis",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportLocal, "local", false, "Skip the pattern analysis, show the numbers only")
	reportCmd.Flags().BoolVar(&reportSave, "save", false, "Save the report to the journal")
	reportCmd.Flags().BoolVar(&reportInquisition, "inquisition", false, "Answer pointed questions about your ledger first")
}

func runReport(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	now := time.Now()
	printLocalReport(reg.Tasks, reg.Logs, now)

	if reportLocal {
		return nil
	}

	if reportInquisition {
		return runInquisition(cmd, reg)
	}

	analysis := newAdvisor(cmd.Context()).PatternReport(cmd.Context(), reg.Tasks, reg.Logs, reg.Journals)
	text := formatAnalysis(analysis)
	fmt.Println(text)

	if reportSave {
		entry := model.JournalEntry{
			ID:        uuid.NewString(),
			Timestamp: now,
			StartTime: now,
			Content:   "WEEKLY PATTERN REPORT\n\n" + text,
		}
		reg.SaveJournal(entry, now)
		fmt.Printf("Report saved to journal as %s.\n", shortID(entry.ID))
	}
	return nil
}

// runInquisition asks pointed questions derived from the ledger, records the
// answers, and confronts them with the behaviour analysis.
func runInquisition(cmd *cobra.Command, reg *registry.Registry) error {
	client := newAdvisor(cmd.Context())
	questions := client.InquisitionQuestions(cmd.Context(), reg.Logs)

	in := bufio.NewReader(os.Stdin)
	answers := make([]string, 0, len(questions))
	for i, q := range questions {
		fmt.Printf("%d/%d: %s\n", i+1, len(questions), q)
		answers = append(answers, promptLine(in, ">"))
	}

	now := time.Now()
	reg.AppendLog(model.LogSelfInquisition, "Self-inquisition completed.",
		map[string]any{"questions": strings.Join(questions, " | "), "answers": strings.Join(answers, " | ")}, now)

	verdict := client.AnalyzeBehavior(cmd.Context(), reg.Logs, answers)
	reg.AppendLog(model.LogPsychProfile, verdict, nil, time.Now())
	fmt.Println()
	fmt.Println(verdict)
	return nil
}

// printLocalReport prints the just-the-numbers view: focus time per
// category, escape attempts, and this week's ledger activity.
func printLocalReport(tasks []model.Task, logs []model.LogEntry, now time.Time) {
	totals := map[model.Category]int64{}
	var order []model.Category
	escapes := 0
	for _, t := range tasks {
		if _, seen := totals[t.Category]; !seen {
			order = append(order, t.Category)
		}
		totals[t.Category] += t.Elapsed(now)
		escapes += t.EscapeAttempts
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var grandTotal int64
	for _, sec := range totals {
		grandTotal += sec
	}

	from, to := timecalc.WeekRange(now)
	weekEvents := 0
	for _, e := range logs {
		if !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			weekEvents++
		}
	}

	fmt.Printf("Week %s\n", timecalc.ISOWeekLabel(now))
	fmt.Println("--------------------------------")
	for _, c := range order {
		fmt.Printf("%-20s%s\n", c, timecalc.FormatDuration(totals[c]))
	}
	fmt.Println("--------------------------------")
	fmt.Printf("%-20s%s\n", "Total focus", timecalc.FormatDuration(grandTotal))
	fmt.Printf("%-20s%d\n", "Escape attempts", escapes)
	fmt.Printf("%-20s%d\n", "Ledger events", weekEvents)
	fmt.Println()
}

func formatAnalysis(a advisor.PatternAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d/100  Primary pattern: %s\n", a.OverallScore, a.PrimaryPattern)
	for _, p := range a.EscapePatterns {
		fmt.Fprintf(&b, "Escape: %s (%s, around %s)\n", p.Pattern, p.Frequency, p.TriggerTime)
	}
	if len(a.ProductivityInsights.PeakHours) > 0 {
		fmt.Fprintf(&b, "Peak hours: %s\n", strings.Join(a.ProductivityInsights.PeakHours, ", "))
	}
	for _, e := range a.ExcusePatterns {
		fmt.Fprintf(&b, "Excuse: %s\n", e)
	}
	for _, f := range a.SelfDeceptionFlags {
		fmt.Fprintf(&b, "Self-deception: %s\n", f)
	}
	for _, s := range a.Strengths {
		fmt.Fprintf(&b, "Strength: %s\n", s)
	}
	for _, r := range a.UrgentRecommendations {
		fmt.Fprintf(&b, "Do now: %s (%s)\n", r.Recommendation, r.Reason)
	}
	fmt.Fprintf(&b, "\n%s", a.HonestTruth)
	return b.String()
}
