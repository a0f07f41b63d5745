package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/registry"
)

// quizFailureDebt is the integrity cost of failing a completion quiz.
const quizFailureDebt = 5

var (
	completeEvidence string
	completeQuiz     bool
)

var completeCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Close an obligation with proof of work",
	Long: `complete requires evidence. By default the evidence text is audited
for specificity; --quiz generates comprehension questions about the work
instead. A failed audit or quiz keeps the task open and accrues debt.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func init() {
	completeCmd.Flags().StringVar(&completeEvidence, "evidence", "", "What you actually did, specifically")
	completeCmd.Flags().BoolVar(&completeQuiz, "quiz", false, "Prove completion by answering questions instead")
}

func runComplete(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	id := resolveTaskID(reg, args[0])
	task, err := reg.Task(id)
	if err != nil {
		return err
	}
	if task.Status == model.StatusCompleted {
		return registry.ErrCompleted
	}

	if completeQuiz {
		if !runQuizGate(cmd, reg, task) {
			os.Exit(1)
		}
	} else {
		if completeEvidence == "" {
			return fmt.Errorf("evidence required: pass --evidence or --quiz")
		}
		if !runEvidenceGate(cmd, reg, task) {
			os.Exit(1)
		}
	}

	successor, err := reg.CompleteTask(id, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Obligation discharged: %q.\n", task.Title)
	if successor != nil {
		fmt.Printf("Recurring: next instance scheduled for %s (%s).\n",
			successor.ScheduledAt.Format("2006-01-02 15:04"), shortID(successor.ID))
	}
	return nil
}

// runEvidenceGate audits the evidence text. It reports whether the task may
// be closed.
func runEvidenceGate(cmd *cobra.Command, reg *registry.Registry, task model.Task) bool {
	v := newAdvisor(cmd.Context()).VerifyCompletion(cmd.Context(), task, completeEvidence)
	if !v.IsValid {
		now := time.Now()
		reg.AppendLog(model.LogQuizFailure,
			fmt.Sprintf("Completion evidence rejected for %q (score %d)", task.Title, v.Score),
			map[string]any{"score": v.Score, "evidence": completeEvidence}, now)
		reg.AccrueDebt(quizFailureDebt, "rejected evidence for "+task.Title, now)
		fmt.Fprintln(os.Stderr, v.Feedback)
		fmt.Fprintln(os.Stderr, "The task stays open.")
		return false
	}
	fmt.Println(v.Feedback)
	return true
}

// runQuizGate generates comprehension questions and grades the answers.
func runQuizGate(cmd *cobra.Command, reg *registry.Registry, task model.Task) bool {
	client := newAdvisor(cmd.Context())
	questions := client.GenerateQuiz(cmd.Context(), task.Title)

	in := bufio.NewReader(os.Stdin)
	answers := make([]string, 0, len(questions))
	for i, q := range questions {
		fmt.Printf("%d/%d: %s\n", i+1, len(questions), q)
		answers = append(answers, promptLine(in, ">"))
	}

	grade := client.GradeQuiz(cmd.Context(), questions, answers)
	now := time.Now()
	if !grade.Passed {
		reg.AppendLog(model.LogQuizFailure,
			fmt.Sprintf("Completion quiz failed for %q", task.Title),
			map[string]any{"answers": strings.Join(answers, " | ")}, now)
		reg.AccrueDebt(quizFailureDebt, "failed quiz for "+task.Title, now)
		fmt.Fprintln(os.Stderr, grade.Feedback)
		fmt.Fprintln(os.Stderr, "The task stays open.")
		return false
	}
	reg.AppendLog(model.LogQuizSuccess,
		fmt.Sprintf("Completion quiz passed for %q", task.Title), nil, now)
	fmt.Println(grade.Feedback)
	return true
}
