package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/advisor"
	"github.com/mirrorcli/mirror/internal/model"
)

// maxPleaRounds bounds the interrogation; after this many PRESS verdicts the
// gatekeeper rules DENY.
const maxPleaRounds = 3

var pauseMinutes int

var pauseCmd = &cobra.Command{
	Use:   "pause <task-id>",
	Short: "Plead for a break from a running obligation",
	Long: `pause starts a gatekeeper interrogation over stdin. You state why you
need a break; the gatekeeper allows it, denies it, or presses further.
An allowed break runs for a bounded window, after which the alarm fires.`,
	Args: cobra.ExactArgs(1),
	RunE: runPause,
}

func init() {
	pauseCmd.Flags().IntVar(&pauseMinutes, "minutes", 2, "Requested break length: 1, 2 or 3")
}

func runPause(cmd *cobra.Command, args []string) error {
	if pauseMinutes < 1 || pauseMinutes > 3 {
		return fmt.Errorf("break length must be 1, 2 or 3 minutes")
	}

	reg, st := openRegistry()
	defer st.Close()

	id := resolveTaskID(reg, args[0])
	task, err := reg.Task(id)
	if err != nil {
		return err
	}
	if task.Status != model.StatusInProgress {
		fmt.Fprintf(os.Stderr, "%q is %s. Only running tasks can be paused.\n", task.Title, task.Status)
		os.Exit(1)
	}

	client := newAdvisor(cmd.Context())
	in := bufio.NewReader(os.Stdin)

	var history []string
	verdict := advisor.VerdictDeny
	for round := 0; round < maxPleaRounds; round++ {
		plea := promptLine(in, "Why do you deserve a break?")
		if plea == "" {
			fmt.Println("Silence is not a plea. Back to work.")
			os.Exit(1)
		}
		history = append(history, plea)

		result := client.Interrogate(cmd.Context(), task.Title, plea, history)
		fmt.Println(result.Response)
		history = append(history, result.Response)

		if result.Verdict != advisor.VerdictPress {
			verdict = result.Verdict
			break
		}
	}

	now := time.Now()
	transcript := strings.Join(history, "\n")
	reg.AppendLog(model.LogInterrogation,
		fmt.Sprintf("Pause plea for %q: %s", task.Title, verdict),
		map[string]any{"verdict": string(verdict)}, now)

	if verdict != advisor.VerdictAllow {
		fmt.Println("Break denied. The task stays live.")
		os.Exit(1)
	}

	window := time.Duration(pauseMinutes) * time.Minute
	if err := reg.PauseTask(id, window, transcript, now); err != nil {
		return err
	}
	fmt.Printf("Break granted: %d minute(s). The alarm is set.\n", pauseMinutes)
	return nil
}
