package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/timecalc"
)

// reflectionPrompt is one of the fixed daily prompts. The set never changes;
// answers are keyed per day and prompt.
type reflectionPrompt struct {
	ID       int
	Category string
	Question string
}

var reflectionPrompts = []reflectionPrompt{
	{1, "Metacognition", "What thinking patterns led you to avoid your most important task today?"},
	{2, "Self-Awareness", "What 'productive' activities did you use to escape real work? (news, research, planning)"},
	{3, "Self-Awareness", "When did you feel most focused today? What were you doing differently?"},
	{4, "Metacognition", "What task created the most resistance? Why do you think that is?"},
	{5, "Metacognition", "What excuses did your mind generate today? Were any of them truly valid?"},
	{6, "Goal Setting", "How did today's actions move you closer to (or further from) your goal?"},
	{7, "Growth", "If you could redo today, what one thing would you change?"},
	{8, "Self-Awareness", "What emotions came up when you faced a difficult task? How did you respond?"},
}

var reflectCmd = &cobra.Command{
	Use:   "reflect",
	Short: "Answer today's reflection prompts",
	Long: `reflect walks the fixed daily prompts one by one. Already answered
prompts show their answer and can be overwritten; an empty line keeps the
existing answer or skips the prompt.`,
	Args: cobra.NoArgs,
	RunE: runReflect,
}

func runReflect(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	now := time.Now()
	date := timecalc.DateString(now)

	existing := make(map[int]model.ReflectionResponse)
	for _, r := range reg.Reflections {
		if timecalc.SameDay(r.Timestamp, now) {
			existing[r.PromptID] = r
		}
	}

	in := bufio.NewReader(os.Stdin)
	for _, p := range reflectionPrompts {
		fmt.Printf("\n[%s] %s\n", p.Category, p.Question)
		if prev, ok := existing[p.ID]; ok {
			fmt.Printf("(answered: %s)\n", firstLine(prev.Response))
		}
		answer := promptLine(in, ">")
		if answer == "" {
			continue
		}
		resp := model.ReflectionResponse{
			ID:        fmt.Sprintf("%s-%d", date, p.ID),
			PromptID:  p.ID,
			Question:  p.Question,
			Category:  p.Category,
			Response:  answer,
			Timestamp: time.Now(),
			Date:      date,
		}
		reg.SaveReflection(resp, time.Now())
		existing[p.ID] = resp
	}

	if len(existing) == len(reflectionPrompts) {
		reg.AppendLog(model.LogReflectionCompleted,
			"All daily reflection prompts answered.", nil, time.Now())
		fmt.Println("\nSession complete. All prompts answered.")
	} else {
		fmt.Printf("\n%d of %d prompts answered today.\n", len(existing), len(reflectionPrompts))
	}
	return nil
}
