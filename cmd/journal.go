package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
	"github.com/mirrorcli/mirror/internal/timecalc"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Free-text neural dumps",
}

var journalWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a journal entry from stdin",
	Long: `write reads the entry from stdin until EOF (Ctrl-D). Writing metrics
are captured alongside the text, and a one-line reflection is attached when
the advisory service is reachable.`,
	Args: cobra.NoArgs,
	RunE: runJournalWrite,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDelete,
}

func init() {
	journalCmd.AddCommand(journalWriteCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalDeleteCmd)
}

func runJournalWrite(cmd *cobra.Command, args []string) error {
	start := time.Now()
	fmt.Fprintln(os.Stderr, "Dump everything. Ctrl-D when done.")

	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return fmt.Errorf("reading entry: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		fmt.Fprintln(os.Stderr, "Nothing written, nothing saved.")
		os.Exit(1)
	}

	end := time.Now()
	words := timecalc.CountWords(content)
	entry := model.JournalEntry{
		ID:        uuid.NewString(),
		Timestamp: end,
		StartTime: start,
		EndTime:   &end,
		Content:   content,
		Metadata: &model.JournalMetadata{
			WordCount:              words,
			CharCount:              len(content),
			WritingDurationSeconds: int64(end.Sub(start).Seconds()),
			Keystrokes:             len(content),
			WordsPerMinute:         timecalc.WordsPerMinute(words, end.Sub(start)),
			TimeOfDay:              timecalc.TimeOfDayBucket(end),
			HourOfDay:              end.Hour(),
			DayOfWeek:              end.Weekday().String(),
		},
	}

	reg, st := openRegistry()
	defer st.Close()
	reg.SaveJournal(entry, end)
	fmt.Printf("Saved entry %s (%d words).\n", shortID(entry.ID), words)

	reflection := newAdvisor(cmd.Context()).ReflectOnJournal(cmd.Context(), content)
	reg.AttachReflection(entry.ID, reflection)
	fmt.Println(reflection)
	return nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	if len(reg.Journals) == 0 {
		fmt.Println("No journal entries.")
		return nil
	}
	for _, j := range reg.Journals {
		words := 0
		if j.Metadata != nil {
			words = j.Metadata.WordCount
		}
		fmt.Printf("%s  %s  %d words\n",
			shortID(j.ID), j.Timestamp.Format("2006-01-02 15:04"), words)
		fmt.Printf("  %s\n", firstLine(j.Content))
		if j.Reflection != "" {
			fmt.Printf("  » %s\n", j.Reflection)
		}
	}
	return nil
}

func runJournalDelete(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	id := args[0]
	for _, j := range reg.Journals {
		if strings.HasPrefix(j.ID, id) {
			id = j.ID
			break
		}
	}
	if err := reg.DeleteJournal(id); err != nil {
		return err
	}
	fmt.Println("Entry deleted.")
	return nil
}

// firstLine truncates content to a single display line.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 72 {
		s = s[:72] + "…"
	}
	return s
}
