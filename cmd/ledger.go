package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
)

var (
	ledgerLimit int
	ledgerKind  string
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the behavioural ledger, newest first",
	Args:  cobra.NoArgs,
	RunE:  runLedger,
}

var confessCmd = &cobra.Command{
	Use:   "confess <text>",
	Short: "Record a confession in the ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfess,
}

func init() {
	ledgerCmd.Flags().IntVar(&ledgerLimit, "limit", 20, "Maximum entries to show (0 for all)")
	ledgerCmd.Flags().StringVar(&ledgerKind, "kind", "", "Only entries of this kind")
	ledgerCmd.AddCommand(confessCmd)
}

func runLedger(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	shown := 0
	for _, e := range reg.Logs {
		if ledgerKind != "" && string(e.Kind) != ledgerKind {
			continue
		}
		fmt.Printf("%s  %-28s  %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Kind, e.Content)
		shown++
		if ledgerLimit > 0 && shown >= ledgerLimit {
			break
		}
	}
	if shown == 0 {
		fmt.Println("The ledger is empty. That is its own kind of evidence.")
	}
	return nil
}

func runConfess(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	reg.AppendLog(model.LogConfession, args[0], nil, time.Now())
	fmt.Println("Recorded. The ledger does not forget.")
	return nil
}
