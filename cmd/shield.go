package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var shieldCmd = &cobra.Command{
	Use:   "shield <what you are avoiding>",
	Short: "Admit an avoidance before it happens",
	Long: `shield records that you are about to do something instead of the
work. Naming the escape strips it of its disguise.`,
	Args: cobra.ExactArgs(1),
	RunE: runShield,
}

func runShield(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	reg.RecordShield(args[0], time.Now())
	fmt.Println("Noted. You said it yourself.")
	return nil
}
