package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/model"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Set up your accountability profile",
	Args:  cobra.NoArgs,
	RunE:  runOnboard,
}

func runOnboard(cmd *cobra.Command, args []string) error {
	reg, st := openRegistry()
	defer st.Close()

	if reg.Profile != nil && reg.Profile.HasCompletedOnboarding {
		fmt.Fprintln(os.Stderr, "Profile already exists. The contract stands.")
		os.Exit(1)
	}

	now := time.Now()
	in := bufio.NewReader(os.Stdin)

	profile := model.UserProfile{ID: model.ProfileID}
	profile.Situation = promptLine(in, "What is your current situation?")
	profile.Distractions = promptLine(in, "What do you reach for when you avoid work?")
	profile.Routine = promptLine(in, "Describe your typical day.")
	profile.DelayReason = promptLine(in, "Why haven't you done it already?")

	if d := promptLine(in, "Hard deadline (YYYY-MM-DD, empty for none)?"); d != "" {
		t, err := time.ParseInLocation("2006-01-02", d, time.Local)
		if err != nil {
			return fmt.Errorf("parsing deadline %q: %w", d, err)
		}
		profile.DeadlineDate = &t
	}

	fmt.Println("Sprint goals, one per line. Empty line to finish.")
	for {
		goal := promptLine(in, ">")
		if goal == "" {
			break
		}
		profile.SprintGoals = append(profile.SprintGoals, goal)
	}

	profile.HasCompletedOnboarding = true
	reg.SaveProfile(profile)
	reg.AppendLog(model.LogContractSigned, "Accountability contract signed.", nil, now)

	// The intake analysis never blocks onboarding; on failure it returns a
	// canned acknowledgement.
	assessment := newAdvisor(cmd.Context()).IntakeProfile(cmd.Context(), profile)
	reg.AppendLog(model.LogPsychProfile, assessment, nil, time.Now())

	fmt.Println()
	fmt.Println(assessment)
	fmt.Println()
	fmt.Println("Profile saved. Add your first obligation with: mirror add <title>")
	return nil
}

// promptLine prints a prompt and reads one trimmed line from in.
func promptLine(in *bufio.Reader, prompt string) string {
	fmt.Printf("%s ", prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
