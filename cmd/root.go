package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirrorcli/mirror/internal/advisor"
	"github.com/mirrorcli/mirror/internal/config"
	"github.com/mirrorcli/mirror/internal/registry"
	"github.com/mirrorcli/mirror/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Mirror – a radically honest accountability ledger",
	Long: `mirror tracks your obligations, your focus time, and every attempt
to escape them. All data is stored locally in ~/.mirror/.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openRegistry opens the default store and loads all state. Errors here are
// unrecoverable for every command, so it exits directly.
func openRegistry() (*registry.Registry, *store.Store) {
	st, err := store.OpenDefault()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	reg, err := registry.Load(st)
	if err != nil {
		st.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return reg, st
}

// newAdvisor builds the advisory client from the user config. A missing or
// broken config degrades to defaults; the client itself degrades to canned
// fallbacks when the service is unreachable.
func newAdvisor(ctx context.Context) *advisor.Client {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return advisor.NewClient(ctx, advisor.Options{
		BaseURL:      cfg.Advisor.BaseURL,
		Model:        cfg.Advisor.Model,
		APIKey:       cfg.Advisor.APIKey(),
		TokenURL:     cfg.Advisor.OAuth.TokenURL,
		ClientID:     cfg.Advisor.OAuth.ClientID,
		ClientSecret: cfg.Advisor.OAuth.ClientSecret,
	})
}

// resolveTaskID expands a unique ID prefix to the full task ID. Unmatched
// input passes through so the registry reports the not-found error.
func resolveTaskID(reg *registry.Registry, arg string) string {
	var match string
	for _, t := range reg.Tasks {
		if t.ID == arg {
			return arg
		}
		if strings.HasPrefix(t.ID, arg) {
			if match != "" {
				fmt.Fprintf(os.Stderr, "Ambiguous task ID %q\n", arg)
				os.Exit(1)
			}
			match = t.ID
		}
	}
	if match == "" {
		return arg
	}
	return match
}

func init() {
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(reflectCmd)
	rootCmd.AddCommand(shieldCmd)
	rootCmd.AddCommand(pomodoroCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(watchCmd)
}
