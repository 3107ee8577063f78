package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "kbdesk",
	Short: "kbdesk - FAQ matching engine for enterprise software questions",
	Long: `kbdesk answers plain-language questions about day-to-day enterprise
software tasks (invoices, payments, reports, users) from a local YAML
knowledge base.

It normalizes and fuzzily matches questions, recognizes button and menu
clicks, and falls back to a numbered-option clarification dialog when a
match is ambiguous.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kbdesk %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
