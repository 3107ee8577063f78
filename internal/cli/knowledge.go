package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbdesk/kbdesk/pkg/models"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the question/answer knowledge base",
	Long: `Add, list, and search knowledge base entries.

Entries are question/answer pairs stored in knowledge/base.yaml. Tags
group related entries and drive the clarification dialog; button and menu
entries additionally carry a button label in their metadata.`,
}

var knowledgeAddCmd = &cobra.Command{
	Use:   "add <question> <answer>",
	Short: "Add a knowledge entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		tags, _ := cmd.Flags().GetStringSlice("tags")
		sourceStr, _ := cmd.Flags().GetString("source")
		label, _ := cmd.Flags().GetString("button-label")

		source := models.SourceKind(sourceStr)
		switch source {
		case models.SourceManual, models.SourceButton, models.SourceMenu:
		default:
			return fmt.Errorf("invalid source %q: must be one of manual, button, menu", sourceStr)
		}

		var metadata map[string]string
		if label != "" {
			metadata = map[string]string{models.MetadataButtonLabel: label}
		}

		id, err := Engine.AddKnowledgeEntry(args[0], args[1], tags, source, metadata)
		if err != nil {
			return fmt.Errorf("adding knowledge entry: %w", err)
		}

		fmt.Printf("Added %s: %s\n", id, args[0])
		return nil
	},
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all knowledge entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		entries := Engine.Entries()
		if len(entries) == 0 {
			fmt.Println("The knowledge base is empty.")
			return nil
		}

		fmt.Printf("%d entr%s:\n\n", len(entries), plural(len(entries), "y", "ies"))
		printEntries(entries)
		return nil
	},
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search entries by question text or tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		entries := Engine.Search(args[0])
		if len(entries) == 0 {
			fmt.Printf("No entries found for %q.\n", args[0])
			return nil
		}

		fmt.Printf("%d result%s for %q:\n\n", len(entries), plural(len(entries), "", "s"), args[0])
		printEntries(entries)
		return nil
	},
}

func printEntries(entries []models.KnowledgeEntry) {
	for _, entry := range entries {
		fmt.Printf("%s  [%s]  %s\n", entry.ID, entry.Source, entry.Question)
		if len(entry.Tags) > 0 {
			fmt.Printf("    tags: %s\n", strings.Join(entry.Tags, ", "))
		}
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

func init() {
	knowledgeAddCmd.Flags().StringSlice("tags", nil, "topic tags for clarification grouping")
	knowledgeAddCmd.Flags().String("source", "manual", "entry source kind (manual, button, menu)")
	knowledgeAddCmd.Flags().String("button-label", "", "button label for button/menu entries")

	knowledgeCmd.AddCommand(knowledgeAddCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	rootCmd.AddCommand(knowledgeCmd)
}
