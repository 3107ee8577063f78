package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the knowledge base a question",
	Long: `Ask a plain-language question and print the best answer.

If the match is ambiguous a numbered list of options is printed and your
next line of input picks one. Use --user to keep clarification state
separate between concurrent conversations.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		userID, _ := cmd.Flags().GetString("user")
		question := strings.Join(args, " ")

		reply := Engine.Answer(userID, question)
		fmt.Println(reply.Text)

		if reply.AwaitingSelection {
			fmt.Print("> ")
			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				followUp := Engine.Answer(userID, scanner.Text())
				fmt.Println(followUp.Text)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().String("user", "cli", "conversation identifier for clarification state")
	rootCmd.AddCommand(askCmd)
}
