package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const chatUserID = "chat"

// Style definitions.
var (
	chatTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	botBubbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	awaitingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Italic(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	chatHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type chatLine struct {
	fromUser bool
	text     string
}

type chatModel struct {
	transcript []chatLine
	input      string
	awaiting   bool
	width      int
	height     int
}

func newChatModel() chatModel {
	return chatModel{}
}

func (m chatModel) Init() tea.Cmd {
	return nil
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input)
			m.input = ""
			if text == "" {
				return m, nil
			}
			m.transcript = append(m.transcript, chatLine{fromUser: true, text: text})
			reply := Engine.Answer(chatUserID, text)
			m.transcript = append(m.transcript, chatLine{fromUser: false, text: reply.Text})
			m.awaiting = reply.AwaitingSelection
			return m, nil
		case "backspace":
			if len(m.input) > 0 {
				runes := []rune(m.input)
				m.input = string(runes[:len(runes)-1])
			}
			return m, nil
		default:
			switch msg.Type {
			case tea.KeyRunes:
				m.input += string(msg.Runes)
			case tea.KeySpace:
				m.input += " "
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m chatModel) View() string {
	var b strings.Builder

	b.WriteString(chatTitleStyle.Render("kbdesk chat"))
	b.WriteString("\n\n")

	visible := m.transcript
	if limit := m.height - 6; limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}
	for _, line := range visible {
		if line.fromUser {
			b.WriteString(userBubbleStyle.Render("you: " + line.text))
		} else {
			b.WriteString(botBubbleStyle.Render("bot: " + line.text))
		}
		b.WriteString("\n")
	}

	if m.awaiting {
		b.WriteString(awaitingStyle.Render("awaiting your selection, reply with a number"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(m.input)
	b.WriteString("\n")
	b.WriteString(chatHelpStyle.Render("enter: send • esc: quit"))
	return b.String()
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with the knowledge base",
	Long: `Launch an interactive terminal chat session.

Type a question and press Enter. When the bot offers numbered options,
reply with a number to pick one. Quit with Esc or Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		p := tea.NewProgram(newChatModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
