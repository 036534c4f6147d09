package screens

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/reading"
)

// GateScreen stands in for the login and subscription pages a denied
// chapter sends the reader to.
type GateScreen struct {
	kind reading.RouteKind
	back string
}

func NewGateScreen(kind reading.RouteKind, back string) *GateScreen {
	return &GateScreen{kind: kind, back: back}
}

func (s *GateScreen) Init() tea.Cmd {
	return nil
}

func (s *GateScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "enter", "backspace":
			return s, navigateTo(s.back)
		}
	}
	return s, nil
}

func (s *GateScreen) View() string {
	title := "Login required"
	body := reading.NoticeLoginRequired.Message() +
		"\n\nRestart with --user <name> (or set NOVELS_USER) to sign in."
	if s.kind == reading.RouteSubscribe {
		title = "Subscribers only"
		body = reading.NoticeSubscriptionRequired.Message() +
			"\n\nSubscribe on the platform, then sync your account again."
	}

	card := lipgloss.JoinVertical(lipgloss.Left,
		styles.StatusWarning.Render(title),
		"",
		styles.TextStyle.Render(body),
	)
	help := styles.HelpStyle.Render("esc: back • q: quit")
	return styles.GateStyle.Render(card) + "\n" + help
}
