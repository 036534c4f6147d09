package styles

import "github.com/charmbracelet/lipgloss"

var (
	Primary    = lipgloss.Color("#7FDBCA")
	Secondary  = lipgloss.Color("#C792EA")
	Success    = lipgloss.Color("#C3E88D")
	Warning    = lipgloss.Color("#FFCB6B")
	Error      = lipgloss.Color("#F07178")
	Info       = lipgloss.Color("#82AAFF")
	Muted      = lipgloss.Color("#546E7A")
	Paper      = lipgloss.Color("#D6DEEB")
	Background = lipgloss.Color("#263238")

	RoundedBorder = lipgloss.RoundedBorder()
	ThickBorder   = lipgloss.ThickBorder()
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	TextStyle = lipgloss.NewStyle().
			Foreground(Paper)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 2).
			MarginBottom(1)

	ActiveCardStyle = lipgloss.NewStyle().
			Border(ThickBorder).
			BorderForeground(Primary).
			Padding(0, 2).
			MarginBottom(1)

	StatusSyncing = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	StatusCompleted = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Background(lipgloss.Color("#37474F")).
			Padding(0, 2).
			Bold(true)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Padding(0, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			MarginTop(1)

	InputStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(RoundedBorder).
				BorderForeground(Primary).
				Padding(0, 1)

	// Reader
	ChapterTitleStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Bold(true).
				Underline(true)

	ParagraphStyle = lipgloss.NewStyle().
			Foreground(Paper).
			MarginBottom(1)

	IllustrationStyle = lipgloss.NewStyle().
				Foreground(Secondary).
				Italic(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(Background).
			Background(Warning).
			Padding(0, 1)

	GateStyle = lipgloss.NewStyle().
			Border(ThickBorder).
			BorderForeground(Warning).
			Padding(1, 3)
)

// StatusStyle picks the style for a novel or sync status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "syncing", "saved":
		return StatusSyncing
	case "completed", "free":
		return StatusCompleted
	case "partial", "paid":
		return StatusWarning
	case "error", "locked":
		return StatusError
	default:
		return MutedStyle
	}
}
