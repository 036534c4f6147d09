package screens

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novels/pkg/app/components"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/reading"
)

type SearchScreen struct {
	lib       Library
	input     textinput.Model
	results   *components.NovelList
	searching bool
	syncing   string
	width     int
	height    int
	err       error
}

func NewSearchScreen(lib Library) *SearchScreen {
	ti := textinput.New()
	ti.Placeholder = "Search novels..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	results := components.NewNovelList()
	results.Empty = "No results found"

	return &SearchScreen{
		lib:     lib,
		input:   ti,
		results: results,
	}
}

func (s *SearchScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *SearchScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.results.Width = width - 2
	s.results.Height = height - 14
}

// Typing reports whether keys go to the query input.
func (s *SearchScreen) Typing() bool {
	return s.input.Focused()
}

func (s *SearchScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.searching || s.syncing != "" {
			return s, nil
		}

		switch msg.String() {
		case "enter":
			if s.input.Focused() {
				if query := s.input.Value(); query != "" {
					s.searching = true
					s.err = nil
					return s, s.performSearch(query)
				}
			} else if selected := s.results.Selected(); selected != nil {
				s.syncing = selected.Novel.Title
				return s, s.syncNovel(selected.Novel.ID)
			}

		case "esc":
			if s.input.Focused() {
				s.input.Blur()
			} else {
				s.input.Focus()
				cmd = textinput.Blink
			}
			return s, cmd

		case "up", "k":
			if !s.input.Focused() {
				s.results.Prev()
			}

		case "down", "j":
			if !s.input.Focused() {
				s.results.Next()
			}
		}

	case searchResultMsg:
		s.searching = false
		s.err = msg.err
		items := make([]components.NovelListItem, 0, len(msg.results))
		for _, n := range msg.results {
			items = append(items, components.NovelListItem{Novel: n})
		}
		s.results.SetItems(items)
		if len(items) > 0 {
			s.input.Blur()
		}

	case novelSyncedMsg:
		s.syncing = ""
		if msg.err != nil {
			s.err = msg.err
			return s, nil
		}
		return s, navigateTo(reading.NovelPath(msg.novelID))
	}

	if s.input.Focused() {
		s.input, cmd = s.input.Update(msg)
	}
	return s, cmd
}

func (s *SearchScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("🔍 Search Novels")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n\n"
	}

	var resultsView string
	switch {
	case s.syncing != "":
		resultsView = styles.StatusSyncing.Render(fmt.Sprintf("Syncing %s...", s.syncing))
	case s.searching:
		resultsView = styles.StatusSyncing.Render("Searching...")
	case len(s.results.Items) > 0:
		resultsView = styles.SubtitleStyle.Render(fmt.Sprintf("Found %d results:", len(s.results.Items))) +
			"\n\n" + s.results.View()
	case s.input.Value() != "":
		resultsView = styles.MutedStyle.Render("No results found")
	}

	help := styles.HelpStyle.Render(
		"enter: search/sync • esc: switch focus • ↑/k ↓/j: navigate • tab: library • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s\n\n%s%s\n\n%s", header, inputView, errorMsg, resultsView, help)
}

type searchResultMsg struct {
	results []*data.Novel
	err     error
}

type novelSyncedMsg struct {
	novelID string
	err     error
}

func (s *SearchScreen) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := s.lib.Search(context.Background(), query)
		return searchResultMsg{results: results, err: err}
	}
}

// syncNovel copies the novel into the library; per-chapter failures still
// leave a readable partial novel, so only a returned error stops navigation.
func (s *SearchScreen) syncNovel(novelID string) tea.Cmd {
	return func() tea.Msg {
		result, err := s.lib.Sync(context.Background(), novelID)
		if err != nil {
			return novelSyncedMsg{err: err}
		}
		id := novelID
		if result != nil && result.Novel != nil {
			id = result.Novel.ID
		}
		return novelSyncedMsg{novelID: id}
	}
}
