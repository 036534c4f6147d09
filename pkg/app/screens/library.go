package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novels/pkg/app/components"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/reading"
)

type LibraryScreen struct {
	lib       Library
	viewer    *reading.Viewer
	novelList *components.NovelList
	status    string
	width     int
	height    int
	err       error
}

func NewLibraryScreen(lib Library) *LibraryScreen {
	return &LibraryScreen{
		lib:       lib,
		novelList: components.NewNovelList(),
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	return s.loadLibrary
}

func (s *LibraryScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.novelList.Width = width - 4
	s.novelList.Height = height - 10
}

func (s *LibraryScreen) SetViewer(v *reading.Viewer) {
	s.viewer = v
}

func (s *LibraryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.novelList.Prev()
		case "down", "j":
			s.novelList.Next()
		case "r":
			return s, s.loadLibrary
		case "d":
			if selected := s.novelList.Selected(); selected != nil {
				return s, s.deleteNovel(selected.Novel.ID)
			}
		case "e":
			if selected := s.novelList.Selected(); selected != nil {
				s.status = fmt.Sprintf("Exporting %s...", selected.Novel.Title)
				return s, exportNovel(s.lib, selected.Novel.ID, s.viewer)
			}
		case "enter":
			if selected := s.novelList.Selected(); selected != nil {
				return s, navigateTo(reading.NovelPath(selected.Novel.ID))
			}
		}

	case libraryLoadedMsg:
		s.novelList.SetItems(msg.items)
		s.err = msg.err

	case epubExportedMsg:
		s.err = msg.err
		s.status = msg.summary()

	case novelDeletedMsg:
		s.err = msg.err
		return s, s.loadLibrary
	}

	return s, nil
}

func (s *LibraryScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("📚 Novel Library")

	var notice string
	if s.err != nil {
		notice = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n\n"
	} else if s.status != "" {
		notice = styles.StatusSyncing.Render(s.status) + "\n\n"
	}

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • enter: chapters • e: export EPUB • d: delete • r: refresh • tab: search • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s", header, notice, s.novelList.View(), help)
}

type libraryLoadedMsg struct {
	items []components.NovelListItem
	err   error
}

type novelDeletedMsg struct {
	err error
}

func (s *LibraryScreen) loadLibrary() tea.Msg {
	novels, err := s.lib.ListLibrary()
	if err != nil {
		return libraryLoadedMsg{err: err}
	}

	items := make([]components.NovelListItem, 0, len(novels))
	for _, novel := range novels {
		item := components.NovelListItem{Novel: novel}
		if _, total, free, err := s.lib.NovelSummary(novel.ID); err == nil {
			item.ChapterCount, item.FreeCount = total, free
		}
		items = append(items, item)
	}
	return libraryLoadedMsg{items: items}
}

func (s *LibraryScreen) deleteNovel(novelID string) tea.Cmd {
	return func() tea.Msg {
		return novelDeletedMsg{err: s.lib.DeleteNovel(novelID)}
	}
}

// epubExportedMsg is shared by the library and details screens.
type epubExportedMsg struct {
	path     string
	included int
	skipped  int
	err      error
}

func (m epubExportedMsg) summary() string {
	if m.err != nil {
		return ""
	}
	return fmt.Sprintf("Exported %d chapters to %s (%d skipped)", m.included, m.path, m.skipped)
}

func exportNovel(lib Library, novelID string, viewer *reading.Viewer) tea.Cmd {
	return func() tea.Msg {
		result, err := lib.Export(context.Background(), novelID, viewer)
		if err != nil {
			return epubExportedMsg{err: err}
		}
		return epubExportedMsg{path: result.Path, included: result.Included, skipped: result.Skipped}
	}
}
