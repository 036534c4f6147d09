package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novels/pkg/app/components"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/kerbaras/novels/pkg/services"
)

type DetailsScreen struct {
	lib      Library
	novelID  string
	viewer   *reading.Viewer
	novel    *data.Novel
	chapters []*data.Chapter
	list     *components.ChapterList
	tracker  *components.SyncTracker
	syncing  bool
	status   string
	width    int
	height   int
	err      error
}

func NewDetailsScreen(lib Library, novelID string, viewer *reading.Viewer) *DetailsScreen {
	return &DetailsScreen{
		lib:     lib,
		novelID: novelID,
		viewer:  viewer,
		list:    components.NewChapterList(10),
		tracker: components.NewSyncTracker(80),
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	return s.loadDetails
}

func (s *DetailsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.tracker = components.NewSyncTracker(width - 4)
	if rows := height - 20; rows > 5 {
		s.list.Window = rows
	}
}

// SetViewer re-labels the chapter list for a new reader identity.
func (s *DetailsScreen) SetViewer(v *reading.Viewer) {
	s.viewer = v
	s.relabel()
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.list.Prev()
		case "down", "j":
			s.list.Next()
		case "enter":
			if selected := s.list.Selected(); selected != nil {
				return s, navigateTo(reading.ChapterPath(s.novelID, selected.ID))
			}
		case "r":
			return s, s.loadDetails
		case "s":
			if !s.syncing {
				s.syncing = true
				s.tracker.Clear()
				return s, tea.Batch(s.syncNovel, s.listenForProgress)
			}
		case "e":
			s.status = "Exporting..."
			return s, exportNovel(s.lib, s.novelID, s.viewer)
		case "esc", "backspace":
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "library"}
			}
		}

	case detailsLoadedMsg:
		if msg.novelID != s.novelID {
			return s, nil
		}
		s.err = msg.err
		if msg.novel != nil {
			s.novel = msg.novel
		}
		s.chapters = msg.chapters
		s.relabel()

	case syncProgressMsg:
		s.tracker.Update(msg.progress)
		if msg.progress.ChapterID == "" && msg.progress.Status != services.StatusSyncing {
			return s, nil
		}
		return s, s.listenForProgress

	case novelSyncedMsg:
		s.syncing = false
		s.err = msg.err
		return s, s.loadDetails

	case epubExportedMsg:
		s.err = msg.err
		s.status = msg.summary()
	}

	return s, nil
}

func (s *DetailsScreen) relabel() {
	items := make([]components.ChapterListItem, 0, len(s.chapters))
	for _, ch := range s.chapters {
		if ch == nil {
			continue
		}
		label := "free"
		if !ch.IsFree {
			label = "paid"
			if !reading.Evaluate(ch, s.viewer).Allowed() {
				label = "locked"
			}
		}
		items = append(items, components.ChapterListItem{ID: ch.ID, Title: ch.Title, Label: label})
	}
	selected := s.list.SelectedIndex
	s.list.SetItems(items)
	if selected < len(items) {
		s.list.SelectedIndex = selected
	}
}

func (s *DetailsScreen) View() string {
	if s.width == 0 || s.novel == nil {
		if s.err != nil {
			return styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		}
		return "Loading..."
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("📖 %s", s.novel.Title))

	var notice string
	if s.err != nil {
		notice = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n\n"
	} else if s.status != "" {
		notice = styles.StatusSyncing.Render(s.status) + "\n\n"
	}

	chapters := styles.SubtitleStyle.Render(fmt.Sprintf("Chapters (%d total):", len(s.chapters))) +
		"\n\n" + s.list.View()

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • enter: read • s: sync • e: export EPUB • r: refresh • esc: back • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s\n%s\n%s",
		header, notice, s.renderNovelInfo(), chapters, s.tracker.View(), help)
}

func (s *DetailsScreen) renderNovelInfo() string {
	n := s.novel
	status := styles.StatusStyle(n.Status).Render(n.Status)
	if n.Status == "" {
		status = styles.MutedStyle.Render("ready")
	}

	var meta []string
	if n.AuthorName != "" {
		meta = append(meta, "by "+n.AuthorName)
	}
	if n.Genre != "" {
		meta = append(meta, n.Genre)
	}
	if len(n.SerialDays) > 0 {
		meta = append(meta, "updates "+strings.Join(n.SerialDays, ", "))
	}
	meta = append(meta, fmt.Sprintf("%d views", n.Views))

	info := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.TextStyle.Render(components.Truncate(n.Description, 200)),
		"",
		styles.MutedStyle.Render(strings.Join(meta, " • ")),
		status,
	)
	return styles.CardStyle.Width(max(s.width-4, 20)).Render(info)
}

type detailsLoadedMsg struct {
	novelID  string
	novel    *data.Novel
	chapters []*data.Chapter
	err      error
}

type syncProgressMsg struct {
	progress services.SyncProgress
}

func (s *DetailsScreen) loadDetails() tea.Msg {
	ctx := context.Background()
	novel, err := s.lib.GetNovel(ctx, s.novelID)
	if err != nil {
		return detailsLoadedMsg{novelID: s.novelID, err: err}
	}
	chapters, _, err := s.lib.Chapters(ctx, s.novelID)
	return detailsLoadedMsg{novelID: s.novelID, novel: novel, chapters: chapters, err: err}
}

func (s *DetailsScreen) syncNovel() tea.Msg {
	_, err := s.lib.Sync(context.Background(), s.novelID)
	return novelSyncedMsg{novelID: s.novelID, err: err}
}

func (s *DetailsScreen) listenForProgress() tea.Msg {
	p, ok := <-s.lib.SyncProgress()
	if !ok {
		return nil
	}
	return syncProgressMsg{progress: p}
}
