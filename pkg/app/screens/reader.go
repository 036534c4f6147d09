package screens

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novels/pkg/app/components"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/kerbaras/novels/pkg/utils"
)

const intentBuffer = 32

// ReaderScreen shows one chapter. It owns exactly one reading session for
// its whole life; opening another chapter means a new ReaderScreen.
type ReaderScreen struct {
	lib       Library
	session   *reading.Session
	novelID   string
	chapterID string
	auth      reading.AuthState

	intents   chan reading.Intent
	done      chan struct{}
	closeOnce sync.Once

	viewport     viewport.Model
	contents     *components.ChapterList
	showContents bool
	view         reading.ViewState
	ready        bool
	notice       string
	err          error
	width        int
	height       int
}

func NewReaderScreen(lib Library, novelID, chapterID string, auth reading.AuthState, opts ...reading.Option) *ReaderScreen {
	s := &ReaderScreen{
		lib:       lib,
		novelID:   novelID,
		chapterID: chapterID,
		auth:      auth,
		intents:   make(chan reading.Intent, intentBuffer),
		done:      make(chan struct{}),
		viewport:  viewport.New(80, 20),
		contents:  components.NewChapterList(12),
	}
	s.session = lib.NewSession(reading.SinkFunc(s.emit), opts...)
	return s
}

// emit runs on whatever goroutine the session reports from, including the
// auto-advance timer, so it only hands the intent over.
func (s *ReaderScreen) emit(i reading.Intent) {
	select {
	case s.intents <- i:
	case <-s.done:
	default:
	}
}

func (s *ReaderScreen) Init() tea.Cmd {
	return tea.Batch(s.start(), s.listen)
}

func (s *ReaderScreen) Session() *reading.Session {
	return s.session
}

// NovelID is the novel being read, as far as it is known.
func (s *ReaderScreen) NovelID() string {
	if s.ready && s.view.NovelID != "" {
		return s.view.NovelID
	}
	return s.novelID
}

func (s *ReaderScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.Width = max(width-2, 20)
	s.viewport.Height = max(height-6, 5)
	if rows := height - 10; rows > 3 {
		s.contents.Window = rows
	}
	if s.ready {
		s.viewport.SetContent(s.renderChapter())
	}
}

// SetAuth restarts the visit under a new authentication state.
func (s *ReaderScreen) SetAuth(auth reading.AuthState) tea.Cmd {
	s.auth = auth
	s.ready = false
	s.notice = ""
	s.err = nil
	return s.start()
}

// Close disposes the session. Nothing the session does afterwards reaches
// the screen.
func (s *ReaderScreen) Close() {
	s.closeOnce.Do(func() {
		s.session.Dispose()
		close(s.done)
	})
}

type chapterLoadedMsg struct {
	session string
	err     error
}

type intentMsg struct {
	session string
	intent  reading.Intent
}

func (s *ReaderScreen) start() tea.Cmd {
	session, chapterID, auth := s.session, s.chapterID, s.auth
	return func() tea.Msg {
		err := session.Start(context.Background(), chapterID, auth)
		return chapterLoadedMsg{session: session.ID(), err: err}
	}
}

func (s *ReaderScreen) listen() tea.Msg {
	select {
	case i := <-s.intents:
		return intentMsg{session: s.session.ID(), intent: i}
	case <-s.done:
		return nil
	}
}

func (s *ReaderScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chapterLoadedMsg:
		if msg.session != s.session.ID() {
			return s, nil
		}
		s.err = msg.err
		s.refresh()
		return s, nil

	case intentMsg:
		if msg.session != s.session.ID() {
			return s, nil
		}
		return s, tea.Batch(s.listen, s.handleIntent(msg.intent))

	case tea.KeyMsg:
		if s.showContents {
			return s, s.updateContents(msg)
		}
		switch msg.String() {
		case "right", "n":
			s.session.GoToNext()
			return s, nil
		case "left", "p":
			s.session.GoToPrev()
			return s, nil
		case "l", "esc", "backspace":
			s.session.GoToList()
			return s, nil
		case "t":
			if s.ready {
				s.showContents = true
			}
			return s, nil
		case "R":
			if s.session.State() == reading.StateError {
				s.err = nil
				return s, s.start()
			}
			return s, nil
		}
		return s, s.scroll(msg)

	case tea.MouseMsg:
		return s, s.scroll(msg)
	}
	return s, nil
}

// scroll feeds the viewport and reports a finished chapter once the reader
// has scrolled to its end.
func (s *ReaderScreen) scroll(msg tea.Msg) tea.Cmd {
	if !s.ready {
		return nil
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	if s.viewport.AtBottom() {
		s.session.OnBingeComplete()
	}
	return cmd
}

func (s *ReaderScreen) updateContents(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		s.contents.Prev()
	case "down", "j":
		s.contents.Next()
	case "enter":
		if selected := s.contents.Selected(); selected != nil {
			s.showContents = false
			s.session.SelectChapter(selected.ID)
		}
	case "esc", "t":
		s.showContents = false
	}
	return nil
}

func (s *ReaderScreen) handleIntent(i reading.Intent) tea.Cmd {
	switch i.Kind {
	case reading.IntentNavigate:
		return navigateTo(i.Path)
	case reading.IntentNotify:
		s.notice = i.Message
	}
	return nil
}

func (s *ReaderScreen) refresh() {
	view, ok := s.session.View()
	s.ready = ok
	if !ok {
		return
	}
	s.view = view

	items := make([]components.ChapterListItem, 0, len(view.Contents))
	for i, e := range view.Contents {
		items = append(items, components.ChapterListItem{
			ID:      e.ChapterID,
			Title:   e.Title,
			Current: i == view.Position,
		})
	}
	s.contents.SetItems(items)
	s.viewport.SetContent(s.renderChapter())
	s.viewport.GotoTop()
}

func (s *ReaderScreen) renderChapter() string {
	width := max(s.viewport.Width-2, 20)
	var b strings.Builder

	b.WriteString(styles.ChapterTitleStyle.Render(s.view.Chapter.Title))
	b.WriteString("\n\n")
	for _, url := range s.view.Images {
		b.WriteString(styles.IllustrationStyle.Render("[illustration] " + url))
		b.WriteString("\n")
	}
	if s.view.Audio != "" {
		b.WriteString(styles.IllustrationStyle.Render("♪ " + s.view.Audio))
		b.WriteString("\n")
	}
	if len(s.view.Images) > 0 || s.view.Audio != "" {
		b.WriteString("\n")
	}

	paragraphs := utils.Paragraphs(s.view.Chapter.Content)
	if len(paragraphs) == 0 {
		b.WriteString(styles.MutedStyle.Render("This chapter has no text."))
	}
	for _, p := range paragraphs {
		b.WriteString(styles.ParagraphStyle.Width(width).Render(p))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render("~ end of chapter ~"))
	return b.String()
}

func (s *ReaderScreen) View() string {
	var body string
	switch {
	case s.ready && s.showContents:
		body = styles.SubtitleStyle.Render("Contents") + "\n\n" + s.contents.View()
	case s.ready:
		body = s.viewport.View()
	case s.session.State() == reading.StateError:
		msg := s.notice
		if msg == "" && s.err != nil {
			msg = s.err.Error()
		}
		body = styles.StatusError.Render(msg) + "\n\n" + styles.MutedStyle.Render("R: retry • l: back")
	case s.session.State() == reading.StateDenied:
		body = styles.StatusWarning.Render(s.session.Verdict().String())
	default:
		body = styles.MutedStyle.Render("Loading...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, s.header(), body, s.footer())
}

func (s *ReaderScreen) header() string {
	if !s.ready {
		return styles.TitleStyle.Render("📖 Reader")
	}
	title := s.view.Novel.Title
	if title == "" {
		title = s.view.NovelID
	}
	pos := ""
	if s.view.Position >= 0 {
		pos = fmt.Sprintf(" (%d/%d)", s.view.Position+1, len(s.view.Contents))
	}
	return styles.TitleStyle.Render(fmt.Sprintf("📖 %s%s", title, pos))
}

func (s *ReaderScreen) footer() string {
	var lines []string
	if s.notice != "" {
		lines = append(lines, styles.NoticeStyle.Render(s.notice))
	}
	help := "←/p: prev • →/n: next • t: contents • l/esc: chapters • q: quit"
	if s.showContents {
		help = "↑/k ↓/j: navigate • enter: open • esc: close"
	}
	if s.ready && !s.showContents {
		help = fmt.Sprintf("%3.0f%% • %s", s.viewport.ScrollPercent()*100, help)
	}
	lines = append(lines, styles.HelpStyle.Render(help))
	return strings.Join(lines, "\n")
}
