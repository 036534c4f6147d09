package screens

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/kerbaras/novels/pkg/services"
)

// Library is what the screens need from the library controller.
type Library interface {
	NewSession(sink reading.Sink, opts ...reading.Option) *reading.Session
	ResolveAuth(ctx context.Context) (reading.AuthState, error)
	ListLibrary() ([]*data.Novel, error)
	NovelSummary(id string) (*data.Novel, int, int, error)
	GetNovel(ctx context.Context, id string) (*data.Novel, error)
	Chapters(ctx context.Context, novelID string) ([]*data.Chapter, *reading.Sequence, error)
	Search(ctx context.Context, query string) ([]*data.Novel, error)
	Sync(ctx context.Context, novelID string) (*services.SyncResult, error)
	SyncProgress() <-chan services.SyncProgress
	DeleteNovel(id string) error
	Export(ctx context.Context, novelID string, viewer *reading.Viewer) (*integrations.ExportResult, error)
}

type screenType int

const (
	libraryView screenType = iota
	searchView
	detailsView
	readerView
	gateView
)

// SwitchScreenMsg moves between the tabbed screens.
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

// NavigateMsg asks the root to show whatever lives at Path.
type NavigateMsg struct {
	Path string
}

func navigateTo(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

type authResolvedMsg struct {
	state reading.AuthState
	err   error
}

type RootScreen struct {
	lib         Library
	auth        reading.AuthState
	sessionOpts []reading.Option
	logger      *slog.Logger

	currentView screenType
	library     *LibraryScreen
	search      *SearchScreen
	details     *DetailsScreen
	reader      *ReaderScreen
	gate        *GateScreen

	width  int
	height int
}

func NewRootScreen(lib Library, sessionOpts ...reading.Option) *RootScreen {
	return &RootScreen{
		lib:         lib,
		auth:        reading.AuthState{Loading: true},
		sessionOpts: sessionOpts,
		logger:      slog.Default().With("component", "tui"),
		currentView: libraryView,
		library:     NewLibraryScreen(lib),
		search:      NewSearchScreen(lib),
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return tea.Batch(r.library.Init(), r.resolveAuth)
}

func (r *RootScreen) resolveAuth() tea.Msg {
	state, err := r.lib.ResolveAuth(context.Background())
	return authResolvedMsg{state: state, err: err}
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		r.library.SetSize(msg.Width, msg.Height)
		r.search.SetSize(msg.Width, msg.Height)
		if r.details != nil {
			r.details.SetSize(msg.Width, msg.Height)
		}
		if r.reader != nil {
			r.reader.SetSize(msg.Width, msg.Height)
		}
		return r, nil

	case authResolvedMsg:
		r.auth = msg.state
		if msg.err != nil {
			// an unknown user reads as anonymous
			r.logger.Warn("authentication failed", "error", msg.err)
			r.auth = reading.AuthState{}
		}
		r.library.SetViewer(r.auth.Viewer)
		if r.details != nil {
			r.details.SetViewer(r.auth.Viewer)
		}
		if r.reader != nil {
			return r, r.reader.SetAuth(r.auth)
		}
		return r, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			r.closeReader()
			return r, tea.Quit
		case "q":
			if !r.typing() {
				r.closeReader()
				return r, tea.Quit
			}
		case "tab":
			if r.currentView != libraryView && r.currentView != searchView {
				break
			}
			if r.currentView == libraryView {
				r.currentView = searchView
				return r, r.search.Init()
			}
			r.currentView = libraryView
			return r, r.library.Init()
		}

	case SwitchScreenMsg:
		switch msg.Screen {
		case "library":
			r.closeReader()
			r.currentView = libraryView
			cmd = r.library.Init()
		case "search":
			r.closeReader()
			r.currentView = searchView
			cmd = r.search.Init()
		}
		return r, cmd

	case NavigateMsg:
		return r, r.navigate(msg.Path)
	}

	switch r.currentView {
	case libraryView:
		_, cmd = r.library.Update(msg)
	case searchView:
		_, cmd = r.search.Update(msg)
	case detailsView:
		if r.details != nil {
			_, cmd = r.details.Update(msg)
		}
	case readerView:
		if r.reader != nil {
			_, cmd = r.reader.Update(msg)
		}
	case gateView:
		if r.gate != nil {
			_, cmd = r.gate.Update(msg)
		}
	}
	return r, cmd
}

// navigate resolves a route path into a screen. Opening a chapter always
// starts a fresh reading session; leaving the reader disposes it.
func (r *RootScreen) navigate(path string) tea.Cmd {
	route := reading.ParsePath(path)
	r.logger.Debug("navigate", "path", path)

	switch route.Kind {
	case reading.RouteChapter:
		r.closeReader()
		r.reader = NewReaderScreen(r.lib, route.NovelID, route.ChapterID, r.auth, r.sessionOpts...)
		r.reader.SetSize(r.width, r.height)
		r.currentView = readerView
		return r.reader.Init()

	case reading.RouteNovel:
		r.closeReader()
		if r.details == nil || r.details.novelID != route.NovelID {
			r.details = NewDetailsScreen(r.lib, route.NovelID, r.auth.Viewer)
			r.details.SetSize(r.width, r.height)
		}
		r.currentView = detailsView
		return r.details.Init()

	case reading.RouteNovelList:
		r.closeReader()
		r.currentView = libraryView
		return r.library.Init()

	case reading.RouteLogin, reading.RouteSubscribe:
		back := reading.NovelListPath
		if r.reader != nil {
			if id := r.reader.NovelID(); id != "" {
				back = reading.NovelPath(id)
			}
		}
		r.closeReader()
		r.gate = NewGateScreen(route.Kind, back)
		r.currentView = gateView
		return nil
	}

	r.logger.Warn("unknown route", "path", path)
	return nil
}

func (r *RootScreen) closeReader() {
	if r.reader != nil {
		r.reader.Close()
		r.reader = nil
	}
}

func (r *RootScreen) typing() bool {
	return r.currentView == searchView && r.search.Typing()
}

func (r *RootScreen) View() string {
	var content string
	switch r.currentView {
	case libraryView:
		content = r.library.View()
	case searchView:
		content = r.search.View()
	case detailsView:
		if r.details != nil {
			content = r.details.View()
		}
	case readerView:
		if r.reader != nil {
			return r.reader.View()
		}
	case gateView:
		if r.gate != nil {
			content = r.gate.View()
		}
	}

	return fmt.Sprintf("%s\n\n%s", r.renderTabs(), content)
}

func (r *RootScreen) renderTabs() string {
	libraryTab := styles.InactiveTabStyle.Render("Library")
	searchTab := styles.InactiveTabStyle.Render("Search")
	switch r.currentView {
	case libraryView:
		libraryTab = styles.ActiveTabStyle.Render("Library")
	case searchView:
		searchTab = styles.ActiveTabStyle.Render("Search")
	}

	who := styles.MutedStyle.Render("signing in...")
	if !r.auth.Loading {
		who = styles.MutedStyle.Render("anonymous")
		if v := r.auth.Viewer; v != nil {
			label := fmt.Sprintf("%s (%s)", v.UserID, v.Role)
			if v.Subscribed {
				label += " ★"
			}
			who = styles.SubtitleStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, libraryTab, searchTab, "  ", who)
}
