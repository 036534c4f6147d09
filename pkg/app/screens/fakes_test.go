package screens

import (
	"context"
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/kerbaras/novels/pkg/services"
)

// fakeLibrary is an in-memory Library that is also the sessions' catalog.
type fakeLibrary struct {
	mu       sync.Mutex
	novels   map[string]*data.Novel
	chapters map[string]*data.Chapter
	auth     reading.AuthState
	authErr  error
	deleted  []string
	synced   []string
	exported []*reading.Viewer
	progress chan services.SyncProgress
}

func newFakeLibrary() *fakeLibrary {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	lib := &fakeLibrary{
		novels: map[string]*data.Novel{
			"n1": {ID: "n1", Title: "The Long Road", AuthorName: "Mina", Description: "A journey."},
		},
		chapters: map[string]*data.Chapter{},
		progress: make(chan services.SyncProgress, 10),
	}
	for i, id := range []string{"c1", "c2", "c3"} {
		lib.chapters[id] = &data.Chapter{
			ID:        id,
			Novel:     data.NovelRef{ID: "n1"},
			Title:     "Chapter " + id,
			Content:   "First line of " + id + "\nSecond line.",
			IsFree:    i == 0,
			AuthorID:  "author-1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return lib
}

func (f *fakeLibrary) FetchChapter(_ context.Context, id string) (*data.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.chapters[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *ch
	return &c, nil
}

func (f *fakeLibrary) FetchChaptersByNovel(_ context.Context, novelID string) ([]*data.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*data.Chapter
	for _, ch := range f.chapters {
		if ch.Novel.ID == novelID {
			c := *ch
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeLibrary) FetchNovel(_ context.Context, id string) (*data.Novel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.novels[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (f *fakeLibrary) NewSession(sink reading.Sink, opts ...reading.Option) *reading.Session {
	return reading.NewSession(f, sink, opts...)
}

func (f *fakeLibrary) ResolveAuth(context.Context) (reading.AuthState, error) {
	return f.auth, f.authErr
}

func (f *fakeLibrary) ListLibrary() ([]*data.Novel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*data.Novel
	for _, n := range f.novels {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeLibrary) NovelSummary(id string) (*data.Novel, int, int, error) {
	chapters, _ := f.FetchChaptersByNovel(context.Background(), id)
	free := 0
	for _, ch := range chapters {
		if ch.IsFree {
			free++
		}
	}
	n, err := f.FetchNovel(context.Background(), id)
	return n, len(chapters), free, err
}

func (f *fakeLibrary) GetNovel(ctx context.Context, id string) (*data.Novel, error) {
	return f.FetchNovel(ctx, id)
}

func (f *fakeLibrary) Chapters(ctx context.Context, novelID string) ([]*data.Chapter, *reading.Sequence, error) {
	chapters, err := f.FetchChaptersByNovel(ctx, novelID)
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].CreatedAt.Before(chapters[j].CreatedAt) })
	return chapters, reading.BuildSequence(chapters), nil
}

func (f *fakeLibrary) Search(_ context.Context, query string) ([]*data.Novel, error) {
	return []*data.Novel{{ID: "r1", Title: "Result for " + query}}, nil
}

func (f *fakeLibrary) Sync(_ context.Context, novelID string) (*services.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, novelID)
	return &services.SyncResult{Novel: &data.Novel{ID: novelID}}, nil
}

func (f *fakeLibrary) SyncProgress() <-chan services.SyncProgress {
	return f.progress
}

func (f *fakeLibrary) DeleteNovel(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	delete(f.novels, id)
	return nil
}

func (f *fakeLibrary) Export(_ context.Context, novelID string, viewer *reading.Viewer) (*integrations.ExportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported = append(f.exported, viewer)
	return &integrations.ExportResult{Path: "exports/" + novelID + ".epub", Included: 1, Skipped: 2}, nil
}

// manualScheduler only runs timers when Fire is called.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	f       func()
	stopped bool
}

func (m *manualScheduler) AfterFunc(_ time.Duration, f func()) reading.Stopper {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{s: m, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualScheduler) Fire() {
	m.mu.Lock()
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped {
			t.stopped = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

var subscriber = reading.AuthState{Viewer: &reading.Viewer{UserID: "u1", Role: data.RoleReader, Subscribed: true}}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// pendingIntent returns the next intent the reader queued, if any.
func pendingIntent(s *ReaderScreen) (reading.Intent, bool) {
	select {
	case i := <-s.intents:
		return i, true
	default:
		return reading.Intent{}, false
	}
}
