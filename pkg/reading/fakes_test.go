package reading

import (
	"context"
	"sync"
	"time"

	"github.com/kerbaras/novels/pkg/data"
)

// fakeClock is a manual Scheduler: timers only fire on Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recorder struct {
	mu      sync.Mutex
	intents []Intent
}

func (r *recorder) Emit(i Intent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, i)
}

func (r *recorder) All() []Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Intent(nil), r.intents...)
}

func (r *recorder) Navigations() []string {
	var paths []string
	for _, i := range r.All() {
		if i.Kind == IntentNavigate {
			paths = append(paths, i.Path)
		}
	}
	return paths
}

func (r *recorder) Notices() []Notice {
	var notices []Notice
	for _, i := range r.All() {
		if i.Kind == IntentNotify {
			notices = append(notices, i.Notice)
		}
	}
	return notices
}

type statusErr struct {
	status  int
	message string
}

func (e *statusErr) Error() string       { return e.message }
func (e *statusErr) StatusCode() int     { return e.status }
func (e *statusErr) UserMessage() string { return e.message }

type mockCatalog struct {
	mu           sync.Mutex
	chapters     map[string]*data.Chapter
	novels       map[string]*data.Novel
	chapterErr   error
	listErr      error
	novelErr     error
	chapterCalls int
	listCalls    int
	novelCalls   int

	fetchChapterFunc func(ctx context.Context, id string) (*data.Chapter, error)
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		chapters: map[string]*data.Chapter{},
		novels:   map[string]*data.Novel{},
	}
}

func (m *mockCatalog) FetchChapter(ctx context.Context, id string) (*data.Chapter, error) {
	m.mu.Lock()
	m.chapterCalls++
	fn := m.fetchChapterFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chapterErr != nil {
		return nil, m.chapterErr
	}
	ch, ok := m.chapters[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *ch
	return &c, nil
}

func (m *mockCatalog) FetchChaptersByNovel(_ context.Context, novelID string) ([]*data.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*data.Chapter
	for _, ch := range m.chapters {
		id := ch.Novel.ID
		if ch.Novel.Novel != nil {
			id = ch.Novel.Novel.ID
		}
		if id == novelID {
			c := *ch
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *mockCatalog) FetchNovel(_ context.Context, id string) (*data.Novel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.novelCalls++
	if m.novelErr != nil {
		return nil, m.novelErr
	}
	n, ok := m.novels[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (m *mockCatalog) calls() (chapter, list, novel int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chapterCalls, m.listCalls, m.novelCalls
}

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// threeChapterCatalog holds novel n1 with chapters c1..c3 created at t=1..3.
// c1 is free, c2 and c3 are paid and written by author-1.
func threeChapterCatalog() *mockCatalog {
	m := newMockCatalog()
	m.novels["n1"] = &data.Novel{
		ID:           "n1",
		Title:        "The Long Road",
		Illustration: "/uploads/illust.png",
		AuthorID:     "author-1",
	}
	for i, id := range []string{"c1", "c2", "c3"} {
		m.chapters[id] = &data.Chapter{
			ID:        id,
			Novel:     data.NovelRef{ID: "n1"},
			Title:     "Chapter " + id,
			IsFree:    i == 0,
			AuthorID:  "author-1",
			CreatedAt: epoch.Add(time.Duration(i+1) * time.Hour),
		}
	}
	return m
}

var subscriber = &Viewer{UserID: "reader-9", Role: data.RoleReader, Subscribed: true}

func signedIn(v *Viewer) AuthState {
	return AuthState{Viewer: v}
}
