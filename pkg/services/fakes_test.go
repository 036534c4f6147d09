package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/kerbaras/novels/pkg/data"
)

type mockSource struct {
	searchFunc        func(query string) ([]*data.Novel, error)
	fetchNovelFunc    func(id string) (*data.Novel, error)
	fetchChapterFunc  func(id string) (*data.Chapter, error)
	fetchChaptersFunc func(novelID string) ([]*data.Chapter, error)
}

func (m *mockSource) Search(_ context.Context, query string) ([]*data.Novel, error) {
	if m.searchFunc != nil {
		return m.searchFunc(query)
	}
	return nil, nil
}

func (m *mockSource) FetchNovel(_ context.Context, id string) (*data.Novel, error) {
	if m.fetchNovelFunc != nil {
		return m.fetchNovelFunc(id)
	}
	return nil, data.ErrNotFound
}

func (m *mockSource) FetchChapter(_ context.Context, id string) (*data.Chapter, error) {
	if m.fetchChapterFunc != nil {
		return m.fetchChapterFunc(id)
	}
	return nil, data.ErrNotFound
}

func (m *mockSource) FetchChaptersByNovel(_ context.Context, novelID string) ([]*data.Chapter, error) {
	if m.fetchChaptersFunc != nil {
		return m.fetchChaptersFunc(novelID)
	}
	return nil, nil
}

// memLibrary is an in-memory Library.
type memLibrary struct {
	mu       sync.Mutex
	novels   map[string]*data.Novel
	chapters map[string]*data.Chapter
	users    map[string]*data.User
	saves    []string // novel statuses in save order

	// failSave makes SaveNovel fail for novels in this status
	failSave string

	novelReads   int
	chapterReads int
	listReads    int
}

func newMemLibrary() *memLibrary {
	return &memLibrary{
		novels:   map[string]*data.Novel{},
		chapters: map[string]*data.Chapter{},
		users:    map[string]*data.User{},
	}
}

func (m *memLibrary) SaveNovel(n *data.Novel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != "" && n.Status == m.failSave {
		return errors.New("disk full")
	}
	c := *n
	m.novels[n.ID] = &c
	m.saves = append(m.saves, n.Status)
	return nil
}

func (m *memLibrary) SaveChapter(ch *data.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *ch
	m.chapters[ch.ID] = &c
	return nil
}

func (m *memLibrary) SaveUser(u *data.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *u
	m.users[u.Username] = &c
	return nil
}

func (m *memLibrary) GetUserByName(username string) (*data.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, data.ErrNotFound
	}
	return u, nil
}

func (m *memLibrary) FetchNovel(_ context.Context, id string) (*data.Novel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.novelReads++
	n, ok := m.novels[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (m *memLibrary) FetchChapter(_ context.Context, id string) (*data.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chapterReads++
	ch, ok := m.chapters[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *ch
	return &c, nil
}

func (m *memLibrary) FetchChaptersByNovel(_ context.Context, novelID string) ([]*data.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listReads++
	var out []*data.Chapter
	for _, ch := range m.chapters {
		if ch.Novel.ID == novelID {
			c := *ch
			out = append(out, &c)
		}
	}
	// map order would otherwise leak into tests
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memLibrary) ListNovels() ([]*data.Novel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*data.Novel
	for _, n := range m.novels {
		out = append(out, n)
	}
	return out, nil
}

func (m *memLibrary) DeleteNovel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.novels, id)
	for cid, ch := range m.chapters {
		if ch.Novel.ID == id {
			delete(m.chapters, cid)
		}
	}
	return nil
}

func (m *memLibrary) GetNovelWithChapterCount(id string) (*data.Novel, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.novels[id]
	if !ok {
		return nil, 0, 0, data.ErrNotFound
	}
	var total, free int
	for _, ch := range m.chapters {
		if ch.Novel.ID == id {
			total++
			if ch.IsFree {
				free++
			}
		}
	}
	return n, total, free, nil
}

func (m *memLibrary) reads() (novel, chapter, list int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.novelReads, m.chapterReads, m.listReads
}
