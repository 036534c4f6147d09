package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCatalog struct {
	novel    *data.Novel
	chapters map[string]*data.Chapter
}

func (m *mapCatalog) FetchChapter(_ context.Context, id string) (*data.Chapter, error) {
	ch, ok := m.chapters[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *ch
	return &c, nil
}

func (m *mapCatalog) FetchChaptersByNovel(_ context.Context, novelID string) ([]*data.Chapter, error) {
	var out []*data.Chapter
	for _, ch := range m.chapters {
		c := *ch
		out = append(out, &c)
	}
	return out, nil
}

func (m *mapCatalog) FetchNovel(_ context.Context, id string) (*data.Novel, error) {
	n := *m.novel
	return &n, nil
}

type catalogOpener struct {
	catalog reading.Catalog
	opened  []*reading.Session
}

func (o *catalogOpener) NewSession(sink reading.Sink, opts ...reading.Option) *reading.Session {
	s := reading.NewSession(o.catalog, sink, opts...)
	o.opened = append(o.opened, s)
	return s
}

// immediate fires every auto-advance right away.
type immediate struct{}

type noStop struct{}

func (noStop) Stop() bool { return false }

func (immediate) AfterFunc(_ time.Duration, f func()) reading.Stopper {
	go f()
	return noStop{}
}

func freeThenPaid() *mapCatalog {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ref := data.NovelRef{ID: "n1"}
	return &mapCatalog{
		novel: &data.Novel{ID: "n1", Title: "Moonlight"},
		chapters: map[string]*data.Chapter{
			"c1": {ID: "c1", Novel: ref, Title: "One", Content: "<p>first</p>", IsFree: true, CreatedAt: base},
			"c2": {ID: "c2", Novel: ref, Title: "Two", Content: "<p>second</p>", AuthorID: "a1", CreatedAt: base.Add(time.Hour)},
		},
	}
}

func TestBingeStopsAtLockedChapter(t *testing.T) {
	opener := &catalogOpener{catalog: freeThenPaid()}
	r := &chapterReader{
		controller: opener,
		opts:       []reading.Option{reading.WithScheduler(immediate{})},
		width:      60,
		binge:      true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.run(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, opener.opened, 2, "followed the binge into the second chapter")
	assert.Equal(t, reading.StateUnmounted, opener.opened[1].State())
}

func TestReadLockedChapterFails(t *testing.T) {
	r := &chapterReader{controller: &catalogOpener{catalog: freeThenPaid()}, width: 60, binge: true}

	err := r.run(context.Background(), "c2")
	assert.ErrorIs(t, err, errAccessDenied)
}

func TestReadWithoutBingeStopsAfterOne(t *testing.T) {
	opener := &catalogOpener{catalog: freeThenPaid()}
	r := &chapterReader{controller: opener, width: 60}

	require.NoError(t, r.run(context.Background(), "c1"))
	assert.Len(t, opener.opened, 1)
}
