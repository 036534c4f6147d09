package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlatform(t *testing.T, routes map[string]string) *Platform {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not here"}`))
			return
		}
		if r.URL.Path == "/api/novels/search" && r.URL.Query().Get("q") == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"query required"}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewPlatform(utils.NewAPI(srv.URL))
}

func TestPlatformFetchChapter(t *testing.T) {
	p := newTestPlatform(t, map[string]string{
		"/api/chapters/c1": `{
			"_id": "c1",
			"novelId": "n1",
			"title": "Opening",
			"content": "<p>Hi</p>",
			"images": ["/uploads/a.png"],
			"bgm": "/uploads/theme.mp3",
			"isFree": true,
			"authorId": 42,
			"createdAt": "2024-03-01T10:00:00Z"
		}`,
		"/api/chapters/c2": `{
			"_id": {"$oid": "c2"},
			"novelId": {"_id": "n1", "title": "Moonlight", "bookCover": "/covers/n1.jpg"},
			"isFree": false,
			"authorId": {"_id": 42}
		}`,
	})

	ch, err := p.FetchChapter(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", ch.ID)
	assert.Equal(t, "n1", ch.Novel.ID)
	assert.Nil(t, ch.Novel.Novel)
	assert.Equal(t, "42", ch.AuthorID)
	assert.Equal(t, "/uploads/theme.mp3", ch.Audio)
	assert.Equal(t, []string{"/uploads/a.png"}, ch.Images)
	assert.True(t, ch.IsFree)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), ch.CreatedAt.UTC())

	ch, err = p.FetchChapter(context.Background(), "c2")
	require.NoError(t, err)
	assert.Equal(t, "c2", ch.ID)
	require.NotNil(t, ch.Novel.Novel)
	assert.Equal(t, "n1", ch.Novel.Novel.ID)
	assert.Equal(t, "/covers/n1.jpg", ch.Novel.Novel.CoverImage)
	assert.Equal(t, "42", ch.AuthorID)
	assert.False(t, ch.IsFree)
}

func TestPlatformFetchChapterNotFound(t *testing.T) {
	p := newTestPlatform(t, nil)
	_, err := p.FetchChapter(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, data.ErrNotFound))

	var herr *utils.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "not here", herr.UserMessage())
}

func TestPlatformFetchNovel(t *testing.T) {
	p := newTestPlatform(t, map[string]string{
		"/api/novels/n1": `{
			"_id": "n1",
			"title": "Moonlight",
			"coverImage": "/covers/n1.jpg",
			"illustration": "/illust/n1.png",
			"author": {"_id": "u7", "nickname": "Mina"},
			"views": 1200,
			"serialDays": ["mon", "fri"],
			"tags": ["romance"]
		}`,
	})

	n, err := p.FetchNovel(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "Moonlight", n.Title)
	assert.Equal(t, "/covers/n1.jpg", n.CoverImage)
	assert.Equal(t, "/illust/n1.png", n.Illustration)
	assert.Equal(t, "u7", n.AuthorID)
	assert.Equal(t, "Mina", n.AuthorName)
	assert.EqualValues(t, 1200, n.Views)
	assert.Equal(t, []string{"mon", "fri"}, n.SerialDays)
}

func TestPlatformFetchChaptersByNovel(t *testing.T) {
	p := newTestPlatform(t, map[string]string{
		"/api/chapters/novel/n1": `[
			{"_id": 2, "novelId": "n1", "createdAt": "2024-03-02T00:00:00Z"},
			{"_id": 1, "novelId": "n1", "createdAt": "2024-03-01T00:00:00Z"}
		]`,
	})

	chapters, err := p.FetchChaptersByNovel(context.Background(), "n1")
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, "2", chapters[0].ID)
	assert.Equal(t, "1", chapters[1].ID)
}

func TestPlatformSearch(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		p := newTestPlatform(t, map[string]string{
			"/api/novels/search": `[{"_id": "n1", "title": "Moonlight", "author": "Mina"}]`,
		})
		novels, err := p.Search(context.Background(), "moon")
		require.NoError(t, err)
		require.Len(t, novels, 1)
		assert.Equal(t, "Mina", novels[0].AuthorName)
	})

	t.Run("envelope", func(t *testing.T) {
		p := newTestPlatform(t, map[string]string{
			"/api/novels/search": `{"novels": [{"_id": "n1", "title": "A"}, {"_id": "n2", "title": "B"}]}`,
		})
		novels, err := p.Search(context.Background(), "x")
		require.NoError(t, err)
		assert.Len(t, novels, 2)
	})

	t.Run("bad request", func(t *testing.T) {
		p := newTestPlatform(t, map[string]string{"/api/novels/search": `[]`})
		_, err := p.Search(context.Background(), "")
		var herr *utils.HTTPError
		require.ErrorAs(t, err, &herr)
		assert.Equal(t, http.StatusBadRequest, herr.Status)
	})
}

func TestPlatformImplementsSource(t *testing.T) {
	var _ Source = (*Platform)(nil)
}
