package services

import (
	"context"
	"strings"
	"time"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/patrickmn/go-cache"
)

const (
	novelPrefix    = "novel:"
	chapterPrefix  = "chapter:"
	chaptersPrefix = "chapters:"
)

// CachedCatalog keeps recently read novels and chapters in memory so that
// moving between chapters does not refetch the whole novel every time.
// Chapter lists expire sooner since new chapters get published.
type CachedCatalog struct {
	next    reading.Catalog
	cache   *cache.Cache
	listTTL time.Duration
}

func NewCachedCatalog(next reading.Catalog, ttl time.Duration) *CachedCatalog {
	listTTL := ttl / 5
	if listTTL < time.Second {
		listTTL = time.Second
	}
	return &CachedCatalog{
		next:    next,
		cache:   cache.New(ttl, 2*ttl),
		listTTL: listTTL,
	}
}

func (c *CachedCatalog) FetchChapter(ctx context.Context, id string) (*data.Chapter, error) {
	key := chapterPrefix + data.CanonicalID(id)
	if v, ok := c.cache.Get(key); ok {
		ch := *v.(*data.Chapter)
		return &ch, nil
	}
	ch, err := c.next.FetchChapter(ctx, id)
	if err != nil || ch == nil {
		return ch, err
	}
	stored := *ch
	c.cache.SetDefault(key, &stored)
	return ch, nil
}

func (c *CachedCatalog) FetchChaptersByNovel(ctx context.Context, novelID string) ([]*data.Chapter, error) {
	key := chaptersPrefix + data.CanonicalID(novelID)
	if v, ok := c.cache.Get(key); ok {
		return copyChapters(v.([]*data.Chapter)), nil
	}
	chapters, err := c.next.FetchChaptersByNovel(ctx, novelID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, copyChapters(chapters), c.listTTL)
	return chapters, nil
}

func (c *CachedCatalog) FetchNovel(ctx context.Context, id string) (*data.Novel, error) {
	key := novelPrefix + data.CanonicalID(id)
	if v, ok := c.cache.Get(key); ok {
		n := *v.(*data.Novel)
		return &n, nil
	}
	novel, err := c.next.FetchNovel(ctx, id)
	if err != nil || novel == nil {
		return novel, err
	}
	stored := *novel
	c.cache.SetDefault(key, &stored)
	return novel, nil
}

// Invalidate drops everything cached for novelID, its chapters included.
func (c *CachedCatalog) Invalidate(novelID string) {
	id := data.CanonicalID(novelID)
	c.cache.Delete(novelPrefix + id)
	c.cache.Delete(chaptersPrefix + id)
	for key, item := range c.cache.Items() {
		if !strings.HasPrefix(key, chapterPrefix) {
			continue
		}
		if ch, ok := item.Object.(*data.Chapter); ok {
			if nid, err := reading.ExtractNovelID(ch); err == nil && nid == id {
				c.cache.Delete(key)
			}
		}
	}
}

func (c *CachedCatalog) Flush() {
	c.cache.Flush()
}

func copyChapters(in []*data.Chapter) []*data.Chapter {
	out := make([]*data.Chapter, len(in))
	for i, ch := range in {
		if ch == nil {
			continue
		}
		c := *ch
		out[i] = &c
	}
	return out
}
