package sources

import (
	"context"

	"github.com/kerbaras/novels/pkg/data"
)

// Source is a remote novel platform. Besides search it serves the same reads
// as the local library, so a reading session can run against either.
type Source interface {
	Search(ctx context.Context, query string) ([]*data.Novel, error)
	FetchNovel(ctx context.Context, id string) (*data.Novel, error)
	FetchChapter(ctx context.Context, id string) (*data.Chapter, error)
	FetchChaptersByNovel(ctx context.Context, novelID string) ([]*data.Chapter, error)
}
