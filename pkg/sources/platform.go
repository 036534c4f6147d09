package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/utils"
)

// Platform talks to the novel platform's REST API.
type Platform struct {
	api    *utils.API
	logger *slog.Logger
}

func NewPlatform(api *utils.API) *Platform {
	return &Platform{api: api, logger: slog.Default().With("source", "platform")}
}

func (p *Platform) Search(ctx context.Context, query string) ([]*data.Novel, error) {
	var raw json.RawMessage
	if err := p.api.Get(ctx, "/api/novels/search", url.Values{"q": {query}}, &raw); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	docs, err := decodeNovelList(raw)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	out := make([]*data.Novel, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].ToNovel())
	}
	p.logger.Debug("search finished", "query", query, "results", len(out))
	return out, nil
}

func (p *Platform) FetchNovel(ctx context.Context, id string) (*data.Novel, error) {
	var doc novelDoc
	if err := p.api.Get(ctx, "/api/novels/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, fmt.Errorf("novel %s: %w", id, err)
	}
	return doc.ToNovel(), nil
}

func (p *Platform) FetchChapter(ctx context.Context, id string) (*data.Chapter, error) {
	var doc chapterDoc
	if err := p.api.Get(ctx, "/api/chapters/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, fmt.Errorf("chapter %s: %w", id, err)
	}
	return doc.ToChapter(), nil
}

func (p *Platform) FetchChaptersByNovel(ctx context.Context, novelID string) ([]*data.Chapter, error) {
	var docs []chapterDoc
	if err := p.api.Get(ctx, "/api/chapters/novel/"+url.PathEscape(novelID), nil, &docs); err != nil {
		return nil, fmt.Errorf("chapters of %s: %w", novelID, err)
	}
	out := make([]*data.Chapter, len(docs))
	for i := range docs {
		out[i] = docs[i].ToChapter()
	}
	return out, nil
}

// decodeNovelList accepts a bare array or an envelope around one.
func decodeNovelList(raw json.RawMessage) ([]novelDoc, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var docs []novelDoc
	if raw[0] == '[' {
		err := json.Unmarshal(raw, &docs)
		return docs, err
	}
	var envelope struct {
		Novels  []novelDoc `json:"novels"`
		Results []novelDoc `json:"results"`
		Data    []novelDoc `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	switch {
	case envelope.Novels != nil:
		return envelope.Novels, nil
	case envelope.Results != nil:
		return envelope.Results, nil
	}
	return envelope.Data, nil
}
