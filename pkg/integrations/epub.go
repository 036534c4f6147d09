package integrations

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/kerbaras/novels/pkg/utils"
)

var ErrNothingReadable = errors.New("no readable chapters")

// ExportResult describes a written EPUB.
type ExportResult struct {
	Path     string
	Included int
	Skipped  int // chapters the viewer may not read
	Images   int
}

type EPubBuilder struct {
	outputDir string
	assets    *reading.AssetResolver
	fetcher   ImageFetcher
	images    *ImageProcessor
	logger    *slog.Logger
}

type EPubOption func(*EPubBuilder)

// WithIllustrations embeds chapter images, fetched through f and resolved
// against assets.
func WithIllustrations(f ImageFetcher, assets *reading.AssetResolver, images *ImageProcessor) EPubOption {
	return func(b *EPubBuilder) {
		b.fetcher = f
		b.assets = assets
		b.images = images
	}
}

func NewEPubBuilder(outputDir string, opts ...EPubOption) *EPubBuilder {
	b := &EPubBuilder{
		outputDir: outputDir,
		logger:    slog.Default().With("component", "epub"),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.images == nil {
		b.images = NewImageProcessor(DefaultImageSettings())
	}
	return b
}

// CreateEPub compiles the chapters viewer may read into a single EPUB, in
// reading order. Chapters the viewer may not open are left out and counted.
func (b *EPubBuilder) CreateEPub(ctx context.Context, novel *data.Novel, chapters []*data.Chapter, viewer *reading.Viewer) (*ExportResult, error) {
	if novel == nil {
		return nil, fmt.Errorf("novel cannot be nil")
	}

	byID := make(map[string]*data.Chapter, len(chapters))
	for _, ch := range chapters {
		if ch != nil {
			byID[data.CanonicalID(ch.ID)] = ch
		}
	}

	result := &ExportResult{}
	var readable []*data.Chapter
	for _, entry := range reading.BuildSequence(chapters).Entries() {
		ch := byID[entry.ChapterID]
		if !reading.Evaluate(ch, viewer).Allowed() {
			result.Skipped++
			continue
		}
		readable = append(readable, ch)
	}
	if len(readable) == 0 {
		return nil, fmt.Errorf("%s: %w", novel.Title, ErrNothingReadable)
	}

	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	workDir, err := os.MkdirTemp("", "novels-epub-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	title := novel.Title
	if title == "" {
		title = novel.ID
	}
	e, err := epub.NewEpub(title)
	if err != nil {
		return nil, fmt.Errorf("failed to create EPub: %w", err)
	}
	if novel.AuthorName != "" {
		e.SetAuthor(novel.AuthorName)
	}
	if novel.Description != "" {
		e.SetDescription(novel.Description)
	}
	e.SetLang("ko")

	if cover := firstNonEmpty(novel.CoverImage, novel.Illustration); cover != "" {
		if internal, ok := b.embedImage(ctx, e, workDir, "cover", cover); ok {
			body := fmt.Sprintf(`<div class="cover"><img src="%s" alt="%s" style="width:100%%;height:auto;"/></div>`,
				internal, html.EscapeString(title))
			if _, err := e.AddSection(body, "Cover", "cover.xhtml", ""); err != nil {
				return nil, fmt.Errorf("failed to add cover: %w", err)
			}
			result.Images++
		}
	}

	for i, ch := range readable {
		n, err := b.addChapter(ctx, e, workDir, i+1, ch)
		if err != nil {
			return nil, fmt.Errorf("failed to add chapter %s: %w", ch.ID, err)
		}
		result.Included++
		result.Images += n
	}

	outputPath := filepath.Join(b.outputDir, utils.SanitizeFilename(title)+".epub")
	if err := e.Write(outputPath); err != nil {
		return nil, fmt.Errorf("failed to write EPub: %w", err)
	}
	result.Path = outputPath

	b.logger.Info("epub written", "novel", novel.ID, "path", outputPath,
		"chapters", result.Included, "skipped", result.Skipped)
	return result, nil
}

// addChapter adds one chapter section and returns how many images it embedded.
func (b *EPubBuilder) addChapter(ctx context.Context, e *epub.Epub, workDir string, n int, ch *data.Chapter) (int, error) {
	title := ch.Title
	if title == "" {
		title = fmt.Sprintf("Chapter %d", n)
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(title)))

	images := 0
	for i, ref := range ch.Images {
		name := fmt.Sprintf("ch%04d-%02d", n, i+1)
		internal, ok := b.embedImage(ctx, e, workDir, name, ref)
		if !ok {
			continue
		}
		body.WriteString(fmt.Sprintf(
			`<div class="illustration"><img src="%s" alt="Illustration %d" style="width:100%%;height:auto;"/></div>%s`,
			internal, i+1, "\n",
		))
		images++
	}

	for _, p := range utils.Paragraphs(ch.Content) {
		body.WriteString("<p>")
		body.WriteString(html.EscapeString(p))
		body.WriteString("</p>\n")
	}

	filename := fmt.Sprintf("chapter%04d.xhtml", n)
	if _, err := e.AddSection(body.String(), title, filename, ""); err != nil {
		return 0, fmt.Errorf("failed to add section: %w", err)
	}
	return images, nil
}

// embedImage downloads ref, optimizes it and adds it to the book. Images that
// cannot be fetched or decoded are skipped.
func (b *EPubBuilder) embedImage(ctx context.Context, e *epub.Epub, workDir, name, ref string) (string, bool) {
	if b.fetcher == nil {
		return "", false
	}
	url := b.assets.Resolve(ref)
	if url == "" {
		return "", false
	}

	raw, err := b.fetcher.Download(ctx, url)
	if err != nil {
		b.logger.Warn("image download failed", "url", url, "error", err)
		return "", false
	}
	processed, err := b.images.ProcessImageData(raw)
	if err != nil {
		b.logger.Warn("image skipped", "url", url, "error", err)
		return "", false
	}

	filename := name + b.images.Settings().Extension()
	path := filepath.Join(workDir, filename)
	if err := os.WriteFile(path, processed, 0644); err != nil {
		b.logger.Warn("image skipped", "url", url, "error", err)
		return "", false
	}
	internal, err := e.AddImage(path, filename)
	if err != nil {
		b.logger.Warn("image skipped", "url", url, "error", err)
		return "", false
	}
	return internal, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
