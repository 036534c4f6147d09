package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kerbaras/novels/pkg/config"
	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/kerbaras/novels/pkg/sources"
	"github.com/kerbaras/novels/pkg/utils"
)

// Library is the local store the controller works against.
type Library interface {
	reading.Catalog
	LibraryWriter
	UserStore
	SaveUser(user *data.User) error
	ListNovels() ([]*data.Novel, error)
	DeleteNovel(id string) error
	GetNovelWithChapterCount(id string) (*data.Novel, int, int, error)
}

// LibraryController is the facade the CLI and the TUI share.
type LibraryController struct {
	library Library
	remote  sources.Source
	catalog *CachedCatalog
	auth    *Auth
	assets  *reading.AssetResolver
	syncer  *Syncer
	epub    *integrations.EPubBuilder
	logger  *slog.Logger
}

func NewLibraryController(cfg *config.Config) (*LibraryController, error) {
	repo, err := data.NewDuckDBRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	api := utils.NewAPI(cfg.APIURL, utils.WithRateLimit(cfg.RateLimit), utils.WithTimeout(cfg.HTTPTimeout))
	remote := sources.NewPlatform(api)
	assets := reading.NewAssetResolver(cfg.Assets())
	epub := integrations.NewEPubBuilder(cfg.ExportDir,
		integrations.WithIllustrations(api, assets, integrations.NewImageProcessor(integrations.DefaultImageSettings())))

	c := newLibraryController(repo, remote, cfg)
	c.assets = assets
	c.epub = epub
	return c, nil
}

func newLibraryController(library Library, remote sources.Source, cfg *config.Config) *LibraryController {
	var backing reading.Catalog = library
	if cfg.Remote && remote != nil {
		backing = remote
	}
	return &LibraryController{
		library: library,
		remote:  remote,
		catalog: NewCachedCatalog(backing, cfg.CacheTTL),
		auth:    NewAuth(library, cfg.Username),
		assets:  reading.NewAssetResolver(cfg.Assets()),
		syncer:  NewSyncer(remote, library),
		epub:    integrations.NewEPubBuilder(cfg.ExportDir),
		logger:  slog.Default().With("component", "controller"),
	}
}

// NewSession opens a reading session over the controller's catalog.
func (c *LibraryController) NewSession(sink reading.Sink, opts ...reading.Option) *reading.Session {
	opts = append([]reading.Option{reading.WithAssets(c.assets)}, opts...)
	return reading.NewSession(c.catalog, sink, opts...)
}

func (c *LibraryController) ResolveAuth(ctx context.Context) (reading.AuthState, error) {
	return c.auth.Resolve(ctx)
}

// RegisterUser creates or updates a local reader. New users get a fresh id.
func (c *LibraryController) RegisterUser(username string, role data.Role, subscribed bool) (*data.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	switch role {
	case "":
		role = data.RoleReader
	case data.RoleReader, data.RoleAuthor, data.RoleAdmin, data.RoleSuperAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	user := &data.User{ID: uuid.NewString(), Username: username}
	existing, err := c.library.GetUserByName(username)
	switch {
	case err == nil:
		user.ID = existing.ID
	case !errors.Is(err, data.ErrNotFound):
		return nil, err
	}
	user.Role = role
	user.Subscribed = subscribed

	if err := c.library.SaveUser(user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	c.logger.Info("user saved", "user", username, "role", role, "subscribed", subscribed)
	return user, nil
}

func (c *LibraryController) Assets() *reading.AssetResolver {
	return c.assets
}

func (c *LibraryController) ListLibrary() ([]*data.Novel, error) {
	return c.library.ListNovels()
}

func (c *LibraryController) GetNovel(ctx context.Context, id string) (*data.Novel, error) {
	return c.catalog.FetchNovel(ctx, id)
}

// NovelSummary returns a local novel with its total and free chapter counts.
func (c *LibraryController) NovelSummary(id string) (*data.Novel, int, int, error) {
	return c.library.GetNovelWithChapterCount(id)
}

// FindNovelByTitle looks a local novel up by case-insensitive title.
func (c *LibraryController) FindNovelByTitle(title string) (*data.Novel, error) {
	novels, err := c.library.ListNovels()
	if err != nil {
		return nil, err
	}
	for _, n := range novels {
		if strings.EqualFold(n.Title, strings.TrimSpace(title)) {
			return n, nil
		}
	}
	return nil, fmt.Errorf("novel %q: %w", title, data.ErrNotFound)
}

// Chapters returns a novel's chapters in reading order.
func (c *LibraryController) Chapters(ctx context.Context, novelID string) ([]*data.Chapter, *reading.Sequence, error) {
	chapters, err := c.catalog.FetchChaptersByNovel(ctx, novelID)
	if err != nil {
		return nil, nil, err
	}
	seq := reading.BuildSequence(chapters)

	byID := make(map[string]*data.Chapter, len(chapters))
	for _, ch := range chapters {
		if ch != nil {
			byID[data.CanonicalID(ch.ID)] = ch
		}
	}
	ordered := make([]*data.Chapter, 0, seq.Len())
	for _, e := range seq.Entries() {
		ordered = append(ordered, byID[e.ChapterID])
	}
	return ordered, seq, nil
}

func (c *LibraryController) Search(ctx context.Context, query string) ([]*data.Novel, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if c.remote == nil {
		return nil, fmt.Errorf("no remote platform configured")
	}
	return c.remote.Search(ctx, query)
}

// Sync copies a remote novel into the library and drops stale cache entries.
func (c *LibraryController) Sync(ctx context.Context, novelID string) (*SyncResult, error) {
	if c.remote == nil {
		return nil, fmt.Errorf("no remote platform configured")
	}
	result, err := c.syncer.SyncNovel(ctx, novelID)
	c.catalog.Invalidate(novelID)
	return result, err
}

func (c *LibraryController) SyncProgress() <-chan SyncProgress {
	return c.syncer.Progress()
}

func (c *LibraryController) DeleteNovel(id string) error {
	if err := c.library.DeleteNovel(id); err != nil {
		return err
	}
	c.catalog.Invalidate(id)
	return nil
}

// Export writes an EPUB of the chapters the viewer may read.
func (c *LibraryController) Export(ctx context.Context, novelID string, viewer *reading.Viewer) (*integrations.ExportResult, error) {
	novel, err := c.catalog.FetchNovel(ctx, novelID)
	if err != nil {
		return nil, err
	}
	chapters, err := c.catalog.FetchChaptersByNovel(ctx, novelID)
	if err != nil {
		return nil, err
	}
	return c.epub.CreateEPub(ctx, novel, chapters, viewer)
}

func (c *LibraryController) Close() {
	c.syncer.Close()
}
