package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/sources"
	"golang.org/x/sync/errgroup"
)

const (
	StatusSyncing   = "syncing"
	StatusCompleted = "completed"
	StatusPartial   = "partial"

	syncWorkers = 3
)

// SyncProgress reports one step of a novel sync.
type SyncProgress struct {
	NovelID   string
	ChapterID string
	Title     string
	Current   int
	Total     int
	Status    string // "syncing", "saved", "error", "completed", "partial"
	Error     error
}

// LibraryWriter is the part of the library the syncer writes to.
type LibraryWriter interface {
	SaveNovel(novel *data.Novel) error
	SaveChapter(chapter *data.Chapter) error
}

type SyncResult struct {
	Novel  *data.Novel
	Saved  int
	Errors []error
}

// Syncer copies a novel and its chapters from the platform into the local
// library, a few chapters at a time.
type Syncer struct {
	source   sources.Source
	store    LibraryWriter
	progress chan SyncProgress
	logger   *slog.Logger

	mu      sync.Mutex
	closed  bool
	running map[int]context.CancelFunc
	nextRun int
}

var ErrSyncerClosed = errors.New("syncer is closed")

func NewSyncer(source sources.Source, store LibraryWriter) *Syncer {
	return &Syncer{
		source:   source,
		store:    store,
		progress: make(chan SyncProgress, 100),
		running:  map[int]context.CancelFunc{},
		logger:   slog.Default().With("component", "syncer"),
	}
}

// Progress returns the channel progress updates are sent on. Updates are
// dropped when nobody drains it.
func (s *Syncer) Progress() <-chan SyncProgress {
	return s.progress
}

// SyncNovel fetches novelID and all its chapters and stores them. Chapters
// that fail are collected in the result and leave the novel "partial"; only
// failures to read or save the novel itself are returned as an error.
func (s *Syncer) SyncNovel(ctx context.Context, novelID string) (*SyncResult, error) {
	ctx, release, err := s.track(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	novel, err := s.source.FetchNovel(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch novel: %w", err)
	}

	novel.Status = StatusSyncing
	if err := s.store.SaveNovel(novel); err != nil {
		return nil, fmt.Errorf("failed to save novel: %w", err)
	}

	chapters, err := s.source.FetchChaptersByNovel(ctx, novel.ID)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to fetch chapters: %w", err), s.markNovel(novel, StatusPartial))
	}

	result := &SyncResult{Novel: novel}
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncWorkers)
	for _, listed := range chapters {
		g.Go(func() error {
			err := s.syncChapter(gctx, novel, listed)

			mu.Lock()
			done++
			current := done
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("chapter %s: %w", listed.ID, err))
			} else {
				result.Saved++
			}
			mu.Unlock()

			p := SyncProgress{
				NovelID:   novel.ID,
				ChapterID: listed.ID,
				Title:     listed.Title,
				Current:   current,
				Total:     len(chapters),
				Status:    "saved",
			}
			if err != nil {
				p.Status, p.Error = "error", err
			}
			s.sendProgress(p)

			// a canceled sync stops the remaining chapters
			if errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, errors.Join(err, s.markNovel(novel, StatusPartial))
	}

	novel.Status = StatusCompleted
	if len(result.Errors) > 0 {
		novel.Status = StatusPartial
	}
	if err := s.store.SaveNovel(novel); err != nil {
		return result, fmt.Errorf("failed to save novel: %w", err)
	}

	s.sendProgress(SyncProgress{NovelID: novel.ID, Current: len(chapters), Total: len(chapters), Status: novel.Status})
	s.logger.Info("novel synced", "novel", novel.ID, "chapters", len(chapters), "saved", result.Saved, "failed", len(result.Errors))
	return result, nil
}

// syncChapter stores the full chapter. Listings often omit the body, so the
// chapter is fetched on its own; if that is refused (paid chapters) the
// listed metadata is still kept.
func (s *Syncer) syncChapter(ctx context.Context, novel *data.Novel, listed *data.Chapter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.sendProgress(SyncProgress{NovelID: novel.ID, ChapterID: listed.ID, Title: listed.Title, Status: "syncing"})

	chapter := listed
	var fetchErr error
	if listed.Content == "" {
		full, err := s.source.FetchChapter(ctx, listed.ID)
		if err != nil {
			fetchErr = err
		} else {
			chapter = full
		}
	}

	chapter.Novel = data.NovelRef{ID: novel.ID}
	if err := s.store.SaveChapter(chapter); err != nil {
		return fmt.Errorf("failed to save chapter: %w", err)
	}
	return fetchErr
}

// markNovel records a final status after a failed sync.
func (s *Syncer) markNovel(novel *data.Novel, status string) error {
	novel.Status = status
	if err := s.store.SaveNovel(novel); err != nil {
		s.logger.Error("failed to save novel status", "novel", novel.ID, "status", status, "error", err)
		return fmt.Errorf("failed to save novel: %w", err)
	}
	return nil
}

// track registers a running sync so Close can cancel it.
func (s *Syncer) track(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil, ErrSyncerClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	id := s.nextRun
	s.nextRun++
	s.running[id] = cancel
	return ctx, func() {
		s.mu.Lock()
		delete(s.running, id)
		s.mu.Unlock()
		cancel()
	}, nil
}

func (s *Syncer) sendProgress(p SyncProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.progress <- p:
	default:
	}
}

// Close cancels running syncs and closes the progress channel. Syncs still
// unwinding after Close report nothing more.
func (s *Syncer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, cancel := range s.running {
		cancel()
	}
	close(s.progress)
}
