// Package reading decides whether a reader may open a chapter, where that
// chapter sits in its novel, and where the reader goes next.
package reading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/kerbaras/novels/pkg/data"
	"golang.org/x/sync/errgroup"
)

type State int

const (
	StateLoading State = iota
	StateDenied
	StateError
	StateReady
	StateUnmounted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateDenied:
		return "denied"
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	case StateUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Catalog is the read side of the novel/chapter store.
type Catalog interface {
	FetchChapter(ctx context.Context, id string) (*data.Chapter, error)
	FetchChaptersByNovel(ctx context.Context, novelID string) ([]*data.Chapter, error)
	FetchNovel(ctx context.Context, id string) (*data.Novel, error)
}

// UserMessager is implemented by errors that carry a message meant for the reader.
type UserMessager interface {
	UserMessage() string
}

// ViewState is everything the presentation layer needs to render a chapter.
type ViewState struct {
	Chapter  data.Chapter
	Novel    data.Novel
	NovelID  string
	Images   []string
	Audio    string
	CoverURL string
	Contents []Entry
	Position int // -1 when the chapter is missing from its novel's list
	HasPrev  bool
	HasNext  bool
}

type Option func(*Session)

func WithAssets(r *AssetResolver) Option {
	return func(s *Session) { s.assets = r }
}

func WithScheduler(sched Scheduler) Option {
	return func(s *Session) { s.timer = NewAutoAdvanceTimer(sched) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is one reading visit: created when a chapter is opened and disposed
// when the reader leaves it.
type Session struct {
	id      string
	catalog Catalog
	sink    Sink
	assets  *AssetResolver
	timer   *AutoAdvanceTimer
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	verdict   Verdict
	err       error
	chapterID string
	novelID   string
	seq       *Sequence
	view      *ViewState
	gen       uint64
	cancel    context.CancelFunc
}

func NewSession(catalog Catalog, sink Sink, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		catalog: catalog,
		sink:    sink,
		state:   StateLoading,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sink == nil {
		s.sink = SinkFunc(func(Intent) {})
	}
	if s.assets == nil {
		s.assets = NewAssetResolver("")
	}
	if s.timer == nil {
		s.timer = NewAutoAdvanceTimer(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session", s.id)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Verdict() Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verdict
}

// Err is the failure that put the session in StateError.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// View returns the assembled chapter view once the session is ready.
func (s *Session) View() (ViewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady || s.view == nil {
		return ViewState{}, false
	}
	v := *s.view
	v.Images = append([]string(nil), s.view.Images...)
	v.Contents = append([]Entry(nil), s.view.Contents...)
	return v, true
}

// AutoAdvancePending reports whether a binge-complete timer is running.
func (s *Session) AutoAdvancePending() bool {
	return s.timer.Pending()
}

// Start loads chapterID for the given viewer. While auth is still loading the
// session stays in StateLoading without fetching anything; call Start again
// once auth resolves. Every call is a fresh evaluation that supersedes any
// earlier one still in flight.
func (s *Session) Start(ctx context.Context, chapterID string, auth AuthState) error {
	s.mu.Lock()
	if s.state == StateUnmounted {
		s.mu.Unlock()
		return ErrDisposed
	}
	s.timer.CancelPending()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	gen := s.gen
	s.state = StateLoading
	s.verdict = Allowed
	s.err = nil
	s.seq = nil
	s.view = nil
	s.novelID = ""
	s.chapterID = data.CanonicalID(chapterID)

	if auth.Loading {
		s.mu.Unlock()
		s.logger.Debug("waiting for authentication", "chapter", chapterID)
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	intents, err := s.load(ctx, gen, chapterID, auth.Viewer)
	s.emit(intents)
	return err
}

func (s *Session) load(ctx context.Context, gen uint64, chapterID string, viewer *Viewer) ([]Intent, error) {
	chapter, err := s.catalog.FetchChapter(ctx, chapterID)
	if err != nil {
		return s.fail(gen, "fetch chapter", err, viewer)
	}
	if chapter == nil {
		return s.fail(gen, "fetch chapter", fmt.Errorf("chapter %s: %w", chapterID, ErrNotFound), viewer)
	}

	if verdict := Evaluate(chapter, viewer); !verdict.Allowed() {
		return s.deny(gen, verdict), nil
	}

	novelID, err := ExtractNovelID(chapter)
	if err != nil {
		return s.fail(gen, "extract novel id", err, viewer)
	}

	var (
		chapters []*data.Chapter
		novel    *data.Novel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chapters, err = s.catalog.FetchChaptersByNovel(gctx, novelID)
		if err != nil {
			return fmt.Errorf("fetch chapters: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		novel, err = s.catalog.FetchNovel(gctx, novelID)
		if err != nil {
			return fmt.Errorf("fetch novel: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return s.fail(gen, "load novel", err, viewer)
	}

	seq := BuildSequence(chapters)
	view := &ViewState{
		Chapter:  *chapter,
		NovelID:  novelID,
		Images:   s.assets.ResolveAll(chapter.Images),
		Audio:    s.assets.Resolve(chapter.Audio),
		Contents: seq.Entries(),
		Position: -1,
	}
	if novel != nil {
		view.Novel = *novel
		cover := novel.CoverImage
		if cover == "" {
			cover = novel.Illustration
		}
		view.CoverURL = s.assets.Resolve(cover)
	}
	if pos, ok := seq.PositionOf(chapter.ID); ok {
		view.Position = pos
		_, view.HasPrev = seq.Before(pos)
		_, view.HasNext = seq.After(pos)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil, nil
	}
	s.state = StateReady
	if id := data.CanonicalID(chapter.ID); id != "" {
		// navigation works from the id the catalog knows the chapter by
		s.chapterID = id
	}
	s.novelID = novelID
	s.seq = seq
	s.view = view
	s.logger.Info("chapter ready",
		"chapter", chapter.ID,
		"novel", novelID,
		"position", view.Position,
		"chapters", seq.Len(),
	)
	return nil, nil
}

func (s *Session) deny(gen uint64, verdict Verdict) []Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.state = StateDenied
	s.verdict = verdict
	s.logger.Info("chapter access denied", "chapter", s.chapterID, "verdict", verdict.String())

	if verdict == DeniedRequiresLogin {
		return []Intent{Notify(NoticeLoginRequired, ""), Navigate(LoginPath)}
	}
	return []Intent{Notify(NoticeSubscriptionRequired, ""), Navigate(SubscribePath)}
}

func (s *Session) fail(gen uint64, op string, err error, viewer *Viewer) ([]Intent, error) {
	var status int
	var sc StatusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	// the store refused the chapter itself: same routing as a denied verdict
	if status == http.StatusForbidden {
		verdict := DeniedRequiresSubscription
		if viewer == nil {
			verdict = DeniedRequiresLogin
		}
		return s.deny(gen, verdict), nil
	}

	message := NoticeLoadFailed.Message()
	var um UserMessager
	switch {
	case errors.As(err, &um) && um.UserMessage() != "":
		message = um.UserMessage()
	case errors.Is(err, ErrMalformedReference):
		message = "The novel for this chapter could not be found."
	}

	loadErr := &LoadError{Op: op, Status: status, Message: message, Err: err}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil, nil
	}
	s.state = StateError
	s.err = loadErr
	s.logger.Warn("chapter load failed", "chapter", s.chapterID, "op", op, "status", status, "error", err)
	return []Intent{Notify(NoticeLoadFailed, message)}, loadErr
}

// GoToNext moves to the following chapter, or reports the last-chapter
// boundary. A pending auto-advance is canceled either way.
func (s *Session) GoToNext() {
	s.emit(s.step(1))
}

// GoToPrev moves to the preceding chapter, or reports the first-chapter boundary.
func (s *Session) GoToPrev() {
	s.emit(s.step(-1))
}

func (s *Session) step(dir int) []Intent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady || s.seq.Len() == 0 {
		return nil
	}
	s.timer.CancelPending()

	pos, ok := s.seq.PositionOf(s.chapterID)
	if !ok {
		s.logger.Warn("current chapter missing from sequence", "chapter", s.chapterID)
		return nil
	}

	if dir > 0 {
		if next, ok := s.seq.After(pos); ok {
			return []Intent{Navigate(ChapterPath(s.novelID, next))}
		}
		return []Intent{Notify(NoticeLastChapter, "")}
	}
	if prev, ok := s.seq.Before(pos); ok {
		return []Intent{Navigate(ChapterPath(s.novelID, prev))}
	}
	return []Intent{Notify(NoticeFirstChapter, "")}
}

// GoToList goes back to the novel page, or to the novel list when the
// chapter's novel is not known.
func (s *Session) GoToList() {
	s.mu.Lock()
	if s.state == StateUnmounted {
		s.mu.Unlock()
		return
	}
	s.timer.CancelPending()
	path := NovelListPath
	if s.novelID != "" {
		path = NovelPath(s.novelID)
	}
	s.mu.Unlock()

	s.emit([]Intent{Navigate(path)})
}

// SelectChapter jumps straight to targetID within the current novel.
func (s *Session) SelectChapter(targetID string) {
	s.mu.Lock()
	if s.state == StateUnmounted {
		s.mu.Unlock()
		return
	}
	s.timer.CancelPending()
	target := data.CanonicalID(targetID)
	novelID := s.novelID
	s.mu.Unlock()

	if target == "" || novelID == "" {
		return
	}
	s.emit([]Intent{Navigate(ChapterPath(novelID, target))})
}

// OnBingeComplete is raised when the reader has consumed the whole chapter.
// It starts the auto-advance timer unless one is already running.
func (s *Session) OnBingeComplete() {
	s.mu.Lock()
	if s.state != StateReady || s.timer.Pending() {
		s.mu.Unlock()
		return
	}
	s.timer.Schedule(AutoAdvanceDelay, s.GoToNext)
	s.logger.Debug("auto-advance scheduled", "chapter", s.chapterID, "delay", AutoAdvanceDelay)
	s.mu.Unlock()

	s.emit([]Intent{Notify(NoticeAutoAdvance, "")})
}

// Dispose ends the visit. Any pending auto-advance or in-flight load is
// dropped and the session emits nothing afterwards.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer.CancelPending()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.state == StateUnmounted {
		return
	}
	s.state = StateUnmounted
	s.gen++
	s.logger.Debug("session disposed", "chapter", s.chapterID)
}

func (s *Session) emit(intents []Intent) {
	for _, i := range intents {
		if s.State() == StateUnmounted {
			return
		}
		s.sink.Emit(i)
	}
}
