package reading

import (
	"sort"
	"time"

	"github.com/kerbaras/novels/pkg/data"
)

// Entry is one chapter's slot in a novel's reading order.
type Entry struct {
	ChapterID string
	Title     string
	CreatedAt time.Time
}

// Sequence is a novel's chapters ordered by creation time, oldest first.
type Sequence struct {
	entries []Entry
}

// BuildSequence orders chapters by creation time. Equal timestamps are ordered
// by id so every rebuild from the same input yields the same sequence.
func BuildSequence(chapters []*data.Chapter) *Sequence {
	entries := make([]Entry, 0, len(chapters))
	for _, ch := range chapters {
		if ch == nil {
			continue
		}
		entries = append(entries, Entry{
			ChapterID: data.CanonicalID(ch.ID),
			Title:     ch.Title,
			CreatedAt: ch.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ChapterID < entries[j].ChapterID
	})

	return &Sequence{entries: entries}
}

func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the ordered entries.
func (s *Sequence) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// PositionOf returns the index of chapterID, comparing canonical ids.
func (s *Sequence) PositionOf(chapterID string) (int, bool) {
	id := data.CanonicalID(chapterID)
	if s == nil || id == "" {
		return 0, false
	}
	for i, e := range s.entries {
		if e.ChapterID == id {
			return i, true
		}
	}
	return 0, false
}

// Before returns the chapter read just before index i.
func (s *Sequence) Before(i int) (string, bool) {
	if s == nil || i <= 0 || i >= len(s.entries) {
		return "", false
	}
	return s.entries[i-1].ChapterID, true
}

// After returns the chapter read just after index i.
func (s *Sequence) After(i int) (string, bool) {
	if s == nil || i < 0 || i >= len(s.entries)-1 {
		return "", false
	}
	return s.entries[i+1].ChapterID, true
}
