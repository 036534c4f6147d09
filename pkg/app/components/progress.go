package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/services"
)

// SyncTracker keeps the latest sync update per novel plus the chapters that
// are still in flight or failed.
type SyncTracker struct {
	novels   map[string]*services.SyncProgress
	chapters map[string]*services.SyncProgress
	width    int
}

func NewSyncTracker(width int) *SyncTracker {
	return &SyncTracker{
		novels:   make(map[string]*services.SyncProgress),
		chapters: make(map[string]*services.SyncProgress),
		width:    width,
	}
}

func (t *SyncTracker) Update(p services.SyncProgress) {
	if p.ChapterID == "" {
		prog := p
		t.novels[p.NovelID] = &prog
		if p.Status != services.StatusSyncing {
			for key, c := range t.chapters {
				if c.NovelID == p.NovelID && c.Error == nil {
					delete(t.chapters, key)
				}
			}
		}
		return
	}

	key := p.NovelID + ":" + p.ChapterID
	if p.Status == "saved" {
		delete(t.chapters, key)
	} else {
		prog := p
		t.chapters[key] = &prog
	}

	overall, ok := t.novels[p.NovelID]
	if !ok {
		overall = &services.SyncProgress{NovelID: p.NovelID, Status: services.StatusSyncing}
		t.novels[p.NovelID] = overall
	}
	if p.Total > 0 {
		overall.Current, overall.Total = p.Current, p.Total
	}
}

func (t *SyncTracker) Clear() {
	t.novels = make(map[string]*services.SyncProgress)
	t.chapters = make(map[string]*services.SyncProgress)
}

// HasActive reports whether any novel is still syncing.
func (t *SyncTracker) HasActive() bool {
	for _, p := range t.novels {
		if p.Status == services.StatusSyncing {
			return true
		}
	}
	return false
}

func (t *SyncTracker) View() string {
	if len(t.novels) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Sync"))
	b.WriteString("\n")

	for _, id := range sortedKeys(t.novels) {
		p := t.novels[id]
		status := fmt.Sprintf("%s %s", id, p.Status)
		if p.Total > 0 {
			status = fmt.Sprintf("%s (%d/%d chapters)", status, p.Current, p.Total)
			b.WriteString(renderProgressBar(p.Current, p.Total, max(t.width-4, 10)))
			b.WriteString("\n")
		}
		b.WriteString(styles.StatusStyle(p.Status).Render(status))
		b.WriteString("\n")
	}

	for _, key := range sortedKeys(t.chapters) {
		p := t.chapters[key]
		title := p.Title
		if title == "" {
			title = p.ChapterID
		}
		line := styles.StatusStyle(p.Status).Render(fmt.Sprintf("  %s: %s", p.Status, title))
		if p.Error != nil {
			line += " " + styles.StatusError.Render(fmt.Sprintf("Error: %s", p.Error))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func sortedKeys(m map[string]*services.SyncProgress) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderProgressBar(current, total, width int) string {
	if total == 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return styles.ProgressBarStyle.Render(bar)
}

// SimpleProgress renders a bare progress bar.
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
