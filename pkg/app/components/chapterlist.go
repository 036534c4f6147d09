package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/novels/pkg/app/styles"
)

type ChapterListItem struct {
	ID      string
	Title   string
	Label   string // "free", "paid" or "locked"; rendered with StatusStyle
	Current bool
}

// ChapterList renders a window of chapters around the selection.
type ChapterList struct {
	Items         []ChapterListItem
	SelectedIndex int
	Window        int
}

func NewChapterList(window int) *ChapterList {
	if window <= 0 {
		window = 10
	}
	return &ChapterList{Window: window}
}

func (l *ChapterList) SetItems(items []ChapterListItem) {
	l.Items = items
	l.SelectedIndex = 0
	for i, item := range items {
		if item.Current {
			l.SelectedIndex = i
			break
		}
	}
}

func (l *ChapterList) Next() {
	if l.SelectedIndex < len(l.Items)-1 {
		l.SelectedIndex++
	}
}

func (l *ChapterList) Prev() {
	if l.SelectedIndex > 0 {
		l.SelectedIndex--
	}
}

func (l *ChapterList) Selected() *ChapterListItem {
	if l.SelectedIndex < 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return &l.Items[l.SelectedIndex]
}

// Bounds returns the half-open range of items currently shown.
func (l *ChapterList) Bounds() (int, int) {
	start, end := 0, len(l.Items)
	if end <= l.Window {
		return start, end
	}
	start = max(l.SelectedIndex-l.Window/2, 0)
	end = start + l.Window
	if end > len(l.Items) {
		end = len(l.Items)
		start = end - l.Window
	}
	return start, end
}

func (l *ChapterList) View() string {
	if len(l.Items) == 0 {
		return styles.MutedStyle.Render("No chapters available")
	}

	var b strings.Builder
	start, end := l.Bounds()
	for i := start; i < end; i++ {
		item := l.Items[i]
		marker := "  "
		if item.Current {
			marker = "▸ "
		}
		title := item.Title
		if title == "" {
			title = item.ID
		}
		line := fmt.Sprintf("%s%3d. %s", marker, i+1, title)

		if i == l.SelectedIndex {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = styles.TextStyle.Render(line)
		}
		if item.Label != "" {
			line += " " + styles.StatusStyle(item.Label).Render("["+item.Label+"]")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(l.Items) > l.Window {
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d chapters", start+1, end, len(l.Items)),
		))
		b.WriteString("\n")
	}
	return b.String()
}
