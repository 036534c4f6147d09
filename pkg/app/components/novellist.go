package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/data"
)

type NovelListItem struct {
	Novel        *data.Novel
	ChapterCount int
	FreeCount    int
}

// NovelList is a wrapping, card-per-novel selection list.
type NovelList struct {
	Items         []NovelListItem
	SelectedIndex int
	Width         int
	Height        int
	Empty         string
}

func NewNovelList() *NovelList {
	return &NovelList{
		Items:  []NovelListItem{},
		Width:  80,
		Height: 20,
		Empty:  "No novels in library",
	}
}

func (l *NovelList) SetItems(items []NovelListItem) {
	l.Items = items
	if l.SelectedIndex >= len(items) && len(items) > 0 {
		l.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		l.SelectedIndex = 0
	}
}

func (l *NovelList) Next() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex = (l.SelectedIndex + 1) % len(l.Items)
}

func (l *NovelList) Prev() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex--
	if l.SelectedIndex < 0 {
		l.SelectedIndex = len(l.Items) - 1
	}
}

func (l *NovelList) Selected() *NovelListItem {
	if len(l.Items) == 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return &l.Items[l.SelectedIndex]
}

func (l *NovelList) View() string {
	if len(l.Items) == 0 {
		msg := styles.MutedStyle.Render(l.Empty)
		return lipgloss.Place(l.Width, l.Height, lipgloss.Center, lipgloss.Center, msg)
	}

	var b strings.Builder
	for i, item := range l.Items {
		card := styles.CardStyle
		if i == l.SelectedIndex {
			card = styles.ActiveCardStyle
		}
		b.WriteString(card.Width(max(l.Width-4, 20)).Render(renderNovel(item)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderNovel(item NovelListItem) string {
	n := item.Novel
	lines := []string{styles.TitleStyle.Render(n.Title)}

	if n.AuthorName != "" {
		lines = append(lines, styles.SubtitleStyle.Render("by "+n.AuthorName))
	}
	if desc := Truncate(n.Description, 80); desc != "" {
		lines = append(lines, styles.TextStyle.Render(desc))
	}

	chapters := fmt.Sprintf("Chapters: %d (%d free)", item.ChapterCount, item.FreeCount)
	lines = append(lines, "", styles.MutedStyle.Render(chapters))

	status := n.Status
	if status == "" {
		status = "ready"
	}
	lines = append(lines, styles.StatusStyle(n.Status).Render("Status: "+status))

	if len(n.Tags) > 0 {
		lines = append(lines, styles.MutedStyle.Render("#"+strings.Join(n.Tags, " #")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
