package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Paragraphs splits chapter content into plain-text paragraphs. Content is
// usually HTML from the editor; plain text is split on blank lines.
func Paragraphs(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if !strings.Contains(content, "<") {
		return splitPlain(content)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return splitPlain(content)
	}

	var out []string
	doc.Find("p, h1, h2, h3, li, blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("p, li, blockquote").Length() > 0 {
			return
		}
		if text := collapse(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	if len(out) == 0 {
		return splitPlain(doc.Text())
	}
	return out
}

// PlainText renders content as paragraphs separated by blank lines.
func PlainText(content string) string {
	return strings.Join(Paragraphs(content), "\n\n")
}

func splitPlain(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line := collapse(block); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeFilename replaces characters that are invalid in filenames.
func SanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		return "untitled"
	}
	return result
}
