package email

import (
	"html"
	"regexp"
	"strings"
)

var (
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr)>`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	blankRunRe  = regexp.MustCompile(`\n{3,}`)
)

// TextFromHTML derives the plain-text alternative of an HTML body. Block
// ends and <br> become line breaks, other tags are dropped and entities
// decoded. Input without markup is returned trimmed.
func TextFromHTML(body string) string {
	if !strings.Contains(body, "<") {
		return strings.TrimSpace(html.UnescapeString(body))
	}

	text := lineBreakRe.ReplaceAllString(body, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = blankRunRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}
