// Package report renders phase records as markdown artifacts.
package report

import (
	"fmt"
	"strings"
)

// Artifact is a rendered report ready to be written into the workspace.
// Filename may include a sub-directory.
type Artifact struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// DateLayout is the date prefix used in artifact filenames.
const DateLayout = "2006-01-02"

func h1(text string) string { return "# " + text }
func h2(text string) string { return "## " + text }
func h3(text string) string { return "### " + text }

func link(text, url string) string {
	return fmt.Sprintf("[%s](%s)", text, url)
}

// blockquote prefixes every line with "> ".
func blockquote(text string) string {
	if text == "" {
		return ">"
	}
	return "> " + strings.ReplaceAll(text, "\n", "\n> ")
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "_No items_"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// dropdown wraps content in a collapsible HTML details block.
func dropdown(title, content string) string {
	return fmt.Sprintf("\n<details>\n<summary><b>%s</b></summary>\n\n%s\n\n</details>\n", title, content)
}

// CleanText strips leading quote markers generated text tends to carry.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, "> ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FirstHeading returns the text of the first level-one heading, or "".
func FirstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
