package taxonomy

import (
	"regexp"
	"strings"
)

// Section is one heading and the text beneath it.
type Section struct {
	Heading string
	Body    string
}

var headingPatterns = func() [7]*regexp.Regexp {
	var out [7]*regexp.Regexp
	for level := 1; level < len(out); level++ {
		out[level] = regexp.MustCompile(`(?m)^` + strings.Repeat("#", level) + `[ \t]+(.+?)[ \t#]*$`)
	}
	return out
}()

func headingPattern(level int) *regexp.Regexp {
	if level < 1 || level >= len(headingPatterns) {
		level = 2
	}
	return headingPatterns[level]
}

// SplitSections splits text on markdown headings of exactly the given level.
// Text before the first heading is discarded, as are headings with an empty
// title or an empty body.
func SplitSections(text string, level int) []Section {
	re := headingPattern(level)
	matches := re.FindAllStringSubmatchIndex(text, -1)
	sections := make([]Section, 0, len(matches))
	for i, m := range matches {
		heading := strings.TrimSpace(text[m[2]:m[3]])
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:end])
		if heading == "" || body == "" {
			continue
		}
		sections = append(sections, Section{Heading: heading, Body: body})
	}
	return sections
}
