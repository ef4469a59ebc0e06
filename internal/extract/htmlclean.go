package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var droppedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Nav:      true,
	atom.Aside:    true,
	atom.Template: true,
}

// CleanHTML reduces an HTML document to its readable text. Boilerplate
// elements (scripts, styles, headers, footers, navigation, asides) are
// dropped and whitespace runs collapse to single spaces.
func CleanHTML(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return collapseSpace(doc)
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && droppedElements[n.DataAtom] {
			return
		}
		if n.Type == html.CommentNode {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return collapseSpace(strings.Join(parts, " "))
}

// DocumentTitle returns the trimmed text of the first <title> element, or "".
func DocumentTitle(doc string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if atom.Lookup(name) != atom.Title {
				continue
			}
			if tokenizer.Next() != html.TextToken {
				return ""
			}
			return collapseSpace(string(tokenizer.Text()))
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
