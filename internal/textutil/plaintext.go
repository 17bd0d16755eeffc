package textutil

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText strips markup from s and collapses whitespace. Used to feed
// the search index.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if !ContainsHTML(s) {
		return NormalizeName(s)
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return NormalizeName(s)
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return NormalizeName(buf.String())
}

func extractText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "td":
			buf.WriteString(" ")
		}
	}
}
