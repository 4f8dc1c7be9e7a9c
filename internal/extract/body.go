package extract

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// BodyText returns searchable text for a file's contents. Plain text and
// markdown are used as-is, HTML is reduced to its visible text, and
// anything else (PDFs included) has no body text.
func BodyText(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown":
		if !utf8.Valid(data) {
			return ""
		}
		return string(data)
	case ".html", ".htm":
		doc, err := html.Parse(bytes.NewReader(data))
		if err != nil {
			return ""
		}
		return extractVisibleText(doc)
	default:
		return ""
	}
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}
