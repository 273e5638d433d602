package thread

import (
	"strings"

	"golang.org/x/net/html"
)

// CleanBody strips markup from an email body and collapses all whitespace runs
// (including newlines) to single spaces. Entities are decoded by the HTML
// parser. Input that fails to parse is treated as plain text.
func CleanBody(body string) string {
	if body == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return collapseWhitespace(body)
	}

	var sb strings.Builder
	collectText(doc, &sb)
	return collapseWhitespace(sb.String())
}

// collectText walks the parsed tree appending text content, skipping
// non-content elements.
func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "head":
			return
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		// Separate adjacent text nodes so tag boundaries don't glue words.
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
