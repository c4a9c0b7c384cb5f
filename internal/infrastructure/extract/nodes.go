package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Node traversal helpers shared by the profile extractors.

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func classContains(n *html.Node, fragment string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return strings.Contains(strings.ToLower(attrVal(n, "class")), fragment)
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attrVal(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

// firstMatch walks the tree depth-first and returns the first element node
// satisfying pred.
func firstMatch(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if root.Type == html.ElementNode && pred(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := firstMatch(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// allMatches collects up to limit element nodes satisfying pred; matched
// subtrees are not descended into.
func allMatches(root *html.Node, pred func(*html.Node) bool, limit int) []*html.Node {
	var out []*html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if len(out) >= limit {
			return
		}
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	return out
}

func findElement(root *html.Node, tag string) *html.Node {
	return firstMatch(root, func(n *html.Node) bool { return n.Data == tag })
}

func eachElement(root *html.Node, tag string, visit func(*html.Node)) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			visit(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

func byID(root *html.Node, id string) *html.Node {
	return firstMatch(root, func(n *html.Node) bool { return attrVal(n, "id") == id })
}

func firstByClass(root *html.Node, class string) *html.Node {
	return firstMatch(root, func(n *html.Node) bool { return hasClass(n, class) })
}

// nodeText returns the concatenated text content of n, skipping script,
// style and template elements.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb, nil)
	return sb.String()
}

// bodyText returns the document's visible body text with non-content
// elements stripped.
func bodyText(doc *html.Node) string {
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	return textWithout(body, nil)
}

// textWithout returns visible text under root, skipping subtrees matched
// by skip.
func textWithout(root *html.Node, skip func(*html.Node) bool) string {
	var sb strings.Builder
	collectText(root, &sb, skip)
	return collapseSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder, skip func(*html.Node) bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template", "meta", "link":
			return
		}
		if skip != nil && skip(n) {
			return
		}
	}
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			sb.WriteString(text)
			sb.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb, skip)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
