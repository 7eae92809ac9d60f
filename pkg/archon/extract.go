package archon

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// wowheadPrefix is the href prefix of the talent-calculator link Archon
// embeds in a build page. The page structure is an external contract;
// everything that depends on it lives in this file.
const wowheadPrefix = "https://www.wowhead.com/talent-calc/blizzard/"

// extractBuildCode parses an Archon build page and returns the build code
// from the first wowhead talent-calc link scoped to the given class/spec
// tokens, in document order. Returns "" when no matching link exists.
func extractBuildCode(r io.Reader, classToken, specToken string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	var code string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			if c, ok := codeFromHref(href(n), classToken, specToken); ok {
				code = c
				return true
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}
	walk(doc)

	return code, nil
}

// codeFromHref checks a single anchor href against the talent-calc link
// contract: prefix, then class/spec/code path segments matching the
// requested target.
func codeFromHref(href, classToken, specToken string) (string, bool) {
	rest, ok := strings.CutPrefix(href, wowheadPrefix)
	if !ok {
		return "", false
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != classToken || parts[1] != specToken || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

func href(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			return attr.Val
		}
	}
	return ""
}
