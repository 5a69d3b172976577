package translate

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var resultContainer = regexp.MustCompile(`(?ms)<ul id="translateResult".*?/ul>`)

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// ExtractResult pulls the translated lines out of a Youdao result page: the
// inner text of every <li> inside <ul id="translateResult">, joined by
// newlines and trimmed. It returns false when the container is missing. A
// container without items yields ("", true).
func ExtractResult(page string) (string, bool) {
	frag := resultContainer.FindString(page)
	if frag == "" {
		return "", false
	}
	nodes, err := html.ParseFragment(strings.NewReader(frag), bodyContext)
	if err != nil {
		return "", false
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li {
			lines = append(lines, innerText(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), true
}

func innerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
