package shred

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// Fragment is the clean text of one markup document.
type Fragment struct {
	Text string
	// Title is the text of the first h1-h3 outside any noise element, with
	// whitespace runs collapsed. Empty when HasTitle is false.
	Title    string
	HasTitle bool
}

// noiseTags are elements that never carry prose.
var noiseTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Nav:    true,
	atom.Header: true,
	atom.Footer: true,
}

// noiseRoles are the ARIA landmark roles equivalent to nav, header and footer.
var noiseRoles = map[string]bool{
	"navigation":  true,
	"banner":      true,
	"contentinfo": true,
	"doc-toc":     true,
}

// FilterNoise parses one XHTML/HTML document and returns its prose text and
// a title guess. The parsed tree is read, never modified: noise subtrees are
// skipped during the walk. Unparseable input yields an empty Fragment and the
// parse error.
func FilterNoise(markup []byte) (Fragment, error) {
	doc, err := parseMarkup(markup)
	if err != nil {
		return Fragment{}, err
	}

	var frag Fragment
	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isNoise(n) {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if out.Len() > 0 {
					out.WriteByte(' ')
				}
				out.WriteString(t)
			}
			return
		}
		if !frag.HasTitle && isHeading(n) {
			// Image-only headings do not count.
			if t := strings.Join(strings.Fields(textContent(n)), " "); t != "" {
				frag.Title = t
				frag.HasTitle = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	frag.Text = out.String()
	return frag, nil
}

func parseMarkup(markup []byte) (*html.Node, error) {
	var r io.Reader = bytes.NewReader(markup)
	// EPUB items are UTF-8 unless they declare a legacy encoding.
	if !utf8.Valid(markup) {
		if cr, err := charset.NewReader(bytes.NewReader(markup), "text/html"); err == nil {
			r = cr
		}
	}
	return html.Parse(r)
}

func isNoise(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if noiseTags[n.DataAtom] {
		return true
	}
	for _, a := range n.Attr {
		if a.Key == "role" && noiseRoles[strings.ToLower(strings.TrimSpace(a.Val))] {
			return true
		}
	}
	return false
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3:
		return true
	}
	return false
}

// textContent concatenates the text below n without separators, skipping
// noise subtrees.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isNoise(n) {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
