// Package document reads HTML pages and finds, resolves and rewrites their loader elements.
package document

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page.
// Mutations and rendering are serialized so concurrent loads may rewrite their elements.
type Document struct {
	mu      sync.Mutex
	root    *html.Node
	pageURL *url.URL
}

// Element is a script element of a Document.
type Element struct {
	node *html.Node
}

// Parse reads an HTML document. pageURL is the location hrefs are resolved against; it may be nil.
func Parse(r io.Reader, pageURL *url.URL) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentParseFailed, err)
	}
	return &Document{root: root, pageURL: pageURL}, nil
}

// PageURL returns the location of the page.
func (d *Document) PageURL() *url.URL {
	return d.pageURL
}

// LoaderElements returns the script elements whose src path ends in loaderPath, in document order.
func (d *Document) LoaderElements(loaderPath string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*Element
	for n := range d.root.Descendants() {
		if !isScript(n) {
			continue
		}
		src, ok := attr(n, "src")
		if !ok {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(src))
		if err != nil {
			continue
		}
		if strings.HasSuffix(u.Path, loaderPath) {
			out = append(out, &Element{node: n})
		}
	}
	return out
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := html.Render(w, d.root); err != nil {
		return zerr.Wrap(err, "failed to render document")
	}
	return nil
}

// String renders the document to a string.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	return attr(e.node, name)
}

// Has reports whether the named attribute is present, whatever its value.
func (e *Element) Has(name string) bool {
	_, ok := attr(e.node, name)
	return ok
}

// Label identifies the element in logs.
func (e *Element) Label() string {
	if href, ok := e.Attr("href"); ok && href != "" {
		return href
	}
	src, _ := e.Attr("src")
	return "<script src=" + src + ">"
}

func isScript(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Script
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func scriptType(n *html.Node) string {
	t, _ := attr(n, "type")
	return strings.ToLower(strings.TrimSpace(t))
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
