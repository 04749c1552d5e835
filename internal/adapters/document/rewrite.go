package document

import (
	"encoding/json"
	"regexp"

	"go.trai.ch/xs/internal/core/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// scriptEnd matches the sequences that end or disturb raw script text in any letter case.
var scriptEnd = regexp.MustCompile(`(?i)</script|<!--`)

// ReplaceWithDiagnostic replaces el with an inline module reporting msg on the console.
func (d *Document) ReplaceWithDiagnostic(el *Element, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// json.Marshal of a string cannot fail.
	quoted, _ := json.Marshal(msg)
	code := `console.error("` + domain.DiagnosticPrefix + ` error:", ` + string(quoted) + `)`

	parent := el.node.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(moduleScript(code), el.node)
	parent.RemoveChild(el.node)
}

// InjectModule appends an inline module holding the annotated code to the head and removes el.
func (d *Document) InjectModule(el *Element, module domain.Module) {
	d.mu.Lock()
	defer d.mu.Unlock()

	code := escapeScript(module.Annotated())
	d.head().AppendChild(moduleScript(code))

	if el != nil && el.node.Parent != nil {
		el.node.Parent.RemoveChild(el.node)
	}
}

func (d *Document) head() *html.Node {
	for n := range d.root.Descendants() {
		if n.Type == html.ElementNode && n.DataAtom == atom.Head {
			return n
		}
	}
	return d.root
}

func moduleScript(code string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr:     []html.Attribute{{Key: "type", Val: "module"}},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: code})
	return n
}

// escapeScript keeps code inside its script element. The inserted backslash is
// a no-op escape in JavaScript string and regexp literals.
func escapeScript(code string) string {
	return scriptEnd.ReplaceAllStringFunc(code, func(m string) string {
		return m[:1] + `\` + m[1:]
	})
}
