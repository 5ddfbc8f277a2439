package dashboard

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/sodam/backend/internal/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element ids the dashboard reads and renders into
const (
	IDScoreButton  = "btnScore"
	IDSampleButton = "btnSample"
	IDOut          = "out"
	IDKPI          = "kpi"
	IDTable        = "tbl"
)

//go:embed web/index.html
var indexHTML []byte

// Page is a parsed dashboard document. It is not safe for concurrent use;
// Controller serialises access.
type Page struct {
	doc *html.Node
}

// NewPage parses the embedded dashboard page
func NewPage() (*Page, error) {
	return ParsePage(bytes.NewReader(indexHTML))
}

// ParsePage parses an HTML document
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

// Element finds an element by id
func (p *Page) Element(id string) (*html.Node, error) {
	if n := findNode(p.doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && getAttr(n, "id") == id
	}); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: #%s", domain.ErrElementNotFound, id)
}

// Value returns the value attribute of an element. ok is false when the
// element does not exist.
func (p *Page) Value(id string) (value string, ok bool) {
	n, err := p.Element(id)
	if err != nil {
		return "", false
	}
	return getAttr(n, "value"), true
}

// SetValue sets the value attribute of an element
func (p *Page) SetValue(id, value string) error {
	n, err := p.Element(id)
	if err != nil {
		return err
	}
	setAttr(n, "value", value)
	return nil
}

// InnerHTML renders the children of an element
func (p *Page) InnerHTML(id string) (string, error) {
	n, err := p.Element(id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Text returns the text content of an element
func (p *Page) Text(id string) (string, error) {
	n, err := p.Element(id)
	if err != nil {
		return "", err
	}
	return textContent(n), nil
}

// Render writes the whole document
func (p *Page) Render(w io.Writer) error {
	return html.Render(w, p.doc)
}

// tableBody finds the tbody of the table with the given id
func (p *Page) tableBody(id string) (*html.Node, error) {
	tbl, err := p.Element(id)
	if err != nil {
		return nil, err
	}
	if body := findNode(tbl, func(n *html.Node) bool { return n.DataAtom == atom.Tbody }); body != nil {
		return body, nil
	}
	return nil, fmt.Errorf("%w: #%s tbody", domain.ErrElementNotFound, id)
}

func findNode(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := findNode(c, match); n != nil {
			return n
		}
	}
	return nil
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func textContent(n *html.Node) string {
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

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// replaceChildren swaps all children of n for kids
func replaceChildren(n *html.Node, kids ...*html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	for _, k := range kids {
		n.AppendChild(k)
	}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func class(name string) html.Attribute {
	return html.Attribute{Key: "class", Val: name}
}

func withChildren(n *html.Node, kids ...*html.Node) *html.Node {
	for _, k := range kids {
		n.AppendChild(k)
	}
	return n
}
