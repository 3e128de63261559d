package render

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// Node is one element of a rendered tree. A node with an empty Tag is a bare
// text node.
type Node struct {
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

func el(tag string, attrs map[string]string, children ...*Node) *Node {
	kept := children[:0:0]
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Node{Tag: tag, Attrs: attrs, Children: kept}
}

func text(tag, s string, attrs map[string]string) *Node {
	return &Node{Tag: tag, Attrs: attrs, Text: s}
}

func class(name string) map[string]string {
	return map[string]string{"class": name}
}

// Find returns the first node in n's subtree whose class attribute contains
// name, or nil.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range strings.Fields(n.Attrs["class"]) {
		if c == name {
			return n
		}
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node in n's subtree whose class contains name.
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range strings.Fields(n.Attrs["class"]) {
		if c == name {
			out = append(out, n)
			break
		}
	}
	for _, child := range n.Children {
		out = append(out, child.FindAll(name)...)
	}
	return out
}

var voidTags = map[string]bool{"img": true, "br": true, "hr": true}

// HTML renders nodes as escaped HTML.
func HTML(nodes ...*Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, n := range nodes {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeNode(w, n); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeNode(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	var sb strings.Builder
	if n.Tag == "" {
		sb.WriteString(templ.EscapeString(n.Text))
		_, err := io.WriteString(w, sb.String())
		return err
	}
	sb.WriteString("<")
	sb.WriteString(n.Tag)
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(templ.EscapeString(n.Attrs[k]))
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	if voidTags[n.Tag] {
		_, err := io.WriteString(w, sb.String())
		return err
	}
	sb.WriteString(templ.EscapeString(n.Text))
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := writeNode(w, c); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+n.Tag+">")
	return err
}
