package renderer

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement creates a detached element node.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// GetAttr returns the value of the named attribute.
func GetAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing any existing value.
func SetAttr(n *html.Node, name, value string) {
	name = strings.ToLower(name)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	value, _ := GetAttr(n, "class")
	return strings.Fields(value)
}

// HasClass reports whether the element carries class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends class to the element's class list unless present.
func AddClass(n *html.Node, class string) {
	if class == "" || HasClass(n, class) {
		return
	}
	SetAttr(n, "class", strings.Join(append(Classes(n), class), " "))
}

// RemoveClass drops class from the element's class list.
func RemoveClass(n *html.Node, class string) {
	classes := Classes(n)
	kept := classes[:0]
	for _, c := range classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// TextContent concatenates the text of n and its descendants.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

// AppendHTML parses markup as a fragment in the context of parent and
// appends the resulting nodes. Markup the parser rejects is appended as text.
func AppendHTML(parent *html.Node, markup string) {
	context := parent
	if context.Type != html.ElementNode {
		context = NewElement("div")
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		parent.AppendChild(NewText(markup))
		return
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
}

// QuerySelector returns the first descendant of root matching a simple
// selector: ".class", "#id" or a tag name.
func QuerySelector(root *html.Node, selector string) *html.Node {
	var found *html.Node
	walkElements(root, func(n *html.Node) bool {
		if matchesSimple(n, selector) {
			found = n
			return false
		}
		return true
	})
	return found
}

// QuerySelectorAll returns every descendant of root matching a simple
// selector, in document order.
func QuerySelectorAll(root *html.Node, selector string) []*html.Node {
	var found []*html.Node
	walkElements(root, func(n *html.Node) bool {
		if matchesSimple(n, selector) {
			found = append(found, n)
		}
		return true
	})
	return found
}

// walkElements visits descendant elements depth first until visit returns
// false.
func walkElements(root *html.Node, visit func(*html.Node) bool) bool {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !visit(c) {
			return false
		}
		if !walkElements(c, visit) {
			return false
		}
	}
	return true
}

func matchesSimple(n *html.Node, selector string) bool {
	selector = strings.TrimSpace(selector)
	switch {
	case selector == "":
		return false
	case strings.HasPrefix(selector, "."):
		return HasClass(n, selector[1:])
	case strings.HasPrefix(selector, "#"):
		id, ok := GetAttr(n, "id")
		return ok && id == selector[1:]
	default:
		return strings.EqualFold(n.Data, selector)
	}
}
