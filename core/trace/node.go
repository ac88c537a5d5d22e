package trace

import "io"

// Node is one element of a parsed simulation log.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
}

// Attr returns the attribute value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// FindAll returns the direct children called name, in document order.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// DocumentParser turns raw log markup into a Node tree.
type DocumentParser interface {
	Parse(r io.Reader) (*Node, error)
}
