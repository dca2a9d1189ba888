package symtab

import "fmt"

// Layout selects the shape of the assembled document.
type Layout string

const (
	LayoutTree Layout = "tree"
	LayoutFlat Layout = "flat"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case LayoutTree, LayoutFlat:
		return l, nil
	}
	return "", fmt.Errorf("unknown layout %q", s)
}

// Document is an assembled symbol table ready for serialization.
type Document interface {
	Layout() Layout
}

// Node is one symbol in the nested variant together with the symbols
// declared inside it.
type Node struct {
	Record
	Children []*Node
}

// NewRoot returns the empty root of a tree document.
func NewRoot() *Node {
	return &Node{Record: Record{Name: "root", Kind: KindRoot}}
}

// Layout implements Document.
func (n *Node) Layout() Layout { return LayoutTree }

// Append adds rec as the last child of n and returns the new child.
func (n *Node) Append(rec Record) *Node {
	child := &Node{Record: rec}
	n.Children = append(n.Children, child)
	return child
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Count returns the number of symbols below n, excluding n itself.
func (n *Node) Count() int {
	total := 0
	for _, c := range n.Children {
		total += 1 + c.Count()
	}
	return total
}

// wireNode is the serialized form. Containers always carry a children
// list, leaves never do.
type wireNode struct {
	Name        string   `json:"name" yaml:"name"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Initializer string   `json:"initializer,omitempty" yaml:"initializer,omitempty"`
	Children    *[]*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

func (n *Node) wire() wireNode {
	w := wireNode{
		Name:        n.Name,
		Kind:        n.Kind,
		Type:        n.Type,
		Initializer: n.Initializer,
	}
	if n.Kind.Container() {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		w.Children = &children
	}
	return w
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	return marshalJSON(n.wire())
}

// MarshalYAML implements yaml.Marshaler.
func (n *Node) MarshalYAML() (any, error) {
	return n.wire(), nil
}
