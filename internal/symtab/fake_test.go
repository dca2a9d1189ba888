package symtab

import "fmt"

// fakeNode is an in-memory syntax node. An empty name or type makes the
// corresponding resolution fail.
type fakeNode struct {
	class    Class
	name     string
	typ      string
	init     string
	line     int
	params   []*fakeNode
	children []*fakeNode
}

func (n *fakeNode) Class() Class { return n.class }
func (n *fakeNode) Line() int    { return n.line }

func (n *fakeNode) Parameters() []SyntaxNode {
	out := make([]SyntaxNode, len(n.params))
	for i, p := range n.params {
		out[i] = p
	}
	return out
}

func (n *fakeNode) Initializer() (string, bool) {
	return n.init, n.init != ""
}

// Children mirrors a real tree: parameters come before the body.
func (n *fakeNode) Children() []SyntaxNode {
	out := make([]SyntaxNode, 0, len(n.params)+len(n.children))
	for _, p := range n.params {
		out = append(out, p)
	}
	for _, c := range n.children {
		out = append(out, c)
	}
	return out
}

type fakeResolver struct{}

func (fakeResolver) SymbolName(n SyntaxNode) (string, error) {
	f := n.(*fakeNode)
	if f.name == "" {
		return "", fmt.Errorf("line %d: %w", f.line, ErrNoName)
	}
	return f.name, nil
}

func (fakeResolver) Type(n SyntaxNode) (string, error) {
	f := n.(*fakeNode)
	if f.typ == "" {
		return "", fmt.Errorf("%s: %w", f.name, ErrNoType)
	}
	return f.typ, nil
}

func program(children ...*fakeNode) *fakeNode {
	return &fakeNode{class: ClassOther, children: children}
}

func block(children ...*fakeNode) *fakeNode {
	return &fakeNode{class: ClassOther, children: children}
}

func fn(name string, params []*fakeNode, body ...*fakeNode) *fakeNode {
	return &fakeNode{class: ClassFunction, name: name, params: params, children: body}
}

func class(name string, body ...*fakeNode) *fakeNode {
	return &fakeNode{class: ClassClass, name: name, children: body}
}

func variable(name, typ, init string) *fakeNode {
	return &fakeNode{class: ClassVariable, name: name, typ: typ, init: init}
}

func param(name, typ string) *fakeNode {
	return &fakeNode{class: ClassParameter, name: name, typ: typ}
}

func params(ps ...*fakeNode) []*fakeNode { return ps }

func files(roots ...*fakeNode) []File {
	out := make([]File, len(roots))
	for i, r := range roots {
		out[i] = File{Path: fmt.Sprintf("file%d.ts", i), Root: r}
	}
	return out
}
