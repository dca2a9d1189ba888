package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/symtab/internal/symtab"
)

// Node adapts a tree-sitter node to symtab.SyntaxNode.
type Node struct {
	n    *sitter.Node
	file *SourceFile
}

func wrap(n *sitter.Node, file *SourceFile) *Node {
	return &Node{n: n, file: file}
}

func (x *Node) Line() int { return line(x.n) }

// Class implements symtab.SyntaxNode.
func (x *Node) Class() symtab.Class {
	switch x.n.Type() {
	case "function_declaration", "generator_function_declaration",
		"function_signature", "method_definition":
		return symtab.ClassFunction
	case "class_declaration", "abstract_class_declaration":
		return symtab.ClassClass
	case "variable_declarator":
		return symtab.ClassVariable
	case "required_parameter", "optional_parameter":
		return symtab.ClassParameter
	case "identifier":
		// Plain JavaScript parameter lists hold bare patterns.
		if p := x.n.Parent(); p != nil && p.Type() == "formal_parameters" {
			return symtab.ClassParameter
		}
	}
	return symtab.ClassOther
}

// Parameters implements symtab.SyntaxNode.
func (x *Node) Parameters() []symtab.SyntaxNode {
	list := x.n.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}
	var out []symtab.SyntaxNode
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		if p.Type() == "comment" {
			continue
		}
		out = append(out, wrap(p, x.file))
	}
	return out
}

// Initializer implements symtab.SyntaxNode.
func (x *Node) Initializer() (string, bool) {
	if x.n.Type() != "variable_declarator" {
		return "", false
	}
	value := x.n.ChildByFieldName("value")
	if value == nil {
		return "", false
	}
	return content(value, x.file.Src), true
}

// Children implements symtab.SyntaxNode. Only named children are
// returned; anonymous tokens never declare symbols.
func (x *Node) Children() []symtab.SyntaxNode {
	count := int(x.n.NamedChildCount())
	out := make([]symtab.SyntaxNode, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, wrap(x.n.NamedChild(i), x.file))
	}
	return out
}
