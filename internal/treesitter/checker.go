package treesitter

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/symtab/internal/symtab"
)

// defaultMaxDepth bounds chains of reference lookups during inference.
const defaultMaxDepth = 16

// Checker resolves symbol names and static types over parsed trees.
// It never modifies the trees and is safe to share between walks.
// Inferred types are memoized per declaration, so each declaration is
// typed at most once however often it is referenced.
type Checker struct {
	maxDepth int

	mu   sync.Mutex
	memo map[memoKey]*memoEntry
}

// memoKey identifies a declaration node. ret selects the return type of
// a function-like node rather than the type of the declaration itself.
type memoKey struct {
	file       *SourceFile
	start, end uint32
	nodeType   string
	ret        bool
}

type memoEntry struct {
	typ  string
	err  error
	done bool // false while the entry is being computed
}

// NewChecker returns a checker with the default lookup depth.
func NewChecker() *Checker {
	return &Checker{
		maxDepth: defaultMaxDepth,
		memo:     make(map[memoKey]*memoEntry),
	}
}

// Cached returns the number of memoized declaration types.
func (c *Checker) Cached() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.memo)
}

func (c *Checker) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.memo)
}

// SymbolName implements symtab.Resolver.
func (c *Checker) SymbolName(sn symtab.SyntaxNode) (string, error) {
	x, ok := sn.(*Node)
	if !ok {
		return "", fmt.Errorf("foreign node %T: %w", sn, symtab.ErrNoName)
	}
	n, src := x.n, x.file.Src

	switch n.Type() {
	case "function_declaration", "generator_function_declaration", "function_signature",
		"class_declaration", "abstract_class_declaration", "method_definition":
		return declaredName(n, src)
	case "variable_declarator":
		return bindingName(n.ChildByFieldName("name"), src)
	case "required_parameter", "optional_parameter":
		return bindingName(n.ChildByFieldName("pattern"), src)
	case "identifier", "rest_pattern":
		return bindingName(n, src)
	case "assignment_pattern":
		return bindingName(n.ChildByFieldName("left"), src)
	}
	return "", fmt.Errorf("%s at line %d: %w", n.Type(), line(n), symtab.ErrNoName)
}

// Type implements symtab.Resolver.
func (c *Checker) Type(sn symtab.SyntaxNode) (string, error) {
	x, ok := sn.(*Node)
	if !ok {
		return "", fmt.Errorf("foreign node %T: %w", sn, symtab.ErrNoType)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	in := &inference{src: x.file.Src, file: x.file, maxDepth: c.maxDepth, memo: c.memo}
	return in.declType(x.n, 0)
}

// declaredName returns the name of a function, class or method.
func declaredName(n *sitter.Node, src []byte) (string, error) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return "", fmt.Errorf("anonymous %s at line %d: %w", n.Type(), line(n), symtab.ErrNoName)
	}
	switch name.Type() {
	case "identifier", "type_identifier", "property_identifier", "private_property_identifier":
		return content(name, src), nil
	case "string":
		return strings.Trim(content(name, src), `"'`), nil
	case "number":
		return content(name, src), nil
	}
	return "", fmt.Errorf("computed name at line %d: %w", line(name), symtab.ErrNoName)
}

// bindingName returns the identifier bound by a declaration pattern.
// Destructuring patterns introduce several names and do not resolve.
func bindingName(pattern *sitter.Node, src []byte) (string, error) {
	if pattern == nil {
		return "", symtab.ErrNoName
	}
	switch pattern.Type() {
	case "identifier":
		return content(pattern, src), nil
	case "rest_pattern":
		if inner := pattern.NamedChild(0); inner != nil && inner.Type() == "identifier" {
			return content(inner, src), nil
		}
	}
	return "", fmt.Errorf("%s pattern at line %d: %w", pattern.Type(), line(pattern), symtab.ErrNoName)
}

// lookup finds the declaration that name refers to at ref by walking
// outward through the enclosing lexical scopes.
func lookup(ref *sitter.Node, name string, src []byte) *sitter.Node {
	for p := ref.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "statement_block", "program", "class_static_block", "switch_case", "switch_default":
			if d := findDeclaration(p, name, src); d != nil {
				return d
			}
		case "for_statement", "for_in_statement":
			if d := findDeclaration(p, name, src); d != nil {
				return d
			}
		case "catch_clause":
			if param := p.ChildByFieldName("parameter"); param != nil &&
				param.Type() == "identifier" && content(param, src) == name {
				return param
			}
		}
		if isFunctionLike(p) {
			if d := findParameter(p, name, src); d != nil {
				return d
			}
		}
	}
	return nil
}

// findDeclaration scans the direct children of a scope node.
func findDeclaration(scope *sitter.Node, name string, src []byte) *sitter.Node {
	for i := 0; i < int(scope.NamedChildCount()); i++ {
		if d := declares(scope.NamedChild(i), name, src); d != nil {
			return d
		}
	}
	return nil
}

// declares returns the node in stmt that declares name, if any.
func declares(stmt *sitter.Node, name string, src []byte) *sitter.Node {
	switch stmt.Type() {
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(stmt.NamedChildCount()); i++ {
			d := stmt.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			if id := d.ChildByFieldName("name"); id != nil && id.Type() == "identifier" && content(id, src) == name {
				return d
			}
		}
	case "function_declaration", "generator_function_declaration",
		"class_declaration", "abstract_class_declaration", "enum_declaration":
		if id := stmt.ChildByFieldName("name"); id != nil && content(id, src) == name {
			return stmt
		}
	case "export_statement":
		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			return declares(decl, name, src)
		}
	}
	return nil
}

// findParameter returns the parameter node of fn that binds name.
func findParameter(fn *sitter.Node, name string, src []byte) *sitter.Node {
	if single := fn.ChildByFieldName("parameter"); single != nil {
		if single.Type() == "identifier" && content(single, src) == name {
			return single
		}
		return nil
	}
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		var pattern *sitter.Node
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			pattern = p.ChildByFieldName("pattern")
		case "assignment_pattern":
			pattern = p.ChildByFieldName("left")
		default:
			pattern = p
		}
		if got, err := bindingName(pattern, src); err == nil && got == name {
			return p
		}
	}
	return nil
}

func isFunctionLike(n *sitter.Node) bool {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration", "function_signature",
		"function_expression", "function", "generator_function",
		"arrow_function", "method_definition":
		return true
	}
	return false
}
