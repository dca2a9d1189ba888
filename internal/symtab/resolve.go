package symtab

import "errors"

var (
	// ErrNoName reports a node that does not introduce a named symbol.
	ErrNoName = errors.New("symtab: node has no symbol name")
	// ErrNoType reports a node whose static type cannot be resolved.
	ErrNoType = errors.New("symtab: type not resolvable")
	// ErrNoScope reports an append to a scope key that was never created.
	ErrNoScope = errors.New("symtab: scope not found")
)

// Class is the syntactic classification of a node.
type Class int

const (
	ClassOther Class = iota
	ClassFunction
	ClassClass
	ClassVariable
	ClassParameter
)

// SyntaxNode is a syntax tree node as the walker needs it.
type SyntaxNode interface {
	Class() Class
	// Parameters lists the parameter nodes of a function-like node.
	Parameters() []SyntaxNode
	// Initializer returns the source text of a variable's initializer.
	Initializer() (string, bool)
	Children() []SyntaxNode
	Line() int
}

// Resolver answers name and type queries against a loaded program.
// Implementations must not panic on nodes they cannot resolve; they
// return an error wrapping ErrNoName or ErrNoType instead.
type Resolver interface {
	SymbolName(n SyntaxNode) (string, error)
	Type(n SyntaxNode) (string, error)
}

// File is one syntax tree handed to the walker.
type File struct {
	Path string
	Root SyntaxNode
	// Skip excludes declaration-only and generated files from the walk.
	Skip bool
}
