// Package symtab builds hierarchical symbol tables from syntax trees.
//
// The walker visits each file depth-first, asks a Resolver for names and
// types, and feeds the resulting records to an Assembler that produces
// either a nested tree (Node) or a flat scope-keyed mapping (Table).
package symtab

// Kind classifies a recorded symbol.
type Kind string

const (
	KindRoot      Kind = "root"
	KindFunction  Kind = "Function"
	KindClass     Kind = "Class"
	KindVariable  Kind = "Variable"
	KindParameter Kind = "Parameter"
)

// Container reports whether symbols of this kind own a child scope.
func (k Kind) Container() bool {
	switch k {
	case KindRoot, KindFunction, KindClass:
		return true
	default:
		return false
	}
}

func (k Kind) String() string { return string(k) }
