package symtab

import "strings"

// PathSep joins scope path elements. It cannot occur in an identifier.
const PathSep = "."

// Path is the chain of container names from the root to a point in the
// tree. Paths are values: Enter never modifies its receiver.
type Path []string

// Enter returns a new path with name appended. The result never shares
// its backing array with p, so sibling subtrees cannot observe each
// other's scopes.
func (p Path) Enter(name string) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, name)
}

// Key returns the path joined with PathSep. The root path's key is "".
func (p Path) Key() string {
	return strings.Join(p, PathSep)
}

// Scope is the traversal context handed down the recursion by value.
// Path is always set; node is the enclosing container in the tree layout.
type Scope struct {
	Path Path
	node *Node
}

// Container returns the enclosing tree node, or nil for the flat layout.
func (s Scope) Container() *Node { return s.node }
