package symtab

import "github.com/rs/zerolog/log"

// Assembler turns walker events into an output document. Scopes are
// passed by value; an Assembler never mutates a Scope it was handed.
type Assembler interface {
	// Root returns the scope of the top level of every file.
	Root() Scope
	// Enter records a container in parent and returns the container's
	// own scope.
	Enter(parent Scope, rec Record) Scope
	// Add records a leaf symbol in scope.
	Add(scope Scope, rec Record)
	// Document returns the assembled output.
	Document() Document
}

// NewAssembler returns the assembler for layout.
func NewAssembler(layout Layout) Assembler {
	if layout == LayoutFlat {
		return NewFlatAssembler()
	}
	return NewTreeAssembler()
}

// TreeAssembler nests every symbol under its enclosing container.
type TreeAssembler struct {
	root *Node
}

func NewTreeAssembler() *TreeAssembler {
	return &TreeAssembler{root: NewRoot()}
}

func (a *TreeAssembler) Root() Scope {
	return Scope{Path: Path{}, node: a.root}
}

func (a *TreeAssembler) Enter(parent Scope, rec Record) Scope {
	child := parent.node.Append(rec)
	return Scope{Path: parent.Path.Enter(rec.Name), node: child}
}

func (a *TreeAssembler) Add(scope Scope, rec Record) {
	scope.node.Append(rec)
}

func (a *TreeAssembler) Document() Document { return a.root }

// FlatAssembler files every symbol under the dotted path of its scope.
// Containers sharing a path merge into one entry.
type FlatAssembler struct {
	table *Table
}

func NewFlatAssembler() *FlatAssembler {
	return &FlatAssembler{table: NewTable()}
}

func (a *FlatAssembler) Root() Scope {
	root := Path{}
	a.table.Ensure(root)
	return Scope{Path: root}
}

func (a *FlatAssembler) Enter(parent Scope, rec Record) Scope {
	a.Add(parent, rec)
	path := parent.Path.Enter(rec.Name)
	if !a.table.Ensure(path) {
		log.Debug().Str("scope", path.Key()).Msg("merging into existing scope")
	}
	return Scope{Path: path}
}

func (a *FlatAssembler) Add(scope Scope, rec Record) {
	if err := a.table.Append(scope.Path, rec); err != nil {
		log.Warn().Err(err).Msg("scope missing before append")
		a.table.Ensure(scope.Path)
		_ = a.table.Append(scope.Path, rec)
	}
}

func (a *FlatAssembler) Document() Document { return a.table }
