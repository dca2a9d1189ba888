package symtab

import "github.com/rs/zerolog/log"

// Stats summarizes one walk.
type Stats struct {
	Files      int // files walked
	Skipped    int // files excluded from the walk
	Symbols    int // records emitted
	Unnamed    int // candidate nodes whose name did not resolve
	Unresolved int // records emitted without a type
}

// Walker visits syntax trees and reports symbols to an Assembler.
type Walker struct {
	resolver Resolver
	asm      Assembler
	stats    Stats
}

// NewWalker returns a walker that resolves through r and assembles into asm.
func NewWalker(r Resolver, asm Assembler) *Walker {
	return &Walker{resolver: r, asm: asm}
}

// Walk visits files in order and returns the assembled document.
func (w *Walker) Walk(files []File) Document {
	root := w.asm.Root()
	for _, f := range files {
		if f.Skip || f.Root == nil {
			w.stats.Skipped++
			log.Debug().Str("file", f.Path).Msg("skipping file")
			continue
		}
		w.stats.Files++
		w.visit(f.Root, root, f.Path)
	}
	return w.asm.Document()
}

// Stats returns the counters accumulated so far.
func (w *Walker) Stats() Stats { return w.stats }

// visit handles one node and recurses into its children. scope is a
// value: any new scope opened here is only seen by this node's subtree.
func (w *Walker) visit(n SyntaxNode, scope Scope, file string) {
	switch class := n.Class(); class {
	case ClassFunction, ClassClass:
		name, err := w.resolver.SymbolName(n)
		if err != nil {
			w.stats.Unnamed++
			break
		}
		kind := KindClass
		if class == ClassFunction {
			kind = KindFunction
		}
		scope = w.asm.Enter(scope, w.record(name, kind, n, file))
		w.stats.Symbols++
		if class == ClassFunction {
			w.parameters(n, scope, file)
		}

	case ClassVariable:
		name, err := w.resolver.SymbolName(n)
		if err != nil {
			w.stats.Unnamed++
			break
		}
		rec := w.record(name, KindVariable, n, file)
		rec.setType(w.resolver.Type(n))
		rec.setInitializer(n.Initializer())
		w.add(scope, rec)
	}

	for _, child := range n.Children() {
		w.visit(child, scope, file)
	}
}

// parameters records each resolvable parameter of fn inside fn's scope.
// A parameter that fails to resolve is skipped on its own.
func (w *Walker) parameters(fn SyntaxNode, scope Scope, file string) {
	for _, p := range fn.Parameters() {
		name, err := w.resolver.SymbolName(p)
		if err != nil {
			w.stats.Unnamed++
			continue
		}
		rec := w.record(name, KindParameter, p, file)
		rec.setType(w.resolver.Type(p))
		w.add(scope, rec)
	}
}

func (w *Walker) add(scope Scope, rec Record) {
	if rec.Type == "" {
		w.stats.Unresolved++
	}
	w.asm.Add(scope, rec)
	w.stats.Symbols++
}

func (w *Walker) record(name string, kind Kind, n SyntaxNode, file string) Record {
	return Record{Name: name, Kind: kind, File: file, Line: n.Line()}
}
