// Package extract runs one symbol table build: load the program, walk
// every file, and hand back the assembled document.
package extract

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/symtab/internal/symtab"
	"github.com/xonecas/symtab/internal/treesitter"
)

// Request describes one build.
type Request struct {
	Inputs   []string // files or directories, in order
	Include  []string // globs applied inside directory inputs
	Exclude  []string
	Compiler treesitter.Options
	Layout   symtab.Layout
}

// Result is the outcome of a build.
type Result struct {
	Document symtab.Document
	Stats    symtab.Stats
	Files    []string // files loaded, in walk order
}

// Run builds the symbol table for req. Only failures to construct the
// program are returned; per-symbol resolution problems degrade the output.
func Run(ctx context.Context, req Request) (*Result, error) {
	paths, err := treesitter.Expand(req.Inputs, req.Include, req.Exclude)
	if err != nil {
		return nil, err
	}

	prog, err := treesitter.Load(ctx, paths, req.Compiler)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	defer prog.Close()

	walker := symtab.NewWalker(prog.Checker(), symtab.NewAssembler(req.Layout))
	doc := walker.Walk(prog.Files())
	stats := walker.Stats()

	log.Info().
		Int("files", stats.Files).
		Int("skipped", stats.Skipped).
		Int("symbols", stats.Symbols).
		Int("unnamed", stats.Unnamed).
		Int("untyped", stats.Unresolved).
		Int("entries", documentSize(doc)).
		Str("layout", string(doc.Layout())).
		Msg("symbol table built")

	files := make([]string, 0, len(prog.Sources()))
	for _, sf := range prog.Sources() {
		files = append(files, sf.Path)
	}
	return &Result{Document: doc, Stats: stats, Files: files}, nil
}

// documentSize counts symbols in a tree or scope keys in a table.
func documentSize(doc symtab.Document) int {
	switch d := doc.(type) {
	case *symtab.Node:
		return d.Count()
	case *symtab.Table:
		return d.Len()
	}
	return 0
}
