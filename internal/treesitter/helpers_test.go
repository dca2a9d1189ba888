package treesitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xonecas/symtab/internal/symtab"
)

// writeFile creates name under dir with the given contents.
func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// loadSource loads a single TypeScript file holding src.
func loadSource(t *testing.T, src string) *Program {
	t.Helper()
	path := writeFile(t, t.TempDir(), "input.ts", src)
	prog, err := Load(context.Background(), []string{path}, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(prog.Close)
	return prog
}

// findNode returns the first node of class whose name resolves to name.
func findNode(t *testing.T, prog *Program, class symtab.Class, name string) symtab.SyntaxNode {
	t.Helper()
	checker := prog.Checker()
	var found symtab.SyntaxNode
	var walk func(n symtab.SyntaxNode)
	walk = func(n symtab.SyntaxNode) {
		if found != nil {
			return
		}
		if n.Class() == class {
			if got, err := checker.SymbolName(n); err == nil && got == name {
				found = n
				return
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	for _, f := range prog.Files() {
		walk(f.Root)
	}
	if found == nil {
		t.Fatalf("no %v node named %q", class, name)
	}
	return found
}
