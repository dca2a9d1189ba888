// Package treesitter loads TypeScript and JavaScript programs with
// tree-sitter and resolves symbol names and types over the parsed trees.
package treesitter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrUnsupported is returned for files without a known grammar.
var ErrUnsupported = errors.New("unsupported file type")

// language describes how a file extension is parsed.
type language struct {
	name    string // chroma / display name
	grammar func() *sitter.Language
	js      bool // requires Options.AllowJS
	jsx     bool // requires Options.JSX
}

var (
	langTypeScript = language{name: "typescript", grammar: typescript.GetLanguage}
	langTSX        = language{name: "tsx", grammar: tsx.GetLanguage, jsx: true}
	langJavaScript = language{name: "javascript", grammar: javascript.GetLanguage, js: true}
	langJSX        = language{name: "jsx", grammar: javascript.GetLanguage, js: true, jsx: true}
)

// langForPath returns the grammar for a file path.
func langForPath(path string) (language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return langTypeScript, true
	case ".tsx":
		return langTSX, true
	case ".js", ".mjs", ".cjs":
		return langJavaScript, true
	case ".jsx":
		return langJSX, true
	default:
		return language{}, false
	}
}

// IsDeclarationFile reports whether path holds only ambient declarations.
func IsDeclarationFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// ParseSource parses src with the grammar selected by path's extension.
// The caller owns the returned tree and must Close it.
func ParseSource(ctx context.Context, path string, src []byte) (*sitter.Tree, error) {
	lang, ok := langForPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.grammar())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tree, nil
}

// helpers

func content(node *sitter.Node, src []byte) string {
	return node.Content(src)
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1 // 1-indexed
}
