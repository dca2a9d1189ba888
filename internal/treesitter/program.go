package treesitter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/symtab/internal/symtab"
)

// generatedRe matches the conventional generated-code header.
var generatedRe = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// SourceFile is one parsed input of a Program.
type SourceFile struct {
	Path        string
	Src         []byte
	Tree        *sitter.Tree
	Language    string
	Declaration bool // .d.ts and friends
	Generated   bool // carries a generated-code header
}

// Skip reports whether the file is excluded from symbol extraction.
func (f *SourceFile) Skip() bool { return f.Declaration || f.Generated }

// Program is a set of parsed files loaded under one Options value.
type Program struct {
	opts    Options
	files   []*SourceFile
	checker *Checker
}

// Load reads and parses paths in order. Any unreadable, unsupported or
// disallowed input fails the whole load; no partial program is returned.
// A path listed twice is loaded once, at its first position.
func Load(ctx context.Context, paths []string, opts Options) (*Program, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid compiler options: %w", err)
	}
	opts.Target, _ = ParseTarget(string(opts.Target))
	opts.Module, _ = ParseModule(string(opts.Module))

	if len(paths) == 0 {
		return nil, errors.New("no input files")
	}

	p := &Program{opts: opts, checker: NewChecker()}
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		if seen[abs] {
			log.Debug().Str("file", path).Msg("duplicate input ignored")
			continue
		}
		seen[abs] = true

		sf, err := p.loadFile(ctx, path)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.files = append(p.files, sf)
	}

	log.Debug().
		Int("files", len(p.files)).
		Str("target", string(opts.Target)).
		Str("module", string(opts.Module)).
		Msg("program loaded")
	return p, nil
}

func (p *Program) loadFile(ctx context.Context, path string) (*SourceFile, error) {
	lang, ok := langForPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	if lang.js && !p.opts.AllowJS {
		return nil, fmt.Errorf("%s is a JavaScript file; enable allow_js to include it", path)
	}
	if lang.jsx && !p.opts.JSX {
		return nil, fmt.Errorf("%s contains JSX; enable jsx to include it", path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	tree, err := ParseSource(ctx, path, src)
	if err != nil {
		return nil, err
	}

	root := tree.RootNode()
	if root.HasError() {
		log.Warn().Str("file", path).Msg("syntax errors; symbols may be incomplete")
	}

	return &SourceFile{
		Path:        path,
		Src:         src,
		Tree:        tree,
		Language:    lang.name,
		Declaration: IsDeclarationFile(path),
		Generated:   isGenerated(root, src),
	}, nil
}

// isGenerated looks for a generated-code marker in the leading comments.
func isGenerated(root *sitter.Node, src []byte) bool {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "comment" {
			return false
		}
		text := content(child, src)
		if strings.Contains(text, "@generated") {
			return true
		}
		for _, l := range strings.Split(text, "\n") {
			if generatedRe.MatchString(strings.TrimSpace(l)) {
				return true
			}
		}
	}
	return false
}

// Options returns the canonicalized options the program was loaded with.
func (p *Program) Options() Options { return p.opts }

// Sources returns the parsed files in load order.
func (p *Program) Sources() []*SourceFile { return p.files }

// Files returns the syntax trees in load order for the walker.
func (p *Program) Files() []symtab.File {
	out := make([]symtab.File, 0, len(p.files))
	for _, sf := range p.files {
		out = append(out, symtab.File{
			Path: sf.Path,
			Root: wrap(sf.Tree.RootNode(), sf),
			Skip: sf.Skip(),
		})
	}
	return out
}

// Checker returns the program's resolver. Its type cache lives as long
// as the program.
func (p *Program) Checker() *Checker { return p.checker }

// Close releases the parsed trees.
func (p *Program) Close() {
	if p == nil {
		return
	}
	if p.checker != nil {
		p.checker.reset()
	}
	for _, sf := range p.files {
		if sf.Tree != nil {
			sf.Tree.Close()
			sf.Tree = nil
		}
	}
}
