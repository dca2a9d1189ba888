package treesitter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude selects the TypeScript sources of a directory.
var DefaultInclude = []string{"**/*.ts", "**/*.tsx", "**/*.mts", "**/*.cts"}

// DefaultExclude skips dependency trees.
var DefaultExclude = []string{"**/node_modules/**"}

// Expand turns the command-line inputs into an ordered file list. File
// arguments are kept in place; directory arguments are replaced by the
// files below them that match include and none of exclude, in lexical
// order. Paths inside .git are never returned.
func Expand(inputs, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, pattern := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	var out []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", in, err)
		}
		if !info.IsDir() {
			out = append(out, in)
			continue
		}
		files, err := expandDir(in, include, exclude)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func expandDir(root string, include, exclude []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if rel != "." && matchAny(exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if matchAny(exclude, rel) || !matchAny(include, rel) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", root, err)
	}
	return out, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
