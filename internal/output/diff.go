package output

import (
	"fmt"
	"os"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Diff returns a unified diff between two serialized symbol tables, or ""
// when they are identical.
func Diff(oldPath, newPath string) (string, error) {
	a, err := os.ReadFile(oldPath) //nolint:gosec // paths come from the command line
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(newPath) //nolint:gosec // paths come from the command line
	if err != nil {
		return "", err
	}
	return DiffText(oldPath, newPath, string(a), string(b)), nil
}

// DiffText returns a unified diff of two texts labelled oldName and newName.
func DiffText(oldName, newName, a, b string) string {
	if a == b {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(oldName), a, b)
	return fmt.Sprint(gotextdiff.ToUnified(oldName, newName, a, edits))
}
