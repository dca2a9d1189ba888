package highlight

import (
	"path/filepath"
	"strings"
)

// DetectLanguage returns the Chroma language for a source file. Initializer
// text from JavaScript-family files is highlighted with its own lexer.
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return "typescript"
	case ".tsx":
		return "tsx"
	case ".js", ".mjs", ".cjs":
		return "javascript"
	case ".jsx":
		return "jsx"
	}
	return "text"
}
