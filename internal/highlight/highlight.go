// Package highlight colors source snippets for terminal output via Chroma.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultTheme is used when no theme is configured.
const DefaultTheme = "github-dark"

// Highlight returns an ANSI-highlighted version of text using the given
// Chroma language and theme. Unknown languages come back unchanged.
func Highlight(text, language, theme string) string {
	lex := lexers.Get(language)
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)
	sty := styles.Get(theme)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, sty, it); err != nil {
		return text
	}
	return strings.TrimRight(buf.String(), "\n")
}

// SplitLines splits a highlighted block into per-line strings, propagating
// ANSI style state across lines so each is independently renderable.
func SplitLines(block string) []string {
	lines := strings.Split(block, "\n")
	if len(lines) <= 1 {
		return lines
	}
	var active []string
	for i, line := range lines {
		if i > 0 && len(active) > 0 {
			lines[i] = strings.Join(active, "") + line
		}
		active = scanSGR(line, active)
	}
	return lines
}

// scanSGR scans a line for SGR escape sequences and updates the active
// sequence list. Resets clear the list; other SGRs are appended.
func scanSGR(line string, active []string) []string {
	for j := 0; j < len(line); j++ {
		if line[j] != '\x1b' || j+1 >= len(line) || line[j+1] != '[' {
			continue
		}
		k := j + 2
		for k < len(line) && line[k] != 'm' && line[k] != '\x1b' {
			k++
		}
		if k >= len(line) || line[k] != 'm' {
			continue
		}
		params := line[j+2 : k]
		if params == "" || params == "0" {
			active = active[:0]
		} else {
			active = append(active, line[j:k+1])
		}
		j = k
	}
	return active
}

// Palette holds outline colors taken from a Chroma theme's token styles.
type Palette struct {
	Fg     string // symbol names, the theme's text color
	Dim    string // tree guides, comment color
	Muted  string // kinds, keyword color
	Accent string // types, type-keyword color
}

// ThemePalette derives a palette from a Chroma theme name. Tokens the
// theme leaves unstyled keep the default colors; unknown themes resolve
// to Chroma's fallback style.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	p := Palette{
		Fg:     "#c8c8c8",
		Dim:    "#5a5a5a",
		Muted:  "#8a8a8a",
		Accent: "#00dfff",
	}
	for _, pick := range []struct {
		dst   *string
		token chroma.TokenType
	}{
		{&p.Fg, chroma.Background},
		{&p.Dim, chroma.Comment},
		{&p.Muted, chroma.Keyword},
		{&p.Accent, chroma.KeywordType},
	} {
		if c := sty.Get(pick.token).Colour; c.IsSet() {
			*pick.dst = c.String()
		}
	}
	return p
}
