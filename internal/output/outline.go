package output

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/xonecas/symtab/internal/highlight"
	"github.com/xonecas/symtab/internal/symtab"
)

type outlineStyles struct {
	guide lipgloss.Style
	kind  lipgloss.Style
	name  lipgloss.Style
	typ   lipgloss.Style
}

func newOutlineStyles(theme string) outlineStyles {
	p := highlight.ThemePalette(theme)
	return outlineStyles{
		guide: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim)),
		kind:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		name:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Fg)).Bold(true),
		typ:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)),
	}
}

type outline struct {
	b      strings.Builder
	styles outlineStyles
	theme  string
	color  bool
}

// Outline renders doc as a human-readable outline. Trees are drawn with
// box guides; flat tables list each scope key followed by its symbols.
// With color, initializers are syntax-highlighted in theme.
func Outline(doc symtab.Document, theme string, color bool) string {
	if theme == "" {
		theme = highlight.DefaultTheme
	}
	o := &outline{theme: theme, color: color}
	if color {
		o.styles = newOutlineStyles(theme)
	}

	switch d := doc.(type) {
	case *symtab.Node:
		o.b.WriteString(o.render(o.styles.name, d.Name))
		o.b.WriteByte('\n')
		o.children(d.Children, "")
	case *symtab.Table:
		o.scopes(d)
	}
	return o.b.String()
}

func (o *outline) render(s lipgloss.Style, text string) string {
	if !o.color || text == "" {
		return text
	}
	return s.Render(text)
}

func (o *outline) children(nodes []*symtab.Node, prefix string) {
	for i, c := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		o.symbol(prefix+branch, prefix+next, c.Record)
		o.children(c.Children, prefix+next)
	}
}

func (o *outline) scopes(t *symtab.Table) {
	for _, key := range t.Keys() {
		label := key
		if key == "" {
			label = string(symtab.KindRoot)
		}
		o.b.WriteString(o.render(o.styles.name, "["+label+"]"))
		o.b.WriteByte('\n')
		recs, _ := t.Lookup(key)
		for _, rec := range recs {
			o.symbol("  ", "  ", rec)
		}
	}
}

// symbol writes one "Kind name: type = initializer" line. Continuation
// lines of a multi-line initializer are indented by cont.
func (o *outline) symbol(lead, cont string, rec symtab.Record) {
	o.b.WriteString(o.render(o.styles.guide, lead))
	o.b.WriteString(o.render(o.styles.kind, string(rec.Kind)))
	o.b.WriteByte(' ')
	o.b.WriteString(o.render(o.styles.name, rec.Name))
	if rec.Type != "" {
		o.b.WriteString(": ")
		o.b.WriteString(o.render(o.styles.typ, rec.Type))
	}
	if rec.Initializer != "" {
		o.b.WriteString(" = ")
		init := rec.Initializer
		if o.color {
			lang := "typescript"
			if rec.File != "" {
				lang = highlight.DetectLanguage(rec.File)
			}
			init = highlight.Highlight(init, lang, o.theme)
		}
		for i, line := range highlight.SplitLines(init) {
			if i > 0 {
				o.b.WriteByte('\n')
				o.b.WriteString(o.render(o.styles.guide, cont))
			}
			o.b.WriteString(line)
		}
	}
	o.b.WriteByte('\n')
}
