package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/exp/golden"
	"github.com/google/go-cmp/cmp"

	"github.com/xonecas/symtab/internal/symtab"
	"github.com/xonecas/symtab/internal/treesitter"
)

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, layout symtab.Layout, inputs ...string) *Result {
	t.Helper()
	res, err := Run(context.Background(), Request{
		Inputs:   inputs,
		Compiler: treesitter.DefaultOptions(),
		Layout:   layout,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestRun_NestedScenarioJSON(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"scenario.ts": `function outer(x: number) { let y = 1 + x; function inner() { let z = "a"; } }`,
	})

	res := run(t, symtab.LayoutTree, filepath.Join(dir, "scenario.ts"))

	out, err := json.MarshalIndent(res.Document, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	golden.RequireEqual(t, append(out, '\n'))
}

func TestRun_SiblingFunctionsKeepTheirVariables(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"siblings.ts": `
function a() { let v = 1; }
function b() { let v = "two"; }
let after = true;
`,
	})

	res := run(t, symtab.LayoutTree, dir)
	root := res.Document.(*symtab.Node)

	want := map[string]string{"a": "number", "b": "string"}
	for fn, typ := range want {
		children := root.Child(fn).Children
		if len(children) != 1 || children[0].Name != "v" || children[0].Type != typ {
			t.Errorf("%s children = %+v, want a single v of type %s", fn, children, typ)
		}
	}
	if last := root.Children[len(root.Children)-1]; last.Name != "after" || last.Type != "boolean" {
		t.Errorf("last root child = %+v, want after: boolean", last)
	}
}

func TestRun_SourceOrderAcrossFiles(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"one.ts": "class Shape { area(): number { return 0; } }\nlet count = 0;",
		"two.ts": "function draw(s: Shape, scale = 1) {}",
	})

	res := run(t, symtab.LayoutTree, filepath.Join(dir, "two.ts"), filepath.Join(dir, "one.ts"))
	root := res.Document.(*symtab.Node)

	var names []string
	for _, c := range root.Children {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"draw", "Shape", "count"}, names); diff != "" {
		t.Errorf("root order mismatch (-want +got):\n%s", diff)
	}

	var params []string
	for _, p := range root.Child("draw").Children {
		params = append(params, p.Name+": "+p.Type)
	}
	if diff := cmp.Diff([]string{"s: Shape", "scale: number"}, params); diff != "" {
		t.Errorf("draw parameters mismatch (-want +got):\n%s", diff)
	}
	if area := root.Child("Shape").Child("area"); area == nil || area.Kind != symtab.KindFunction {
		t.Errorf("method area not recorded under Shape")
	}
}

func TestRun_UnresolvedTypeStillRecorded(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"degrade.ts": "let mystery = loadFromSomewhere();\nlet known = 2;",
	})

	res := run(t, symtab.LayoutTree, dir)
	root := res.Document.(*symtab.Node)

	m := root.Child("mystery")
	if m == nil {
		t.Fatal("mystery not recorded")
	}
	if m.Type != "" {
		t.Errorf("mystery type = %q, want omitted", m.Type)
	}
	if m.Initializer != "loadFromSomewhere()" {
		t.Errorf("mystery initializer = %q", m.Initializer)
	}
	if res.Stats.Unresolved != 1 {
		t.Errorf("Unresolved = %d, want 1", res.Stats.Unresolved)
	}
	if root.Child("known") == nil {
		t.Error("walk stopped after the unresolved variable")
	}
}

func TestRun_FlatMergesMainAcrossFiles(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"a.ts": "function main() { let first = 1; }",
		"b.ts": "function main() { let second = 'x'; }",
	})

	res := run(t, symtab.LayoutFlat, filepath.Join(dir, "a.ts"), filepath.Join(dir, "b.ts"))
	table := res.Document.(*symtab.Table)

	if diff := cmp.Diff([]string{"", "main"}, table.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	recs, _ := table.Lookup("main")
	var got []string
	for _, r := range recs {
		got = append(got, r.Name+": "+r.Type)
	}
	if diff := cmp.Diff([]string{"first: number", "second: string"}, got); diff != "" {
		t.Errorf("main scope mismatch (-want +got):\n%s", diff)
	}
	if top, _ := table.Lookup(""); len(top) != 2 {
		t.Errorf("root scope has %d records, want 2", len(top))
	}
}

func TestRun_SkipsDeclarationFiles(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"lib.d.ts": "declare function ambient(a: number): void;",
		"main.ts":  "let x = 1;",
	})

	res := run(t, symtab.LayoutTree, dir)
	root := res.Document.(*symtab.Node)

	if root.Child("ambient") != nil {
		t.Error("declaration file was walked")
	}
	if res.Stats.Skipped != 1 || res.Stats.Files != 1 {
		t.Errorf("stats = %+v, want one walked and one skipped", res.Stats)
	}
}

func TestRun_LoadFailureIsFatal(t *testing.T) {
	dir := writeSources(t, map[string]string{"a.js": "var a = 1;"})

	_, err := Run(context.Background(), Request{
		Inputs:   []string{filepath.Join(dir, "a.js")},
		Compiler: treesitter.DefaultOptions(),
		Layout:   symtab.LayoutTree,
	})
	if err == nil {
		t.Fatal("expected error for JavaScript input without allow_js")
	}
}

func TestDocumentSize(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"size.ts": "function f(a: number) { let b = a; }\nlet c = 1;",
	})

	tree := run(t, symtab.LayoutTree, dir)
	if got := documentSize(tree.Document); got != 4 {
		t.Errorf("tree size = %d, want 4 symbols", got)
	}

	flat := run(t, symtab.LayoutFlat, dir)
	if got := documentSize(flat.Document); got != 2 {
		t.Errorf("flat size = %d, want 2 scope keys", got)
	}
}
