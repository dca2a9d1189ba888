package symtab

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignorePos = cmpopts.IgnoreFields(Record{}, "File", "Line")

func walkTree(t *testing.T, fs []File) (*Node, Stats) {
	t.Helper()
	w := NewWalker(fakeResolver{}, NewTreeAssembler())
	doc := w.Walk(fs)
	root, ok := doc.(*Node)
	if !ok {
		t.Fatalf("Walk returned %T, want *Node", doc)
	}
	return root, w.Stats()
}

func walkFlat(t *testing.T, fs []File) *Table {
	t.Helper()
	doc := NewWalker(fakeResolver{}, NewFlatAssembler()).Walk(fs)
	table, ok := doc.(*Table)
	if !ok {
		t.Fatalf("Walk returned %T, want *Table", doc)
	}
	return table
}

func leaf(name string, kind Kind, typ, init string) *Node {
	return &Node{Record: Record{Name: name, Kind: kind, Type: typ, Initializer: init}}
}

func container(name string, kind Kind, children ...*Node) *Node {
	return &Node{Record: Record{Name: name, Kind: kind}, Children: children}
}

func TestWalkTree_NestedFunctions(t *testing.T) {
	src := program(
		fn("outer", params(param("x", "number")), block(
			variable("y", "number", "1 + x"),
			fn("inner", nil, block(
				variable("z", "string", `"a"`),
			)),
		)),
	)

	got, _ := walkTree(t, files(src))

	want := container("root", KindRoot,
		container("outer", KindFunction,
			leaf("x", KindParameter, "number", ""),
			leaf("y", KindVariable, "number", "1 + x"),
			container("inner", KindFunction,
				leaf("z", KindVariable, "string", `"a"`),
			),
		),
	)
	if diff := cmp.Diff(want, got, ignorePos); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkTree_SourceOrder(t *testing.T) {
	src := program(
		variable("a", "number", "1"),
		class("B", block(
			fn("m", nil),
		)),
		variable("c", "string", ""),
		fn("d", nil),
	)
	other := program(variable("e", "boolean", "true"))

	got, _ := walkTree(t, files(src, other))

	var names []string
	for _, c := range got.Children {
		names = append(names, c.Name)
	}
	want := []string{"a", "B", "c", "d", "e"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if m := got.Child("B").Child("m"); m == nil || m.Kind != KindFunction {
		t.Errorf("method m not nested in class B: %+v", got.Child("B"))
	}
}

func TestWalkTree_SiblingScopesStayIsolated(t *testing.T) {
	src := program(
		fn("A", nil, block(variable("v", "number", "1"))),
		fn("B", nil, block(variable("v", "string", `"b"`))),
		variable("top", "number", "3"),
	)

	got, _ := walkTree(t, files(src))

	a, b := got.Child("A"), got.Child("B")
	if len(a.Children) != 1 || a.Children[0].Type != "number" {
		t.Errorf("A children = %+v, want only its own v", a.Children)
	}
	if len(b.Children) != 1 || b.Children[0].Type != "string" {
		t.Errorf("B children = %+v, want only its own v", b.Children)
	}
	if got.Child("top") == nil {
		t.Error("top-level variable after B was not recorded at the root")
	}
}

func TestWalkTree_UnnamedContainerKeepsScope(t *testing.T) {
	anon := fn("", params(param("p", "number")), block(variable("inside", "number", "2")))
	src := program(fn("outer", nil, block(anon)))

	got, stats := walkTree(t, files(src))

	outer := got.Child("outer")
	want := []*Node{leaf("inside", KindVariable, "number", "2")}
	if diff := cmp.Diff(want, outer.Children, ignorePos); diff != "" {
		t.Errorf("outer children mismatch (-want +got):\n%s", diff)
	}
	if stats.Unnamed != 1 {
		t.Errorf("Unnamed = %d, want 1", stats.Unnamed)
	}
}

func TestWalkTree_UnresolvedTypeIsOmitted(t *testing.T) {
	src := program(variable("mystery", "", "load()"))

	got, stats := walkTree(t, files(src))

	want := container("root", KindRoot, leaf("mystery", KindVariable, "", "load()"))
	if diff := cmp.Diff(want, got, ignorePos); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if stats.Unresolved != 1 {
		t.Errorf("Unresolved = %d, want 1", stats.Unresolved)
	}
}

func TestWalkTree_ParameterCapture(t *testing.T) {
	src := program(fn("f", params(
		param("a", "number"),
		param("b", "string"),
		param("c", "boolean[]"),
	)))

	got, _ := walkTree(t, files(src))

	want := []*Node{
		leaf("a", KindParameter, "number", ""),
		leaf("b", KindParameter, "string", ""),
		leaf("c", KindParameter, "boolean[]", ""),
	}
	if diff := cmp.Diff(want, got.Child("f").Children, ignorePos); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkTree_UnnamedParameterSkippedAlone(t *testing.T) {
	src := program(fn("f", params(
		param("a", "number"),
		param("", "{ x: number; }"),
		param("c", ""),
	)))

	got, _ := walkTree(t, files(src))

	want := []*Node{
		leaf("a", KindParameter, "number", ""),
		leaf("c", KindParameter, "", ""),
	}
	if diff := cmp.Diff(want, got.Child("f").Children, ignorePos); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkTree_ClassesHaveNoParameters(t *testing.T) {
	c := class("C")
	c.params = params(param("ignored", "number"))

	got, _ := walkTree(t, files(program(c)))

	if n := len(got.Child("C").Children); n != 0 {
		t.Errorf("class C has %d children, want 0", n)
	}
}

func TestWalk_SkipsExcludedFiles(t *testing.T) {
	fs := files(
		program(fn("kept", nil)),
		program(fn("declared", nil)),
	)
	fs[1].Skip = true

	got, stats := walkTree(t, fs)

	if got.Child("declared") != nil {
		t.Error("symbol from skipped file was recorded")
	}
	if stats.Files != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 1 walked and 1 skipped", stats)
	}
}

func TestWalkFlat_MergesRepeatedScopes(t *testing.T) {
	first := program(fn("main", nil, block(variable("a", "number", "1"))))
	second := program(fn("main", nil, block(variable("b", "string", `"b"`))))

	table := walkFlat(t, files(first, second))

	if diff := cmp.Diff([]string{"", "main"}, table.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	mainRecs, _ := table.Lookup("main")
	want := []Record{
		{Name: "a", Kind: KindVariable, Type: "number", Initializer: "1"},
		{Name: "b", Kind: KindVariable, Type: "string", Initializer: `"b"`},
	}
	if diff := cmp.Diff(want, mainRecs, ignorePos); diff != "" {
		t.Errorf("main scope mismatch (-want +got):\n%s", diff)
	}
	rootRecs, _ := table.Lookup("")
	if len(rootRecs) != 2 {
		t.Errorf("root scope has %d records, want both main declarations", len(rootRecs))
	}
}

func TestWalkFlat_DuplicateTopLevelHelpers(t *testing.T) {
	src := program(
		fn("helper", params(param("x", "number"))),
		fn("helper", params(param("y", "string"))),
	)

	table := walkFlat(t, files(src))

	recs, ok := table.Lookup("helper")
	if !ok {
		t.Fatal("helper scope missing")
	}
	if len(recs) != 2 {
		t.Errorf("helper scope has %d records, want 2", len(recs))
	}
	if table.Len() != 2 {
		t.Errorf("table has %d keys, want 2", table.Len())
	}
}

func TestWalkFlat_NestedPaths(t *testing.T) {
	src := program(
		class("Outer", block(
			fn("inner", params(param("p", "number")), block(
				variable("v", "boolean", "true"),
			)),
		)),
	)

	table := walkFlat(t, files(src))

	if diff := cmp.Diff([]string{"", "Outer", "Outer.inner"}, table.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	recs, _ := table.Lookup("Outer.inner")
	var names []string
	for _, r := range recs {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"p", "v"}, names); diff != "" {
		t.Errorf("Outer.inner mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkFlat_RerunCreatesKeysOnce(t *testing.T) {
	input := func() []File {
		return files(
			program(fn("main", nil, block(fn("helper", nil)))),
			program(fn("main", nil, block(fn("helper", nil)))),
		)
	}

	first := walkFlat(t, input())
	second := walkFlat(t, input())

	if diff := cmp.Diff(first.Keys(), second.Keys()); diff != "" {
		t.Errorf("keys differ between runs (-first +second):\n%s", diff)
	}
	seen := make(map[string]bool)
	for _, k := range second.Keys() {
		if seen[k] {
			t.Errorf("key %q created twice", k)
		}
		seen[k] = true
	}
	if recs, _ := second.Lookup("main.helper"); len(recs) != 0 {
		t.Errorf("main.helper = %+v, want empty", recs)
	}
	if recs, _ := second.Lookup("main"); len(recs) != 2 {
		t.Errorf("main has %d records, want 2", len(recs))
	}
}
