package treesitter

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/symtab/internal/symtab"
)

var (
	numberLitRe = regexp.MustCompile(`^-?(\d[\d_]*(\.[\d_]*)?|\.\d[\d_]*)([eE][+-]?\d+)?$|^-?0[xXoObB][0-9a-fA-F_]+$`)
	bigintLitRe = regexp.MustCompile(`^-?(\d[\d_]*|0[xXoObB][0-9a-fA-F_]+)n$`)
)

// inference computes display types for one query. Types are rendered
// the way TypeScript prints them: literal types for const bindings,
// widened primitives everywhere else.
type inference struct {
	src      []byte
	file     *SourceFile
	maxDepth int
	memo     map[memoKey]*memoEntry
}

// memoized returns the cached result for n or computes and stores it.
// An entry still being computed is a cycle and fails at once; failures
// are cached like successes.
func (in *inference) memoized(n *sitter.Node, ret bool, compute func() (string, error)) (string, error) {
	key := memoKey{file: in.file, start: n.StartByte(), end: n.EndByte(), nodeType: n.Type(), ret: ret}
	if e, ok := in.memo[key]; ok {
		if !e.done {
			return "", noType(n, "circular reference")
		}
		return e.typ, e.err
	}
	e := &memoEntry{}
	in.memo[key] = e
	e.typ, e.err = compute()
	e.done = true
	return e.typ, e.err
}

func (in *inference) text(n *sitter.Node) string { return content(n, in.src) }

func noType(n *sitter.Node, format string, args ...any) error {
	return fmt.Errorf("%s at line %d: %s: %w", n.Type(), line(n), fmt.Sprintf(format, args...), symtab.ErrNoType)
}

// declType returns the type of a declaration node.
func (in *inference) declType(n *sitter.Node, depth int) (string, error) {
	if depth > in.maxDepth {
		return "", noType(n, "lookup depth exceeded")
	}
	return in.memoized(n, false, func() (string, error) {
		return in.computeDeclType(n, depth)
	})
}

func (in *inference) computeDeclType(n *sitter.Node, depth int) (string, error) {
	switch n.Type() {
	case "variable_declarator":
		return in.declaratorType(n, depth)
	case "required_parameter", "optional_parameter", "assignment_pattern", "rest_pattern":
		return in.parameterType(n, depth)
	case "identifier":
		// Bare JavaScript parameters, arrow parameters and catch bindings.
		return "any", nil
	case "function_declaration", "generator_function_declaration", "function_signature":
		return in.functionType(n, depth), nil
	case "class_declaration", "abstract_class_declaration", "enum_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			return "typeof " + in.text(name), nil
		}
	}
	return "", noType(n, "not a typed declaration")
}

func (in *inference) declaratorType(d *sitter.Node, depth int) (string, error) {
	if ann := d.ChildByFieldName("type"); ann != nil {
		return in.annotation(ann)
	}
	value := d.ChildByFieldName("value")
	if value == nil {
		return "any", nil
	}
	t, err := in.exprType(value, depth)
	if err != nil {
		return "", err
	}
	if !isConstDeclarator(d) {
		t = widen(t)
	}
	return t, nil
}

func (in *inference) parameterType(p *sitter.Node, depth int) (string, error) {
	switch p.Type() {
	case "assignment_pattern":
		right := p.ChildByFieldName("right")
		if right == nil {
			return "any", nil
		}
		t, err := in.exprType(right, depth)
		if err != nil {
			return "", err
		}
		return widen(t), nil
	case "rest_pattern":
		return "any[]", nil
	}

	if ann := p.ChildByFieldName("type"); ann != nil {
		return in.annotation(ann)
	}
	if pattern := p.ChildByFieldName("pattern"); pattern != nil && pattern.Type() == "rest_pattern" {
		return "any[]", nil
	}
	if value := p.ChildByFieldName("value"); value != nil {
		t, err := in.exprType(value, depth)
		if err != nil {
			return "", err
		}
		return widen(t), nil
	}
	return "any", nil
}

// annotation renders a type_annotation node.
func (in *inference) annotation(ann *sitter.Node) (string, error) {
	t := ann.NamedChild(0)
	if t == nil {
		return "", noType(ann, "empty annotation")
	}
	return normalizeType(in.text(t)), nil
}

func (in *inference) exprType(e *sitter.Node, depth int) (string, error) {
	if depth > in.maxDepth {
		return "", noType(e, "lookup depth exceeded")
	}
	switch e.Type() {
	case "number":
		return strings.ReplaceAll(in.text(e), "_", ""), nil
	case "string":
		return quoteLiteral(in.text(e)), nil
	case "template_string":
		return "string", nil
	case "true", "false", "null", "undefined":
		return e.Type(), nil
	case "regex":
		return "RegExp", nil
	case "array":
		return in.arrayType(e, depth)
	case "object":
		return in.objectType(e, depth), nil
	case "parenthesized_expression", "non_null_expression":
		if inner := e.NamedChild(0); inner != nil {
			return in.exprType(inner, depth)
		}
	case "sequence_expression":
		if last := e.NamedChild(int(e.NamedChildCount()) - 1); last != nil {
			return in.exprType(last, depth)
		}
	case "assignment_expression":
		if right := e.ChildByFieldName("right"); right != nil {
			return in.exprType(right, depth)
		}
	case "binary_expression":
		return in.binaryType(e, depth)
	case "unary_expression":
		return in.unaryType(e, depth)
	case "update_expression":
		return "number", nil
	case "ternary_expression":
		return in.ternaryType(e, depth)
	case "as_expression", "satisfies_expression":
		if e.NamedChildCount() >= 2 {
			return normalizeType(in.text(e.NamedChild(1))), nil
		}
		// `as const` keeps the literal type.
		return in.exprType(e.NamedChild(0), depth)
	case "type_assertion":
		if args := e.NamedChild(0); args != nil && args.Type() == "type_arguments" && args.NamedChildCount() > 0 {
			return normalizeType(in.text(args.NamedChild(0))), nil
		}
	case "new_expression":
		return in.newType(e)
	case "call_expression":
		return in.callType(e, depth)
	case "arrow_function", "function_expression", "function", "generator_function":
		return in.functionType(e, depth), nil
	case "class":
		if name := e.ChildByFieldName("name"); name != nil {
			return "typeof " + in.text(name), nil
		}
	case "identifier", "shorthand_property_identifier":
		return in.referenceType(e, depth)
	}
	return "", noType(e, "no inference rule")
}

func (in *inference) referenceType(ref *sitter.Node, depth int) (string, error) {
	name := in.text(ref)
	switch name {
	case "undefined":
		return "undefined", nil
	case "NaN", "Infinity":
		return "number", nil
	}
	decl := lookup(ref, name, in.src)
	if decl == nil {
		return "", noType(ref, "unresolved reference %q", name)
	}
	t, err := in.declType(decl, depth+1)
	if err != nil {
		return "", err
	}
	return t, nil
}

func (in *inference) arrayType(arr *sitter.Node, depth int) (string, error) {
	var elems []string
	for i := 0; i < int(arr.NamedChildCount()); i++ {
		el := arr.NamedChild(i)
		switch el.Type() {
		case "comment":
			continue
		case "spread_element":
			inner := el.NamedChild(0)
			if inner == nil {
				return "", noType(el, "empty spread")
			}
			t, err := in.exprType(inner, depth)
			if err != nil {
				return "", err
			}
			if !strings.HasSuffix(t, "[]") {
				return "", noType(el, "spread of non-array %s", t)
			}
			elems = append(elems, strings.Trim(strings.TrimSuffix(t, "[]"), "()"))
		default:
			t, err := in.exprType(el, depth)
			if err != nil {
				return "", err
			}
			elems = append(elems, widen(t))
		}
	}
	if len(elems) == 0 {
		return "any[]", nil
	}
	elem := union(elems...)
	if strings.Contains(elem, " ") {
		elem = "(" + elem + ")"
	}
	return elem + "[]", nil
}

// objectType renders an object literal's shape. Members that cannot be
// inferred are typed any rather than failing the whole literal.
func (in *inference) objectType(obj *sitter.Node, depth int) string {
	var members []string
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		m := obj.NamedChild(i)
		var key, typ string
		switch m.Type() {
		case "pair":
			k, v := m.ChildByFieldName("key"), m.ChildByFieldName("value")
			if k == nil || v == nil || k.Type() == "computed_property_name" {
				continue
			}
			key = in.text(k)
			t, err := in.exprType(v, depth)
			if err != nil {
				t = "any"
			}
			typ = widen(t)
		case "shorthand_property_identifier":
			key = in.text(m)
			t, err := in.referenceType(m, depth)
			if err != nil {
				t = "any"
			}
			typ = widen(t)
		case "method_definition":
			name, err := declaredName(m, in.src)
			if err != nil {
				continue
			}
			key = name
			typ = in.functionType(m, depth)
		default:
			continue
		}
		members = append(members, key+": "+typ+";")
	}
	if len(members) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(members, " ") + " }"
}

func (in *inference) binaryType(e *sitter.Node, depth int) (string, error) {
	op := e.ChildByFieldName("operator")
	left, right := e.ChildByFieldName("left"), e.ChildByFieldName("right")
	if op == nil || left == nil || right == nil {
		return "", noType(e, "incomplete expression")
	}

	switch op.Type() {
	case "+":
		lt, lerr := in.exprType(left, depth)
		rt, rerr := in.exprType(right, depth)
		lt, rt = widen(lt), widen(rt)
		if (lerr == nil && lt == "string") || (rerr == nil && rt == "string") {
			return "string", nil
		}
		if lerr != nil {
			return "", lerr
		}
		if rerr != nil {
			return "", rerr
		}
		switch {
		case lt == "number" && rt == "number":
			return "number", nil
		case lt == "bigint" && rt == "bigint":
			return "bigint", nil
		}
		return "any", nil
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		lt, lerr := in.exprType(left, depth)
		rt, rerr := in.exprType(right, depth)
		if lerr == nil && rerr == nil && widen(lt) == "bigint" && widen(rt) == "bigint" {
			return "bigint", nil
		}
		return "number", nil
	case "==", "===", "!=", "!==", "<", ">", "<=", ">=", "instanceof", "in":
		return "boolean", nil
	case "&&":
		rt, err := in.exprType(right, depth)
		if err != nil {
			return "", err
		}
		return widen(rt), nil
	case "||", "??":
		lt, err := in.exprType(left, depth)
		if err != nil {
			return "", err
		}
		rt, err := in.exprType(right, depth)
		if err != nil {
			return "", err
		}
		return union(widen(lt), widen(rt)), nil
	}
	return "", noType(e, "operator %s", op.Type())
}

func (in *inference) unaryType(e *sitter.Node, depth int) (string, error) {
	op := e.ChildByFieldName("operator")
	if op == nil {
		return "", noType(e, "missing operator")
	}
	switch op.Type() {
	case "!", "delete":
		return "boolean", nil
	case "typeof":
		return "string", nil
	case "void":
		return "undefined", nil
	case "-":
		if arg := e.ChildByFieldName("argument"); arg != nil && arg.Type() == "number" {
			return "-" + strings.ReplaceAll(in.text(arg), "_", ""), nil
		}
		return "number", nil
	case "+", "~":
		return "number", nil
	}
	return "", noType(e, "operator %s", op.Type())
}

func (in *inference) ternaryType(e *sitter.Node, depth int) (string, error) {
	cons, alt := e.ChildByFieldName("consequence"), e.ChildByFieldName("alternative")
	if cons == nil || alt == nil {
		return "", noType(e, "incomplete conditional")
	}
	ct, err := in.exprType(cons, depth)
	if err != nil {
		return "", err
	}
	at, err := in.exprType(alt, depth)
	if err != nil {
		return "", err
	}
	if ct == at {
		return ct, nil
	}
	return union(widen(ct), widen(at)), nil
}

func (in *inference) newType(e *sitter.Node) (string, error) {
	ctor := e.ChildByFieldName("constructor")
	if ctor == nil {
		return "", noType(e, "missing constructor")
	}
	switch ctor.Type() {
	case "identifier", "member_expression":
		t := in.text(ctor)
		if args := e.ChildByFieldName("type_arguments"); args != nil {
			t += normalizeType(in.text(args))
		}
		return t, nil
	}
	return "", noType(e, "dynamic constructor")
}

func (in *inference) callType(e *sitter.Node, depth int) (string, error) {
	callee := e.ChildByFieldName("function")
	if callee == nil || callee.Type() != "identifier" {
		return "", noType(e, "unsupported callee")
	}
	decl := lookup(callee, in.text(callee), in.src)
	if decl == nil {
		return "", noType(callee, "unresolved function %q", in.text(callee))
	}

	switch decl.Type() {
	case "function_declaration", "generator_function_declaration", "function_signature":
		return in.returnType(decl, depth+1)
	case "variable_declarator":
		if value := decl.ChildByFieldName("value"); value != nil && isFunctionLike(value) {
			return in.returnType(value, depth+1)
		}
		if ann := decl.ChildByFieldName("type"); ann != nil {
			t, err := in.annotation(ann)
			if err == nil {
				if i := strings.LastIndex(t, "=> "); i >= 0 {
					return t[i+len("=> "):], nil
				}
			}
		}
	}
	return "", noType(e, "callee %q is not a known function", in.text(callee))
}

// functionType renders a function-like node as `(a: T) => R`.
func (in *inference) functionType(fn *sitter.Node, depth int) string {
	var params []string
	if single := fn.ChildByFieldName("parameter"); single != nil {
		params = append(params, in.text(single)+": any")
	} else if list := fn.ChildByFieldName("parameters"); list != nil {
		for i := 0; i < int(list.NamedChildCount()); i++ {
			p := list.NamedChild(i)
			if p.Type() == "comment" {
				continue
			}
			params = append(params, in.paramSignature(p, depth))
		}
	}
	ret, err := in.returnType(fn, depth+1)
	if err != nil {
		ret = "any"
	}
	return "(" + strings.Join(params, ", ") + ") => " + ret
}

func (in *inference) paramSignature(p *sitter.Node, depth int) string {
	pattern := p
	switch p.Type() {
	case "required_parameter", "optional_parameter":
		pattern = p.ChildByFieldName("pattern")
	case "assignment_pattern":
		pattern = p.ChildByFieldName("left")
	}
	name := "arg"
	if pattern != nil {
		name = normalizeType(in.text(pattern))
	}
	if p.Type() == "optional_parameter" || p.ChildByFieldName("value") != nil {
		name += "?"
	}
	t, err := in.parameterType(p, depth+1)
	if err != nil {
		t = "any"
	}
	return name + ": " + t
}

// returnType uses the declared return type, otherwise the union of the
// widened types of every return statement in the body.
func (in *inference) returnType(fn *sitter.Node, depth int) (string, error) {
	if depth > in.maxDepth {
		return "", noType(fn, "lookup depth exceeded")
	}
	return in.memoized(fn, true, func() (string, error) {
		return in.computeReturnType(fn, depth)
	})
}

func (in *inference) computeReturnType(fn *sitter.Node, depth int) (string, error) {
	if rt := fn.ChildByFieldName("return_type"); rt != nil {
		return in.annotation(rt)
	}
	body := fn.ChildByFieldName("body")
	if body == nil {
		return "any", nil
	}

	var t string
	if body.Type() == "statement_block" {
		var types []string
		for _, ret := range returnStatements(body) {
			value := ret.NamedChild(0)
			if value == nil {
				continue
			}
			rt, err := in.exprType(value, depth)
			if err != nil {
				return "", err
			}
			types = append(types, widen(rt))
		}
		t = "void"
		if len(types) > 0 {
			t = union(types...)
		}
	} else {
		bt, err := in.exprType(body, depth)
		if err != nil {
			return "", err
		}
		t = widen(bt)
	}

	if isAsync(fn) {
		t = "Promise<" + t + ">"
	}
	return t, nil
}

// returnStatements collects the return statements of body without
// descending into nested functions or classes.
func returnStatements(body *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch {
			case child.Type() == "return_statement":
				out = append(out, child)
			case isFunctionLike(child), child.Type() == "class_declaration", child.Type() == "class":
				continue
			default:
				walk(child)
			}
		}
	}
	walk(body)
	return out
}

func isAsync(fn *sitter.Node) bool {
	for i := 0; i < int(fn.ChildCount()); i++ {
		if fn.Child(i).Type() == "async" {
			return true
		}
	}
	return false
}

func isConstDeclarator(d *sitter.Node) bool {
	parent := d.Parent()
	if parent == nil || parent.Type() != "lexical_declaration" {
		return false
	}
	first := parent.Child(0)
	return first != nil && first.Type() == "const"
}

// widen maps literal types to their primitive base type.
func widen(t string) string {
	switch {
	case t == "true" || t == "false":
		return "boolean"
	case t == "null" || t == "undefined":
		return "any"
	case bigintLitRe.MatchString(t):
		return "bigint"
	case numberLitRe.MatchString(t):
		return "number"
	case len(t) >= 2 && strings.HasPrefix(t, `"`) && strings.HasSuffix(t, `"`):
		return "string"
	}
	return t
}

// union joins distinct types in first-seen order.
func union(types ...string) string {
	seen := make(map[string]bool, len(types))
	var out []string
	for _, t := range types {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return strings.Join(out, " | ")
}

// quoteLiteral renders a string literal with double quotes.
func quoteLiteral(lit string) string {
	if len(lit) < 2 || lit[0] != '\'' {
		return lit
	}
	inner := lit[1 : len(lit)-1]
	inner = strings.ReplaceAll(inner, `\'`, `'`)
	inner = strings.ReplaceAll(inner, `"`, `\"`)
	return `"` + inner + `"`
}

// normalizeType collapses whitespace inside a type's source text.
func normalizeType(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
