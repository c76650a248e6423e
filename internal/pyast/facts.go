package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Class is a class definition fact.
type Class struct {
	Name  string
	Line  int
	Bases []string
	Node  *sitter.Node

	tree *Tree
}

// Function is a function or method definition fact.
type Function struct {
	Name string
	Line int
	Node *sitter.Node

	tree *Tree
}

// ClassAssign is a simple `NAME = value` assignment at class-body scope.
type ClassAssign struct {
	Target string
	Line   int
}

// SelfAssign is a `self.<attr> = <value>` assignment inside a method body.
// ValueName is set only when the right-hand side is a bare identifier.
type SelfAssign struct {
	Attr      string
	ValueName string
	Line      int
}

// SelfAttrCall is a `self.<attr>.<method>(...)` call inside a method body.
type SelfAttrCall struct {
	Attr   string
	Method string
	Line   int
}

// Call is a call-site fact: FuncText is the source of the called expression
// (e.g. "Book.objects.filter" or "db.session.query").
type Call struct {
	FuncText string
	Line     int
	Node     *sitter.Node
}

// ModuleAssign is a top-level `NAME = value` assignment.
type ModuleAssign struct {
	Target    string
	ValueText string
	Line      int
}

// Classes returns every class definition in the tree, in source order.
func (t *Tree) Classes() []Class {
	var out []Class
	walkAll(t.root, func(n *sitter.Node) bool {
		if Kind(n) != KindClassDef {
			return true
		}
		c := Class{Node: n, Line: Line(n), tree: t}
		if name := n.ChildByFieldName("name"); name != nil {
			c.Name = t.Text(name)
		}
		if sup := n.ChildByFieldName("superclasses"); sup != nil {
			for i := 0; i < int(sup.NamedChildCount()); i++ {
				c.Bases = appendBase(c.Bases, t.Text(sup.NamedChild(i)))
			}
		}
		out = append(out, c)
		return true
	})
	return out
}

func appendBase(bases []string, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return bases
	}
	return append(bases, text)
}

// Functions returns every function definition in the tree, methods included.
func (t *Tree) Functions() []Function {
	var out []Function
	walkAll(t.root, func(n *sitter.Node) bool {
		if Kind(n) != KindFunctionDef {
			return true
		}
		out = append(out, newFunction(t, n))
		return true
	})
	return out
}

func newFunction(t *Tree, n *sitter.Node) Function {
	f := Function{Node: n, Line: Line(n), tree: t}
	if name := n.ChildByFieldName("name"); name != nil {
		f.Name = t.Text(name)
	}
	return f
}

// Methods returns the functions defined directly in the class body,
// unwrapping decorated definitions.
func (c Class) Methods() []Function {
	body := c.Node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []Function
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		switch Kind(stmt) {
		case KindFunctionDef:
			out = append(out, newFunction(c.tree, stmt))
		case KindDecoratedDef:
			if def := stmt.ChildByFieldName("definition"); def != nil && Kind(def) == KindFunctionDef {
				out = append(out, newFunction(c.tree, def))
			}
		}
	}
	return out
}

// ClassAssigns returns simple identifier assignments at class-body scope,
// e.g. `_instance = None`.
func (c Class) ClassAssigns() []ClassAssign {
	body := c.Node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []ClassAssign
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() != "expression_statement" {
			continue
		}
		for j := 0; j < int(stmt.NamedChildCount()); j++ {
			assign := stmt.NamedChild(j)
			if Kind(assign) != KindAssignment {
				continue
			}
			left := assign.ChildByFieldName("left")
			if left != nil && Kind(left) == KindIdentifier {
				out = append(out, ClassAssign{Target: c.tree.Text(left), Line: Line(assign)})
			}
		}
	}
	return out
}

// InstanceAttrs returns the distinct attribute names assigned through
// `self.<attr> = ...` anywhere in the class's methods.
func (c Class) InstanceAttrs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.Methods() {
		for _, sa := range m.SelfAssigns() {
			if !seen[sa.Attr] {
				seen[sa.Attr] = true
				out = append(out, sa.Attr)
			}
		}
	}
	return out
}

// Params returns the function's parameter names in declaration order,
// including self/cls. Typed, defaulted and splat parameters are unwrapped to
// their identifier.
func (f Function) Params() []string {
	params := f.Node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier":
			out = append(out, f.tree.Text(p))
		case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
			if id := firstIdentifier(p); id != nil {
				out = append(out, f.tree.Text(id))
			}
		case "default_parameter", "typed_default_parameter":
			if name := p.ChildByFieldName("name"); name != nil {
				out = append(out, f.tree.Text(name))
			}
		}
	}
	return out
}

func firstIdentifier(n *sitter.Node) *sitter.Node {
	var found *sitter.Node
	walkAll(n, func(c *sitter.Node) bool {
		if found != nil {
			return false
		}
		if Kind(c) == KindIdentifier {
			found = c
			return false
		}
		return true
	})
	return found
}

// HasReturnCall reports whether the function body contains a `return <call>`
// statement anywhere, nested scopes included.
func (f Function) HasReturnCall() bool {
	found := false
	walkAll(f.Node, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if Kind(n) != KindReturn {
			return true
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if Kind(n.NamedChild(i)) == KindCall {
				found = true
			}
		}
		return true
	})
	return found
}

// SelfAssigns returns every `self.<attr> = <value>` assignment in the
// function body.
func (f Function) SelfAssigns() []SelfAssign {
	var out []SelfAssign
	walkAll(f.Node, func(n *sitter.Node) bool {
		if Kind(n) != KindAssignment {
			return true
		}
		left := n.ChildByFieldName("left")
		if left == nil || Kind(left) != KindAttribute {
			return true
		}
		obj := left.ChildByFieldName("object")
		attr := left.ChildByFieldName("attribute")
		if obj == nil || attr == nil || f.tree.Text(obj) != "self" {
			return true
		}
		sa := SelfAssign{Attr: f.tree.Text(attr), Line: Line(n)}
		if right := n.ChildByFieldName("right"); right != nil && Kind(right) == KindIdentifier {
			sa.ValueName = f.tree.Text(right)
		}
		out = append(out, sa)
		return true
	})
	return out
}

// SelfAttrCalls returns every `self.<attr>.<method>(...)` call in the
// function body.
func (f Function) SelfAttrCalls() []SelfAttrCall {
	var out []SelfAttrCall
	walkAll(f.Node, func(n *sitter.Node) bool {
		if Kind(n) != KindCall {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || Kind(fn) != KindAttribute {
			return true
		}
		method := fn.ChildByFieldName("attribute")
		inner := fn.ChildByFieldName("object")
		if method == nil || inner == nil || Kind(inner) != KindAttribute {
			return true
		}
		attrName := inner.ChildByFieldName("attribute")
		base := inner.ChildByFieldName("object")
		if attrName == nil || base == nil || f.tree.Text(base) != "self" {
			return true
		}
		out = append(out, SelfAttrCall{
			Attr:   f.tree.Text(attrName),
			Method: f.tree.Text(method),
			Line:   Line(n),
		})
		return true
	})
	return out
}

// Decorators returns the textual decorator expressions attached to the
// function, without the leading @.
func (f Function) Decorators() []string {
	parent := f.Node.Parent()
	if parent == nil || Kind(parent) != KindDecoratedDef {
		return nil
	}
	var out []string
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		child := parent.NamedChild(i)
		if Kind(child) != KindDecorator {
			continue
		}
		text := strings.TrimPrefix(strings.TrimSpace(f.tree.Text(child)), "@")
		out = append(out, text)
	}
	return out
}

// Calls returns every call site under root with the source text of the
// called expression.
func (t *Tree) Calls(root *sitter.Node) []Call {
	if root == nil {
		root = t.root
	}
	var out []Call
	walkAll(root, func(n *sitter.Node) bool {
		if Kind(n) != KindCall {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return true
		}
		out = append(out, Call{FuncText: t.Text(fn), Line: Line(n), Node: n})
		return true
	})
	return out
}

// InsideLoop reports whether any ancestor of n is a for or while statement.
func InsideLoop(n *sitter.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch Kind(cur) {
		case KindFor, KindWhile:
			return true
		}
	}
	return false
}

// ModuleAssigns returns top-level `NAME = value` assignments, used by the
// settings checks.
func (t *Tree) ModuleAssigns() []ModuleAssign {
	var out []ModuleAssign
	for i := 0; i < int(t.root.NamedChildCount()); i++ {
		stmt := t.root.NamedChild(i)
		if stmt.Type() != "expression_statement" {
			continue
		}
		for j := 0; j < int(stmt.NamedChildCount()); j++ {
			assign := stmt.NamedChild(j)
			if Kind(assign) != KindAssignment {
				continue
			}
			left := assign.ChildByFieldName("left")
			right := assign.ChildByFieldName("right")
			if left == nil || Kind(left) != KindIdentifier {
				continue
			}
			ma := ModuleAssign{Target: t.Text(left), Line: Line(assign)}
			if right != nil {
				ma.ValueText = t.Text(right)
			}
			out = append(out, ma)
		}
	}
	return out
}
