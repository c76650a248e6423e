// Package pyast wraps tree-sitter parsing of Python sources and exposes the
// typed facts the analysis pipeline needs: classes, functions, assignments,
// calls and control-flow nodes with line numbers. The tree is rebuilt per
// analysis call; callers that want caching do it themselves.
package pyast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// NodeKind is a closed enumeration over the grammar node types the pipeline
// dispatches on. Anything else is KindOther and skipped.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindModule
	KindClassDef
	KindFunctionDef
	KindDecoratedDef
	KindAssignment
	KindCall
	KindAttribute
	KindIdentifier
	KindIf
	KindElif
	KindFor
	KindWhile
	KindBoolOp
	KindExceptClause
	KindReturn
	KindBlock
	KindDecorator
	KindString
)

var kindByType = map[string]NodeKind{
	"module":               KindModule,
	"class_definition":     KindClassDef,
	"function_definition":  KindFunctionDef,
	"decorated_definition": KindDecoratedDef,
	"assignment":           KindAssignment,
	"call":                 KindCall,
	"attribute":            KindAttribute,
	"identifier":           KindIdentifier,
	"if_statement":         KindIf,
	"elif_clause":          KindElif,
	"for_statement":        KindFor,
	"while_statement":      KindWhile,
	"boolean_operator":     KindBoolOp,
	"except_clause":        KindExceptClause,
	"return_statement":     KindReturn,
	"block":                KindBlock,
	"decorator":            KindDecorator,
	"string":               KindString,
}

// Kind maps a raw tree-sitter node to the closed NodeKind enumeration.
func Kind(n *sitter.Node) NodeKind {
	if n == nil {
		return KindOther
	}
	return kindByType[n.Type()]
}

// SyntaxError reports where parsing of a source file broke down.
type SyntaxError struct {
	Msg    string `json:"message"`
	Line   int    `json:"line"`
	Offset int    `json:"offset"`
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d:%d: %s", e.Line, e.Offset, e.Msg)
}

// Tree holds one parsed source file. Close releases the underlying
// tree-sitter allocation; safe to call more than once.
type Tree struct {
	src  []byte
	tree *sitter.Tree
	root *sitter.Node
}

// Parse parses Python source into a Tree. Tree-sitter always produces a tree;
// a source with unrecoverable syntax errors returns a *SyntaxError locating
// the first ERROR or MISSING node instead.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		se := firstSyntaxError(root)
		tree.Close()
		return nil, se
	}

	return &Tree{src: src, tree: tree, root: root}, nil
}

func firstSyntaxError(root *sitter.Node) *SyntaxError {
	var bad *sitter.Node
	walkAll(root, func(n *sitter.Node) bool {
		if bad != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			bad = n
			return false
		}
		return true
	})
	if bad == nil {
		bad = root
	}
	msg := "invalid syntax"
	if bad.IsMissing() {
		msg = fmt.Sprintf("missing %s", bad.Type())
	}
	return &SyntaxError{
		Msg:    msg,
		Line:   int(bad.StartPoint().Row) + 1,
		Offset: int(bad.StartPoint().Column),
	}
}

// Close releases the tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node { return t.root }

// Source returns the raw bytes the tree was parsed from.
func (t *Tree) Source() []byte { return t.src }

// Text returns the source slice a node spans.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(t.src[n.StartByte():n.EndByte()])
}

// Line returns the 1-based start line of a node.
func Line(n *sitter.Node) int { return int(n.StartPoint().Row) + 1 }

// walkAll visits every node (named and anonymous) depth-first. The visitor
// returns false to prune the subtree.
func walkAll(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkAll(n.Child(i), visit)
	}
}

// CountKinds walks a subtree and tallies nodes per NodeKind. Used by the
// metrics engine for complexity counting.
func CountKinds(root *sitter.Node, wanted ...NodeKind) map[NodeKind]int {
	set := make(map[NodeKind]bool, len(wanted))
	for _, k := range wanted {
		set[k] = true
	}
	counts := make(map[NodeKind]int)
	walkAll(root, func(n *sitter.Node) bool {
		if k := Kind(n); set[k] {
			counts[k]++
		}
		return true
	})
	return counts
}

// BoolAndOperands returns, for each boolean-AND expression in the subtree,
// the operand count. Tree-sitter nests chained "and" operators, so a chain of
// N operands appears as N-1 binary nodes; each node here reports 2 operands
// and the caller's operands-minus-one rule sums to the same figure the
// flattened form would give.
func BoolAndOperands(root *sitter.Node, src []byte) []int {
	var out []int
	walkAll(root, func(n *sitter.Node) bool {
		if Kind(n) != KindBoolOp {
			return true
		}
		if op := n.ChildByFieldName("operator"); op != nil && string(src[op.StartByte():op.EndByte()]) == "and" {
			out = append(out, 2)
		}
		return true
	})
	return out
}
