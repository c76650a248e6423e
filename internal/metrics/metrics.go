// Package metrics computes code-quality figures for one Python source file:
// cyclomatic complexity, line counts, comment ratio and a derived
// maintainability index. Compute is a pure function of the source text.
package metrics

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pylens/pylens/internal/pyast"
)

// FunctionComplexity is the per-function cyclomatic complexity figure.
type FunctionComplexity struct {
	Name       string `json:"name"`
	Complexity int    `json:"complexity"`
	Line       int    `json:"line"`
}

// Report carries every metric for one file. When the source does not parse,
// Err is set and all other fields are zero.
type Report struct {
	TotalComplexity       int                  `json:"total_complexity"`
	FunctionComplexities  []FunctionComplexity `json:"function_complexities"`
	FunctionCount         int                  `json:"function_count"`
	TotalLines            int                  `json:"total_lines"`
	BlankLines            int                  `json:"blank_lines"`
	CommentLines          int                  `json:"comment_lines"`
	CodeLines             int                  `json:"code_lines"`
	AvgFunctionComplexity float64              `json:"avg_function_complexity"`
	CommentRatio          float64              `json:"comment_ratio"`
	MaintainabilityIndex  float64              `json:"maintainability_index"`

	Err *pyast.SyntaxError `json:"error,omitempty"`
}

// Triple-quoted strings are counted as comment lines via a raw-text scan.
// This intentionally also matches triple-quoted strings used as plain
// expressions, not just docstrings; the over-count is accepted and CodeLines
// is clamped at zero.
var tripleQuoted = regexp.MustCompile(`(?s)""".*?"""`)

// Compute parses the source and fills a Report. A syntax error never
// propagates as a Go error; it is folded into Report.Err so batch callers can
// treat the file as contributing zero suggestions.
func Compute(ctx context.Context, src []byte) Report {
	tree, err := pyast.Parse(ctx, src)
	if err != nil {
		var rep Report
		if se, ok := err.(*pyast.SyntaxError); ok {
			rep.Err = se
		} else {
			rep.Err = &pyast.SyntaxError{Msg: err.Error(), Line: 1}
		}
		return rep
	}
	defer tree.Close()
	return ComputeWithTree(src, tree)
}

// ComputeWithTree computes metrics from an already-parsed tree. Callers that
// also run the pattern matcher reuse one parse this way.
func ComputeWithTree(src []byte, tree *pyast.Tree) Report {
	rep := Report{
		TotalComplexity: complexity(tree.Root(), src),
	}

	for _, fn := range tree.Functions() {
		rep.FunctionComplexities = append(rep.FunctionComplexities, FunctionComplexity{
			Name:       fn.Name,
			Complexity: complexity(fn.Node, src),
			Line:       fn.Line,
		})
	}
	rep.FunctionCount = len(rep.FunctionComplexities)

	countLines(string(src), &rep)

	if rep.TotalLines > 0 {
		rep.CommentRatio = float64(rep.CommentLines) / float64(rep.TotalLines)
	}

	rep.AvgFunctionComplexity = 1
	if rep.FunctionCount > 0 {
		sum := 0
		for _, fc := range rep.FunctionComplexities {
			sum += fc.Complexity
		}
		rep.AvgFunctionComplexity = float64(sum) / float64(rep.FunctionCount)
	}

	rep.MaintainabilityIndex = clamp(0, 100, 100-rep.AvgFunctionComplexity*5+rep.CommentRatio*50)
	return rep
}

// complexity is a simplified McCabe count over a subtree: one plus each
// branch point (if/elif/while/for), each exception handler, and each
// boolean-AND with operands minus one.
func complexity(root *sitter.Node, src []byte) int {
	c := 1
	counts := pyast.CountKinds(root,
		pyast.KindIf, pyast.KindElif, pyast.KindWhile, pyast.KindFor, pyast.KindExceptClause)
	for _, n := range counts {
		c += n
	}
	for _, operands := range pyast.BoolAndOperands(root, src) {
		c += operands - 1
	}
	return c
}

func countLines(src string, rep *Report) {
	lines := strings.Split(src, "\n")
	// A trailing newline produces a final empty element that is not a
	// physical line.
	if n := len(lines); n > 0 && lines[n-1] == "" && strings.HasSuffix(src, "\n") {
		lines = lines[:n-1]
	}
	rep.TotalLines = len(lines)

	hashComments := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			rep.BlankLines++
		} else if strings.HasPrefix(trimmed, "#") {
			hashComments++
		}
	}

	docstringLines := 0
	for _, m := range tripleQuoted.FindAllString(src, -1) {
		docstringLines += strings.Count(m, "\n") + 1
	}

	rep.CommentLines = hashComments + docstringLines
	rep.CodeLines = rep.TotalLines - rep.BlankLines - rep.CommentLines
	if rep.CodeLines < 0 {
		rep.CodeLines = 0
	}
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
