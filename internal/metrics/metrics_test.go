package metrics

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestCompute_Idempotent(t *testing.T) {
	src := []byte(`
# entry points
def handle(a, b):
    if a and b:
        return a
    return b
`)
	first := Compute(context.Background(), src)
	second := Compute(context.Background(), src)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compute is not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestCompute_Complexity(t *testing.T) {
	src := []byte(`
def classify(x, y):
    if x > 0:
        pass
    elif x < 0:
        pass
    for i in range(x):
        while y:
            y -= 1
    try:
        risky()
    except ValueError:
        pass
    if x and y and x > y:
        pass
`)
	rep := Compute(context.Background(), src)
	if rep.Err != nil {
		t.Fatalf("unexpected parse error: %v", rep.Err)
	}
	if rep.FunctionCount != 1 {
		t.Fatalf("function count: got %d", rep.FunctionCount)
	}
	// 1 base + 2 if + 1 elif + 1 for + 1 while + 1 except + 2 for the
	// three-operand and-chain.
	want := 9
	if got := rep.FunctionComplexities[0].Complexity; got != want {
		t.Errorf("function complexity: got %d, want %d", got, want)
	}
}

func TestCompute_LineCounts(t *testing.T) {
	src := []byte(`"""Module docstring
spanning three lines.
"""
# a comment

x = 1
`)
	rep := Compute(context.Background(), src)
	if rep.Err != nil {
		t.Fatalf("unexpected parse error: %v", rep.Err)
	}
	if rep.TotalLines != 6 {
		t.Errorf("total lines: got %d, want 6", rep.TotalLines)
	}
	if rep.BlankLines != 1 {
		t.Errorf("blank lines: got %d, want 1", rep.BlankLines)
	}
	// 1 hash comment + 3 docstring lines.
	if rep.CommentLines != 4 {
		t.Errorf("comment lines: got %d, want 4", rep.CommentLines)
	}
	if rep.CodeLines != 1 {
		t.Errorf("code lines: got %d, want 1", rep.CodeLines)
	}
}

func TestCompute_CodeLinesClampedAtZero(t *testing.T) {
	// A docstring whose quotes share lines with other counted content can
	// push comment+blank past total; code lines must clamp at zero.
	src := []byte(`"""doc"""
`)
	rep := Compute(context.Background(), src)
	if rep.CodeLines < 0 {
		t.Errorf("code lines must never be negative, got %d", rep.CodeLines)
	}
}

func TestCompute_NoFunctionsDefaults(t *testing.T) {
	src := []byte(strings.Repeat("\n", 600))
	rep := Compute(context.Background(), src)
	if rep.Err != nil {
		t.Fatalf("unexpected parse error: %v", rep.Err)
	}
	if rep.TotalLines != 600 {
		t.Errorf("total lines: got %d, want 600", rep.TotalLines)
	}
	if rep.BlankLines != 600 || rep.CodeLines != 0 {
		t.Errorf("blank/code: got %d/%d", rep.BlankLines, rep.CodeLines)
	}
	if rep.CommentRatio != 0 {
		t.Errorf("comment ratio: got %v, want 0", rep.CommentRatio)
	}
	if rep.AvgFunctionComplexity != 1 {
		t.Errorf("avg complexity with no functions should default to 1, got %v", rep.AvgFunctionComplexity)
	}
	// 100 - 1*5 + 0*50 = 95
	if rep.MaintainabilityIndex != 95 {
		t.Errorf("maintainability index: got %v, want 95", rep.MaintainabilityIndex)
	}
}

func TestCompute_MaintainabilityClamped(t *testing.T) {
	var b strings.Builder
	b.WriteString("def deep(x):\n")
	b.WriteString("    if x:\n        pass\n")
	for i := 0; i < 30; i++ {
		b.WriteString("    if x > 0:\n        pass\n")
	}
	rep := Compute(context.Background(), []byte(b.String()))
	if rep.Err != nil {
		t.Fatalf("unexpected parse error: %v", rep.Err)
	}
	if rep.MaintainabilityIndex < 0 || rep.MaintainabilityIndex > 100 {
		t.Errorf("maintainability index out of range: %v", rep.MaintainabilityIndex)
	}
}

func TestCompute_SyntaxErrorReport(t *testing.T) {
	rep := Compute(context.Background(), []byte("def broken(:\n"))
	if rep.Err == nil {
		t.Fatal("expected a parse error in the report")
	}
	if rep.TotalLines != 0 || rep.FunctionCount != 0 {
		t.Errorf("failed parse must leave metrics zero: %+v", rep)
	}
}
