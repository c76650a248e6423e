// Package suggest orchestrates one analysis pass: metrics thresholds first,
// pattern occurrences second, framework findings last, each persisted as a
// suggestion in emission order.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pylens/pylens/internal/fileops"
	"github.com/pylens/pylens/internal/frameworks"
	"github.com/pylens/pylens/internal/metrics"
	"github.com/pylens/pylens/internal/patterns"
	"github.com/pylens/pylens/internal/pyast"
	"github.com/pylens/pylens/models"
	"github.com/pylens/pylens/store"
)

// Suggestion type names for the quality rules.
const (
	TypeComplexity      = "complexity"
	TypeMaintainability = "maintainability"
	TypeOrganization    = "organization"
	TypeDocumentation   = "documentation"
)

// Generator runs the full analysis pipeline for a file and records the
// resulting suggestions.
type Generator struct {
	store   store.SuggestionStore
	matcher *patterns.Matcher
	catalog *patterns.Catalog
	files   *fileops.Files

	// Dedupe skips a new suggestion when one with the same type, file and
	// start line is already stored. Off by default: re-analysis appends.
	Dedupe bool
}

// NewGenerator wires a generator over the given store and filesystem.
func NewGenerator(st store.SuggestionStore, files *fileops.Files) *Generator {
	return &Generator{
		store:   st,
		matcher: patterns.NewMatcher(),
		catalog: patterns.NewCatalog(),
		files:   files,
	}
}

// GenerateForFile analyzes one file and persists its suggestions, returning
// the assigned IDs in emission order. A file that fails to read propagates
// the error; a file that fails to parse contributes zero suggestions and no
// store writes.
func (g *Generator) GenerateForFile(ctx context.Context, path string) ([]int, error) {
	src, err := g.files.Read(path)
	if err != nil {
		return nil, err
	}

	tree, err := pyast.Parse(ctx, src)
	if err != nil {
		slog.Warn("skipping unparseable file", "path", path, "error", err)
		return []int{}, nil
	}
	defer tree.Close()

	rep := metrics.ComputeWithTree(src, tree)

	var pending []models.Suggestion
	pending = append(pending, g.qualitySuggestions(path, rep)...)
	pending = append(pending, g.patternSuggestions(path, tree)...)
	pending = append(pending, g.frameworkSuggestions(path, tree)...)

	ids := make([]int, 0, len(pending))
	for _, sug := range pending {
		if g.Dedupe {
			dup, err := g.alreadyStored(sug)
			if err != nil {
				return ids, err
			}
			if dup {
				continue
			}
		}
		id, err := g.store.Add(sug)
		if err != nil {
			return ids, fmt.Errorf("persisting suggestion for %s: %w", path, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *Generator) alreadyStored(sug models.Suggestion) (bool, error) {
	existing, err := g.store.ForFile(sug.Location.FilePath)
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if e.Type == sug.Type && e.Location.StartLine == sug.Location.StartLine {
			return true, nil
		}
	}
	return false, nil
}

// qualitySuggestions applies the fixed metric thresholds in a deterministic
// order.
func (g *Generator) qualitySuggestions(path string, rep metrics.Report) []models.Suggestion {
	var out []models.Suggestion
	wholeFile := models.Location{FilePath: path, StartLine: 1, EndLine: -1}

	if rep.TotalComplexity > 20 {
		if worst, ok := mostComplex(rep.FunctionComplexities); ok && worst.Complexity > 10 {
			severity := models.SeverityMedium
			if worst.Complexity > 15 {
				severity = models.SeverityHigh
			}
			out = append(out, *models.NewSuggestion(
				TypeComplexity,
				"High cyclomatic complexity detected",
				models.Location{FilePath: path, StartLine: worst.Line, EndLine: -1},
				severity,
			))
			out[len(out)-1].Recommendation = "Consider breaking complex functions into smaller, more manageable pieces."
		}
	}

	if rep.MaintainabilityIndex < 40 {
		severity := models.SeverityMedium
		if rep.MaintainabilityIndex < 30 {
			severity = models.SeverityHigh
		}
		s := models.NewSuggestion(TypeMaintainability, "Low maintainability index", wholeFile, severity)
		s.Recommendation = "Improve code structure, reduce complexity, and add documentation."
		out = append(out, *s)
	}

	if rep.FunctionCount > 25 {
		s := models.NewSuggestion(TypeOrganization, "Too many functions in a single file", wholeFile, models.SeverityMedium)
		s.Recommendation = "Consider splitting the file into modules by responsibility."
		out = append(out, *s)
	}

	if rep.TotalLines > 500 {
		s := models.NewSuggestion(TypeOrganization, "File is too long", wholeFile, models.SeverityMedium)
		s.Recommendation = "Consider splitting the file into modules by responsibility."
		out = append(out, *s)
	}

	if rep.CommentRatio < 0.05 {
		s := models.NewSuggestion(TypeDocumentation, "Low comment ratio", wholeFile, models.SeverityLow)
		s.Recommendation = "Add comments explaining non-obvious logic to improve readability."
		out = append(out, *s)
	}

	return out
}

func mostComplex(fns []metrics.FunctionComplexity) (metrics.FunctionComplexity, bool) {
	if len(fns) == 0 {
		return metrics.FunctionComplexity{}, false
	}
	worst := fns[0]
	for _, fn := range fns[1:] {
		if fn.Complexity > worst.Complexity {
			worst = fn
		}
	}
	return worst, true
}

// patternSuggestions turns each detected pattern occurrence into a suggestion
// enriched from the catalog.
func (g *Generator) patternSuggestions(path string, tree *pyast.Tree) []models.Suggestion {
	var out []models.Suggestion
	detected := g.matcher.Detect(tree)
	for _, name := range patterns.All() {
		info, ok := g.catalog.Get(string(name))
		if !ok {
			continue
		}
		for _, occ := range detected[name] {
			s := models.NewSuggestion(
				"pattern_"+string(name),
				fmt.Sprintf("Detected %s pattern in class %s", info.Name, occ.Subject),
				models.Location{
					FilePath:  path,
					StartLine: occ.Line,
					EndLine:   -1,
					ClassName: occ.Subject,
				},
				models.SeverityMedium,
			)
			tips := info.RefactoringTips
			if len(tips) > 2 {
				tips = tips[:2]
			}
			s.Recommendation = "Consider refactoring: " + strings.Join(tips, "; ")
			s.CodeExample = info.Example
			out = append(out, *s)
		}
	}
	return out
}

// frameworkSuggestions maps framework findings onto suggestions.
func (g *Generator) frameworkSuggestions(path string, tree *pyast.Tree) []models.Suggestion {
	var out []models.Suggestion
	for _, finding := range frameworks.Detect(tree) {
		severity := models.SeverityMedium
		if finding.Rule == frameworks.RuleRouteAuth || finding.Rule == frameworks.RuleInsecureSetting {
			severity = models.SeverityHigh
		}
		s := models.NewSuggestion(
			finding.Rule,
			finding.Message,
			models.Location{FilePath: path, StartLine: finding.Line, EndLine: -1},
			severity,
		)
		s.Recommendation = frameworkRecommendation(finding.Rule)
		out = append(out, *s)
	}
	return out
}

func frameworkRecommendation(rule string) string {
	switch rule {
	case frameworks.RuleRouteAuth:
		return "Protect mutating routes with an authentication or permission decorator."
	case frameworks.RuleInsecureSetting:
		return "Load secrets and debug flags from the environment instead of source code."
	case frameworks.RuleNPlusOne:
		return "Batch the query outside the loop or use a join/prefetch to avoid per-row queries."
	default:
		return ""
	}
}

// BatchReport summarizes a directory analysis run.
type BatchReport struct {
	RunID         string         `json:"run_id"`
	AnalyzedFiles int            `json:"analyzed_files"`
	SuggestionIDs []int          `json:"suggestion_ids"`
	Failures      []BatchFailure `json:"failures,omitempty"`
}

// BatchFailure records one file the run could not analyze.
type BatchFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// AnalyzeDirectory walks root for Python files and analyzes each one.
// Per-file failures are accumulated, not fatal; the run continues.
func (g *Generator) AnalyzeDirectory(ctx context.Context, root string) (*BatchReport, error) {
	paths, err := g.files.PythonFiles(root)
	if err != nil {
		return nil, err
	}

	rep := &BatchReport{RunID: uuid.NewString()}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		ids, err := g.GenerateForFile(ctx, path)
		if err != nil {
			slog.Warn("file analysis failed", "run", rep.RunID, "path", path, "error", err)
			rep.Failures = append(rep.Failures, BatchFailure{Path: path, Error: err.Error()})
			continue
		}
		rep.AnalyzedFiles++
		rep.SuggestionIDs = append(rep.SuggestionIDs, ids...)
	}

	slog.Info("directory analysis complete",
		"run", rep.RunID,
		"analyzed", rep.AnalyzedFiles,
		"suggestions", len(rep.SuggestionIDs),
		"failures", len(rep.Failures))
	return rep, nil
}
