// Package refactor turns a stored suggestion into a candidate rewrite of the
// target file via the completion oracle, and validates candidates before they
// can be applied.
package refactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pylens/pylens/internal/fileops"
	"github.com/pylens/pylens/internal/pyast"
	"github.com/pylens/pylens/llm"
	"github.com/pylens/pylens/models"
	"github.com/pylens/pylens/store"
)

// ErrNoOracle is returned when code generation is requested without a
// configured completion backend.
var ErrNoOracle = errors.New("refactor: no oracle configured")

const promptMaxTokens = 3000

var fencedPython = regexp.MustCompile("(?s)```(?:python)?\\s*\\n(.*?)```")

// Engine produces and applies refactored file bodies.
type Engine struct {
	store  store.SuggestionStore
	oracle llm.Provider
	files  *fileops.Files
}

// NewEngine wires an engine. A nil oracle is allowed; code generation then
// fails with ErrNoOracle while Validate and Apply keep working.
func NewEngine(st store.SuggestionStore, oracle llm.Provider, files *fileops.Files) *Engine {
	return &Engine{store: st, oracle: oracle, files: files}
}

// GenerateCode builds a prompt from the suggestion and the current file body
// and returns the oracle's candidate rewrite. A fenced code block in the
// response is extracted; otherwise the raw response is the candidate.
func (e *Engine) GenerateCode(ctx context.Context, suggestionID int) (string, error) {
	if e.oracle == nil {
		return "", ErrNoOracle
	}

	sug, err := e.store.Get(suggestionID)
	if err != nil {
		return "", err
	}
	src, err := e.files.Read(sug.Location.FilePath)
	if err != nil {
		return "", err
	}

	resp, err := e.oracle.Complete(ctx, buildPrompt(sug, string(src)), promptMaxTokens)
	if err != nil {
		slog.Error("oracle call failed", "suggestion", suggestionID, "provider", e.oracle.Name(), "error", err)
		return "", fmt.Errorf("generating code for suggestion %d: %w", suggestionID, err)
	}

	if m := fencedPython.FindStringSubmatch(resp); m != nil {
		return strings.TrimRight(m[1], "\n") + "\n", nil
	}
	return resp, nil
}

func buildPrompt(sug models.Suggestion, src string) string {
	var b strings.Builder
	b.WriteString("Refactor the following Python file to address this suggestion.\n\n")
	fmt.Fprintf(&b, "Suggestion type: %s\n", sug.Type)
	fmt.Fprintf(&b, "Description: %s\n", sug.Description)
	fmt.Fprintf(&b, "Location: %s line %d", sug.Location.FilePath, sug.Location.StartLine)
	if sug.Location.ClassName != "" {
		fmt.Fprintf(&b, " (class %s)", sug.Location.ClassName)
	}
	b.WriteString("\n")
	if sug.Recommendation != "" {
		fmt.Fprintf(&b, "Recommendation: %s\n", sug.Recommendation)
	}
	b.WriteString("\nReturn the complete rewritten file in a single fenced python code block.\n")
	b.WriteString("\n--- file ---\n")
	b.WriteString(src)
	return b.String()
}

// Validate reports whether candidate text parses as Python. It never returns
// an error; any parse failure is a false.
func (e *Engine) Validate(ctx context.Context, candidate string) bool {
	tree, err := pyast.Parse(ctx, []byte(candidate))
	if err != nil {
		return false
	}
	tree.Close()
	return true
}

// Apply validates the candidate, backs up the target file, writes the
// candidate, and marks the suggestion applied. The backup path is returned so
// callers can offer a revert.
func (e *Engine) Apply(ctx context.Context, suggestionID int, candidate string) (string, error) {
	if !e.Validate(ctx, candidate) {
		return "", fmt.Errorf("candidate for suggestion %d does not parse", suggestionID)
	}

	sug, err := e.store.Get(suggestionID)
	if err != nil {
		return "", err
	}

	backup, err := e.files.Backup(sug.Location.FilePath)
	if err != nil {
		return "", fmt.Errorf("backing up %s: %w", sug.Location.FilePath, err)
	}
	if err := e.files.Write(sug.Location.FilePath, []byte(candidate)); err != nil {
		return backup, err
	}
	if _, err := e.store.MarkApplied(suggestionID); err != nil {
		return backup, err
	}

	slog.Info("suggestion applied", "suggestion", suggestionID, "path", sug.Location.FilePath, "backup", backup)
	return backup, nil
}
