package suggest

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/pylens/pylens/internal/fileops"
	"github.com/pylens/pylens/models"
	"github.com/pylens/pylens/store"
)

func setupGenerator(t *testing.T) (*Generator, store.SuggestionStore, afero.Fs) {
	t.Helper()

	st := store.NewFileSuggestionStore()
	err := st.Initialize(map[string]string{
		"dataFile": filepath.Join(t.TempDir(), "suggestions.json"),
	})
	if err != nil {
		t.Fatalf("initializing store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	memfs := afero.NewMemMapFs()
	return NewGenerator(st, fileops.New(memfs)), st, memfs
}

func writeFixture(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
}

func typesOf(sugs []models.Suggestion) []string {
	out := make([]string, len(sugs))
	for i, s := range sugs {
		out[i] = s.Type
	}
	return out
}

func TestGenerateForFile_SingletonScenario(t *testing.T) {
	gen, st, fs := setupGenerator(t)
	// The comment keeps the ratio above the documentation threshold so the
	// only finding is the pattern itself.
	writeFixture(t, fs, "cache.py", `# simple in-process cache holder
class Cache:
    _instance = None

    def get_instance(cls):
        if cls._instance is None:
            cls._instance = cls()
        return cls._instance
`)

	ids, err := gen.GenerateForFile(context.Background(), "cache.py")
	if err != nil {
		t.Fatalf("GenerateForFile failed: %v", err)
	}
	if len(ids) != 1 {
		all, _ := st.All()
		t.Fatalf("expected exactly one suggestion, got %d: %v", len(ids), typesOf(all))
	}

	sug, err := st.Get(ids[0])
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sug.Type != "pattern_singleton" {
		t.Errorf("type: got %q, want pattern_singleton", sug.Type)
	}
	if sug.Location.ClassName != "Cache" || sug.Location.StartLine != 2 {
		t.Errorf("location: %+v", sug.Location)
	}
	if sug.CodeExample == "" || !strings.Contains(sug.Recommendation, "Consider refactoring") {
		t.Errorf("catalog enrichment missing: %+v", sug)
	}
}

func TestGenerateForFile_BlankFileScenario(t *testing.T) {
	gen, st, fs := setupGenerator(t)
	writeFixture(t, fs, "empty.py", strings.Repeat("\n", 600))

	ids, err := gen.GenerateForFile(context.Background(), "empty.py")
	if err != nil {
		t.Fatalf("GenerateForFile failed: %v", err)
	}

	all, _ := st.All()
	got := typesOf(all)
	want := []string{TypeOrganization, TypeDocumentation}
	if len(ids) != 2 || len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("suggestion types: got %v, want %v", got, want)
	}
}

// complexFunc builds a function body with the given number of if statements,
// yielding complexity branches+1.
func complexFunc(name string, branches int) string {
	var b strings.Builder
	b.WriteString("def " + name + "(x):\n")
	for i := 0; i < branches; i++ {
		b.WriteString("    if x:\n        pass\n")
	}
	b.WriteString("    return x\n")
	return b.String()
}

func TestGenerateForFile_ComplexityBoundary(t *testing.T) {
	t.Run("max function exactly 10 does not fire", func(t *testing.T) {
		gen, st, fs := setupGenerator(t)
		// Three functions of complexity 10: total 31 (>20), max 10 (not >10).
		src := complexFunc("a", 9) + complexFunc("b", 9) + complexFunc("c", 9)
		writeFixture(t, fs, "borderline.py", src)

		if _, err := gen.GenerateForFile(context.Background(), "borderline.py"); err != nil {
			t.Fatalf("GenerateForFile failed: %v", err)
		}
		all, _ := st.All()
		for _, s := range all {
			if s.Type == TypeComplexity {
				t.Errorf("complexity rule fired at max function complexity 10")
			}
		}
	})

	t.Run("max function 11 fires medium", func(t *testing.T) {
		gen, st, fs := setupGenerator(t)
		src := complexFunc("a", 10) + complexFunc("b", 9) + complexFunc("c", 9)
		writeFixture(t, fs, "over.py", src)

		if _, err := gen.GenerateForFile(context.Background(), "over.py"); err != nil {
			t.Fatalf("GenerateForFile failed: %v", err)
		}
		all, _ := st.All()
		found := false
		for _, s := range all {
			if s.Type == TypeComplexity {
				found = true
				if s.Severity != models.SeverityMedium {
					t.Errorf("severity at complexity 11: got %s, want medium", s.Severity)
				}
				if s.Location.StartLine != 1 {
					t.Errorf("location should be the worst function's line, got %d", s.Location.StartLine)
				}
			}
		}
		if !found {
			t.Error("complexity rule did not fire at max function complexity 11")
		}
	})

	t.Run("max function over 15 fires high", func(t *testing.T) {
		gen, st, fs := setupGenerator(t)
		src := complexFunc("a", 16) + complexFunc("b", 9)
		writeFixture(t, fs, "severe.py", src)

		if _, err := gen.GenerateForFile(context.Background(), "severe.py"); err != nil {
			t.Fatalf("GenerateForFile failed: %v", err)
		}
		all, _ := st.All()
		for _, s := range all {
			if s.Type == TypeComplexity && s.Severity != models.SeverityHigh {
				t.Errorf("severity at complexity 17: got %s, want high", s.Severity)
			}
		}
	})
}

func TestGenerateForFile_MaintainabilityBoundary(t *testing.T) {
	// One function of complexity 12 with zero comments gives an index of
	// exactly 100 - 60 + 0 = 40, which must not fire (<40 strictly).
	t.Run("index exactly 40 does not fire", func(t *testing.T) {
		gen, st, fs := setupGenerator(t)
		writeFixture(t, fs, "at40.py", complexFunc("f", 11))

		if _, err := gen.GenerateForFile(context.Background(), "at40.py"); err != nil {
			t.Fatalf("GenerateForFile failed: %v", err)
		}
		all, _ := st.All()
		for _, s := range all {
			if s.Type == TypeMaintainability {
				t.Error("maintainability rule fired at index exactly 40")
			}
		}
	})

	t.Run("index below 40 fires", func(t *testing.T) {
		gen, st, fs := setupGenerator(t)
		// Complexity 13: index 100 - 65 = 35, medium band.
		writeFixture(t, fs, "below40.py", complexFunc("f", 12))

		if _, err := gen.GenerateForFile(context.Background(), "below40.py"); err != nil {
			t.Fatalf("GenerateForFile failed: %v", err)
		}
		all, _ := st.All()
		found := false
		for _, s := range all {
			if s.Type == TypeMaintainability {
				found = true
				if s.Severity != models.SeverityMedium {
					t.Errorf("severity at index 35: got %s, want medium", s.Severity)
				}
			}
		}
		if !found {
			t.Error("maintainability rule did not fire at index 35")
		}
	})
}

func TestGenerateForFile_UnparseableContributesNothing(t *testing.T) {
	gen, st, fs := setupGenerator(t)
	writeFixture(t, fs, "broken.py", "def broken(:\n    pass\n")

	ids, err := gen.GenerateForFile(context.Background(), "broken.py")
	if err != nil {
		t.Fatalf("parse failure must not be an error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("unparseable file produced ids %v", ids)
	}
	all, _ := st.All()
	if len(all) != 0 {
		t.Errorf("unparseable file wrote %d suggestions to the store", len(all))
	}
}

func TestGenerateForFile_MissingFilePropagates(t *testing.T) {
	gen, _, _ := setupGenerator(t)
	if _, err := gen.GenerateForFile(context.Background(), "nope.py"); err == nil {
		t.Fatal("missing file must propagate an error")
	}
}

func TestGenerateForFile_AppendsByDefault(t *testing.T) {
	gen, st, fs := setupGenerator(t)
	writeFixture(t, fs, "empty.py", strings.Repeat("\n", 600))

	first, err := gen.GenerateForFile(context.Background(), "empty.py")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := gen.GenerateForFile(context.Background(), "empty.py")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("re-analysis should append the same suggestions again: %d vs %d", len(second), len(first))
	}
	if second[0] <= first[len(first)-1] {
		t.Errorf("appended ids must be new: first %v, second %v", first, second)
	}
	all, _ := st.All()
	if len(all) != len(first)+len(second) {
		t.Errorf("store should hold both runs, got %d", len(all))
	}
}

func TestGenerateForFile_DedupeSkipsRepeats(t *testing.T) {
	gen, st, fs := setupGenerator(t)
	gen.Dedupe = true
	writeFixture(t, fs, "empty.py", strings.Repeat("\n", 600))

	first, err := gen.GenerateForFile(context.Background(), "empty.py")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := gen.GenerateForFile(context.Background(), "empty.py")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("dedupe run should add nothing, got ids %v", second)
	}
	all, _ := st.All()
	if len(all) != len(first) {
		t.Errorf("store should hold one run's worth, got %d", len(all))
	}
}

func TestAnalyzeDirectory_ContinuesPastFailures(t *testing.T) {
	gen, st, fs := setupGenerator(t)
	writeFixture(t, fs, "proj/good.py", strings.Repeat("\n", 600))
	writeFixture(t, fs, "proj/unparseable.py", "def broken(:\n")
	writeFixture(t, fs, "proj/venv/ignored.py", strings.Repeat("\n", 600))
	writeFixture(t, fs, "proj/notes.txt", "not python")

	rep, err := gen.AnalyzeDirectory(context.Background(), "proj")
	if err != nil {
		t.Fatalf("AnalyzeDirectory failed: %v", err)
	}
	if rep.RunID == "" {
		t.Error("batch report should carry a run id")
	}
	// The unparseable file is analyzed (zero suggestions), not a failure.
	if rep.AnalyzedFiles != 2 {
		t.Errorf("analyzed files: got %d, want 2", rep.AnalyzedFiles)
	}
	if len(rep.Failures) != 0 {
		t.Errorf("unexpected failures: %+v", rep.Failures)
	}

	all, _ := st.All()
	for _, s := range all {
		if strings.Contains(s.Location.FilePath, "venv") {
			t.Errorf("virtualenv file was analyzed: %s", s.Location.FilePath)
		}
	}
}

func TestGenerateForFile_FrameworkFindings(t *testing.T) {
	gen, st, fs := setupGenerator(t)
	writeFixture(t, fs, "views.py", `# flask views
# handlers below
@app.route("/items", methods=["POST"])
def create_item():
    return make_item()
`)

	if _, err := gen.GenerateForFile(context.Background(), "views.py"); err != nil {
		t.Fatalf("GenerateForFile failed: %v", err)
	}
	all, _ := st.All()
	found := false
	for _, s := range all {
		if s.Type == "framework_route_auth" {
			found = true
			if s.Severity != models.SeverityHigh {
				t.Errorf("route auth severity: got %s, want high", s.Severity)
			}
		}
	}
	if !found {
		t.Errorf("expected a framework_route_auth suggestion, got %v", typesOf(all))
	}
}
