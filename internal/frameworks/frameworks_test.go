package frameworks

import (
	"context"
	"testing"

	"github.com/pylens/pylens/internal/pyast"
)

func findingsFor(t *testing.T, src string) []Finding {
	t.Helper()
	tree, err := pyast.Parse(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	t.Cleanup(tree.Close)
	return Detect(tree)
}

func rules(fs []Finding) map[string]int {
	out := map[string]int{}
	for _, f := range fs {
		out[f.Rule]++
	}
	return out
}

func TestDetect_UnprotectedMutatingRoute(t *testing.T) {
	got := findingsFor(t, `
@app.route("/items", methods=["POST"])
def create_item():
    return save()
`)
	if rules(got)[RuleRouteAuth] != 1 {
		t.Errorf("expected one route-auth finding, got %+v", got)
	}
}

func TestDetect_AuthedRouteIsFine(t *testing.T) {
	got := findingsFor(t, `
@app.route("/items", methods=["POST"])
@login_required
def create_item():
    return save()
`)
	if rules(got)[RuleRouteAuth] != 0 {
		t.Errorf("authenticated route flagged: %+v", got)
	}
}

func TestDetect_GetRouteIsFine(t *testing.T) {
	got := findingsFor(t, `
@app.route("/items")
def list_items():
    return load()
`)
	if rules(got)[RuleRouteAuth] != 0 {
		t.Errorf("read-only route flagged: %+v", got)
	}
}

func TestDetect_InsecureSettings(t *testing.T) {
	got := findingsFor(t, `
DEBUG = True
SECRET_KEY = "hunter2"
API_URL = os.environ["API_URL"]
`)
	if rules(got)[RuleInsecureSetting] != 2 {
		t.Errorf("expected DEBUG and SECRET_KEY findings, got %+v", got)
	}
}

func TestDetect_SecretFromEnvIsFine(t *testing.T) {
	got := findingsFor(t, `
SECRET_KEY = os.environ.get("SECRET_KEY")
DEBUG = False
`)
	if rules(got)[RuleInsecureSetting] != 0 {
		t.Errorf("environment-sourced settings flagged: %+v", got)
	}
}

func TestDetect_QueryInLoop(t *testing.T) {
	got := findingsFor(t, `
def load_authors(books):
    authors = []
    for book in books:
        authors.append(Author.objects.get(id=book.author_id))
    return authors
`)
	if rules(got)[RuleNPlusOne] != 1 {
		t.Errorf("expected one n-plus-one finding, got %+v", got)
	}
}

func TestDetect_QueryOutsideLoopIsFine(t *testing.T) {
	got := findingsFor(t, `
def load_authors(ids):
    return Author.objects.filter(id__in=ids)
`)
	if rules(got)[RuleNPlusOne] != 0 {
		t.Errorf("batched query flagged: %+v", got)
	}
}
