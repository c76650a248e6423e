// Package frameworks holds thin web-framework checks layered on top of the
// generic analysis: route handlers without auth, settings left in debug
// shape, and query calls inside loops. The checks key off naming conventions
// shared by Flask, Django and FastAPI and make no attempt to resolve imports.
package frameworks

import (
	"strings"

	"github.com/pylens/pylens/internal/pyast"
)

// Rule identifiers for findings.
const (
	RuleRouteAuth       = "framework_route_auth"
	RuleInsecureSetting = "framework_insecure_setting"
	RuleNPlusOne        = "framework_n_plus_one"
)

// Finding is one framework-level issue in a file.
type Finding struct {
	Rule    string `json:"rule"`
	Subject string `json:"subject"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

var routeDecorators = []string{
	"app.route", "app.get", "app.post", "app.put", "app.delete", "app.patch",
	"router.get", "router.post", "router.put", "router.delete", "router.patch",
	"api_view", "blueprint.route", "bp.route",
}

var mutatingMarkers = []string{
	"post", "put", "delete", "patch",
}

var authDecorators = []string{
	"login_required", "permission_classes", "requires_auth", "auth_required",
	"permission_required", "jwt_required",
}

var ormCallMarkers = []string{
	".objects.filter", ".objects.get", ".objects.all",
	"session.query", ".query.filter", ".query.get", ".execute",
}

// Detect runs every framework check over one parsed file.
func Detect(tree *pyast.Tree) []Finding {
	var out []Finding
	out = append(out, detectUnprotectedRoutes(tree)...)
	out = append(out, detectInsecureSettings(tree)...)
	out = append(out, detectQueriesInLoops(tree)...)
	return out
}

// detectUnprotectedRoutes flags route handlers that accept mutating HTTP
// methods but carry no recognizable auth decorator.
func detectUnprotectedRoutes(tree *pyast.Tree) []Finding {
	var out []Finding
	for _, fn := range tree.Functions() {
		decos := fn.Decorators()
		if len(decos) == 0 {
			continue
		}
		route, mutating, authed := "", false, false
		for _, d := range decos {
			lower := strings.ToLower(d)
			for _, marker := range routeDecorators {
				if strings.HasPrefix(lower, marker) {
					route = d
					for _, m := range mutatingMarkers {
						if strings.Contains(lower, m) {
							mutating = true
						}
					}
				}
			}
			for _, a := range authDecorators {
				if strings.Contains(lower, a) {
					authed = true
				}
			}
		}
		if route != "" && mutating && !authed {
			out = append(out, Finding{
				Rule:    RuleRouteAuth,
				Subject: fn.Name,
				Line:    fn.Line,
				Message: "mutating route handler has no auth decorator (" + route + ")",
			})
		}
	}
	return out
}

// detectInsecureSettings flags DEBUG left on and secret keys hardcoded as
// string literals at module scope.
func detectInsecureSettings(tree *pyast.Tree) []Finding {
	var out []Finding
	for _, ma := range tree.ModuleAssigns() {
		switch {
		case ma.Target == "DEBUG" && ma.ValueText == "True":
			out = append(out, Finding{
				Rule:    RuleInsecureSetting,
				Subject: ma.Target,
				Line:    ma.Line,
				Message: "DEBUG is enabled at module scope",
			})
		case strings.Contains(ma.Target, "SECRET_KEY") && isStringLiteral(ma.ValueText):
			out = append(out, Finding{
				Rule:    RuleInsecureSetting,
				Subject: ma.Target,
				Line:    ma.Line,
				Message: "secret key is hardcoded as a string literal",
			})
		}
	}
	return out
}

func isStringLiteral(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, `"`) || strings.HasPrefix(text, `'`)
}

// detectQueriesInLoops flags ORM-looking calls executed inside for or while
// bodies, the usual N+1 shape.
func detectQueriesInLoops(tree *pyast.Tree) []Finding {
	var out []Finding
	for _, call := range tree.Calls(nil) {
		if !pyast.InsideLoop(call.Node) {
			continue
		}
		lower := strings.ToLower(call.FuncText)
		for _, marker := range ormCallMarkers {
			if strings.Contains(lower, marker) {
				out = append(out, Finding{
					Rule:    RuleNPlusOne,
					Subject: call.FuncText,
					Line:    call.Line,
					Message: "query call inside a loop, likely N+1 access",
				})
				break
			}
		}
	}
	return out
}
