// Package patterns detects structural design-pattern occurrences in parsed
// Python sources and carries the read-only catalog describing each pattern.
//
// Every detection here is heuristic and intentionally imprecise: the rules
// match structure, not intent, and both false positives and false negatives
// are accepted. A class can satisfy several patterns at once (a Decorator
// match is always also an Adapter match); overlaps are reported, not ranked.
package patterns

import (
	"strings"

	"github.com/pylens/pylens/internal/pyast"
)

// Name identifies one of the catalog's patterns.
type Name string

const (
	Singleton     Name = "singleton"
	FactoryMethod Name = "factory_method"
	Observer      Name = "observer"
	Strategy      Name = "strategy"
	Decorator     Name = "decorator"
	Adapter       Name = "adapter"
)

// All lists every pattern the matcher can emit, in detection order.
func All() []Name {
	return []Name{Singleton, FactoryMethod, Observer, Strategy, Decorator, Adapter}
}

// Occurrence is one pattern hit: the class it matched and its line.
type Occurrence struct {
	Pattern Name   `json:"pattern"`
	Subject string `json:"subject_name"`
	Line    int    `json:"line"`
}

// Matcher runs the pattern heuristics over one file's tree.
type Matcher struct{}

// NewMatcher returns a Matcher.
func NewMatcher() *Matcher { return &Matcher{} }

// Detect returns the occurrences per pattern for a successfully parsed tree.
// Patterns with no hits are omitted from the map entirely.
func (m *Matcher) Detect(tree *pyast.Tree) map[Name][]Occurrence {
	out := make(map[Name][]Occurrence)
	add := func(p Name, c pyast.Class) {
		out[p] = append(out[p], Occurrence{Pattern: p, Subject: c.Name, Line: c.Line})
	}

	for _, class := range tree.Classes() {
		if isSingleton(class) {
			add(Singleton, class)
		}
		if isFactoryMethod(class) {
			add(FactoryMethod, class)
		}
		if isObserver(class) {
			add(Observer, class)
		}
		if isStrategy(class) {
			add(Strategy, class)
		}
		if isDecorator(class) {
			add(Decorator, class)
		}
		if isAdapter(class) {
			add(Adapter, class)
		}
	}
	return out
}

// isSingleton: an instance-holder assignment at class-body scope named
// _instance*/__instance*, and a constructor hook (__new__) or a method whose
// name contains get_instance/getinstance. Both conditions are required.
func isSingleton(c pyast.Class) bool {
	hasHolder := false
	for _, a := range c.ClassAssigns() {
		if strings.HasPrefix(a.Target, "_instance") || strings.HasPrefix(a.Target, "__instance") {
			hasHolder = true
			break
		}
	}
	if !hasHolder {
		return false
	}
	for _, meth := range c.Methods() {
		lower := strings.ToLower(meth.Name)
		if meth.Name == "__new__" || strings.Contains(lower, "get_instance") || strings.Contains(lower, "getinstance") {
			return true
		}
	}
	return false
}

var factoryTerms = []string{"create", "build", "make", "generate", "factory"}

// isFactoryMethod: a method whose name contains a factory term and whose body
// returns a call. The returned type is not verified.
func isFactoryMethod(c pyast.Class) bool {
	for _, meth := range c.Methods() {
		lower := strings.ToLower(meth.Name)
		for _, term := range factoryTerms {
			if strings.Contains(lower, term) && meth.HasReturnCall() {
				return true
			}
		}
	}
	return false
}

var (
	observerMethodTerms = []string{"add_observer", "remove_observer", "notify", "subscribe", "unsubscribe"}
	observerAttrTerms   = []string{"observer", "listener", "subscriber"}
)

// isObserver: at least two observer-management methods, or an instance
// attribute that looks like an observer collection.
func isObserver(c pyast.Class) bool {
	matched := make(map[string]bool)
	for _, meth := range c.Methods() {
		lower := strings.ToLower(meth.Name)
		for _, term := range observerMethodTerms {
			if strings.Contains(lower, term) {
				matched[lower] = true
				break
			}
		}
	}
	if len(matched) >= 2 {
		return true
	}
	for _, attr := range c.InstanceAttrs() {
		lower := strings.ToLower(attr)
		for _, term := range observerAttrTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}

// isStrategy: __init__ takes at least one non-self parameter and stores one
// of them verbatim on self. Purely structural; interchangeability of the
// stored object is not checked.
func isStrategy(c pyast.Class) bool {
	init, ok := findInit(c)
	if !ok {
		return false
	}
	params := nonSelfParams(init)
	if len(params) == 0 {
		return false
	}
	for _, sa := range init.SelfAssigns() {
		if sa.ValueName != "" && params[sa.ValueName] {
			return true
		}
	}
	return false
}

// isDecorator: __init__ stores a parameter on self, and a non-dunder method
// forwards a call of its own name through some self attribute.
func isDecorator(c pyast.Class) bool {
	init, ok := findInit(c)
	if !ok {
		return false
	}
	params := nonSelfParams(init)
	storesParam := false
	for _, sa := range init.SelfAssigns() {
		if sa.ValueName != "" && params[sa.ValueName] {
			storesParam = true
			break
		}
	}
	if !storesParam {
		return false
	}
	for _, meth := range c.Methods() {
		if isDunder(meth.Name) {
			continue
		}
		for _, call := range meth.SelfAttrCalls() {
			if call.Method == meth.Name {
				return true
			}
		}
	}
	return false
}

// isAdapter: __init__ assigns to some self attribute, and a non-dunder
// method calls any method on any self attribute. Deliberately weaker than
// the Decorator rule.
func isAdapter(c pyast.Class) bool {
	init, ok := findInit(c)
	if !ok || len(init.SelfAssigns()) == 0 {
		return false
	}
	for _, meth := range c.Methods() {
		if isDunder(meth.Name) {
			continue
		}
		if len(meth.SelfAttrCalls()) > 0 {
			return true
		}
	}
	return false
}

func findInit(c pyast.Class) (pyast.Function, bool) {
	for _, meth := range c.Methods() {
		if meth.Name == "__init__" {
			return meth, true
		}
	}
	return pyast.Function{}, false
}

func nonSelfParams(f pyast.Function) map[string]bool {
	out := make(map[string]bool)
	for i, p := range f.Params() {
		if i == 0 && (p == "self" || p == "cls") {
			continue
		}
		out[p] = true
	}
	return out
}

func isDunder(name string) bool {
	return strings.HasPrefix(name, "__")
}
