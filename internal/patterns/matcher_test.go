package patterns

import (
	"context"
	"testing"

	"github.com/pylens/pylens/internal/pyast"
)

func detect(t *testing.T, src string) map[Name][]Occurrence {
	t.Helper()
	tree, err := pyast.Parse(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	t.Cleanup(tree.Close)
	return NewMatcher().Detect(tree)
}

func TestDetect_Singleton(t *testing.T) {
	got := detect(t, `
class Cache:
    _instance = None

    def __new__(cls):
        if cls._instance is None:
            cls._instance = super().__new__(cls)
        return cls._instance
`)
	occ := got[Singleton]
	if len(occ) != 1 || occ[0].Subject != "Cache" {
		t.Fatalf("singleton occurrences: %+v", occ)
	}
	if occ[0].Line != 2 {
		t.Errorf("singleton line: got %d, want 2", occ[0].Line)
	}
}

func TestDetect_SingletonRequiresBothHalves(t *testing.T) {
	// Holder attribute without the access method is not enough.
	got := detect(t, `
class Config:
    _instance = None

    def reload(self):
        pass
`)
	if len(got[Singleton]) != 0 {
		t.Errorf("holder without accessor should not match: %+v", got[Singleton])
	}

	// Accessor without the holder attribute is not enough either.
	got = detect(t, `
class Config:
    def get_instance(self):
        return self
`)
	if len(got[Singleton]) != 0 {
		t.Errorf("accessor without holder should not match: %+v", got[Singleton])
	}
}

func TestDetect_FactoryMethod(t *testing.T) {
	got := detect(t, `
class ReportFactory:
    def create_report(self, kind):
        if kind == "pdf":
            return PdfReport()
        return HtmlReport()
`)
	if len(got[FactoryMethod]) != 1 {
		t.Fatalf("factory occurrences: %+v", got[FactoryMethod])
	}

	// A create-named method that never returns a call does not match.
	got = detect(t, `
class ReportFactory:
    def create_report(self, kind):
        self.kind = kind
`)
	if len(got[FactoryMethod]) != 0 {
		t.Errorf("factory without return-call should not match: %+v", got[FactoryMethod])
	}
}

func TestDetect_Observer(t *testing.T) {
	byMethods := detect(t, `
class EventBus:
    def subscribe(self, fn):
        pass

    def notify_all(self):
        pass
`)
	if len(byMethods[Observer]) != 1 {
		t.Errorf("observer by methods: %+v", byMethods[Observer])
	}

	byAttr := detect(t, `
class Feed:
    def __init__(self):
        self.listeners = []
`)
	if len(byAttr[Observer]) != 1 {
		t.Errorf("observer by attribute: %+v", byAttr[Observer])
	}

	oneMethod := detect(t, `
class Feed:
    def notify(self):
        pass
`)
	if len(oneMethod[Observer]) != 0 {
		t.Errorf("single management method should not match: %+v", oneMethod[Observer])
	}
}

func TestDetect_Strategy(t *testing.T) {
	got := detect(t, `
class Sorter:
    def __init__(self, strategy):
        self.strategy = strategy
`)
	if len(got[Strategy]) != 1 {
		t.Errorf("strategy occurrences: %+v", got[Strategy])
	}

	// Storing a literal, not a parameter, does not match.
	got = detect(t, `
class Sorter:
    def __init__(self, strategy):
        self.strategy = None
`)
	if len(got[Strategy]) != 0 {
		t.Errorf("literal store should not match strategy: %+v", got[Strategy])
	}
}

func TestDetect_DecoratorImpliesAdapter(t *testing.T) {
	got := detect(t, `
class LoggingWrapper:
    def __init__(self, inner):
        self.inner = inner

    def run(self):
        return self.inner.run()
`)
	if len(got[Decorator]) != 1 {
		t.Errorf("decorator occurrences: %+v", got[Decorator])
	}
	// The decorator rule is strictly stronger, so the adapter rule fires too.
	if len(got[Adapter]) != 1 {
		t.Errorf("adapter should also match: %+v", got[Adapter])
	}
}

func TestDetect_AdapterOnly(t *testing.T) {
	// Forwarded method name differs, so only the adapter rule matches.
	got := detect(t, `
class LegacyAdapter:
    def __init__(self, legacy):
        self.legacy = legacy

    def request(self):
        return self.legacy.specific_request()
`)
	if len(got[Adapter]) != 1 {
		t.Errorf("adapter occurrences: %+v", got[Adapter])
	}
	if len(got[Decorator]) != 0 {
		t.Errorf("decorator should not match: %+v", got[Decorator])
	}
}

func TestDetect_EmptyPatternsOmitted(t *testing.T) {
	got := detect(t, `
def lonely():
    pass
`)
	if len(got) != 0 {
		t.Errorf("no classes should mean an empty map, got %+v", got)
	}
}
