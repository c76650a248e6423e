package patterns

import "strings"

// Info is the catalog entry for one design pattern: the human-readable
// knowledge the suggestion pipeline attaches to a match.
type Info struct {
	Name               string
	Description        string
	Benefits           []string
	Drawbacks          []string
	ImplementationTips []string
	RefactoringTips    []string
	Example            string
}

// Catalog is the read-only pattern knowledge base. It is fully populated at
// construction and never mutated afterwards; lookups are case-insensitive.
type Catalog struct {
	entries map[string]Info
}

// NewCatalog builds the catalog with every pattern the matcher can emit.
func NewCatalog() *Catalog {
	c := &Catalog{entries: make(map[string]Info)}
	for _, info := range builtinPatterns {
		c.entries[strings.ToLower(info.Name)] = info
	}
	// Matcher names use snake_case; index those too.
	c.entries["factory_method"] = c.entries["factory method"]
	return c
}

// Get returns the entry for a pattern name, case-insensitively.
func (c *Catalog) Get(name string) (Info, bool) {
	info, ok := c.entries[strings.ToLower(name)]
	return info, ok
}

// Names returns every pattern name the matcher can emit.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(All()))
	for _, n := range All() {
		out = append(out, string(n))
	}
	return out
}

// Applicability returns a short "when to use" description for a pattern, or
// a digest of its benefits when no specific text exists.
func (c *Catalog) Applicability(name string) string {
	if text, ok := applicability[strings.ToLower(name)]; ok {
		return text
	}
	info, ok := c.Get(name)
	if !ok {
		return ""
	}
	n := len(info.Benefits)
	if n > 3 {
		n = 3
	}
	return strings.Join(info.Benefits[:n], "; ")
}

// Related returns related patterns and how they relate.
func (c *Catalog) Related(name string) map[string]string {
	return related[strings.ToLower(name)]
}

var applicability = map[string]string{
	"singleton":      "One shared instance across the application; lazy initialization of an expensive object; centralized state or configuration; coordinated access to a shared resource.",
	"factory_method": "The concrete type to create is not known up front; creation logic should be separated from use; new product types must not require changes to existing code.",
	"observer":       "State changes must notify several objects; publish/subscribe relationships; relationships between objects established at runtime; UI event handling.",
	"strategy":       "Several interchangeable algorithm variants; replacing large conditional blocks; selecting an algorithm at runtime; hiding algorithm details from the caller.",
	"decorator":      "Adding behavior to objects without changing their structure; responsibilities added and removed at runtime; subclassing would cause a class explosion.",
	"adapter":        "Integrating a class with an incompatible interface; wrapping third-party or legacy code without modifying it; unifying interfaces across implementations.",
}

var related = map[string]map[string]string{
	"singleton": {
		"Factory Method": "a factory can use a singleton to manage created objects",
	},
	"factory_method": {
		"Abstract Factory": "often implemented with factory methods",
		"Template Method":  "a factory method is a specialized template method",
	},
	"observer": {
		"Mediator": "a common alternative for complex notification graphs",
		"Strategy": "useful when strategies must react to context changes",
	},
	"strategy": {
		"Command": "a command is a special form of strategy",
		"State":   "structurally similar but changes behavior by internal state",
	},
	"decorator": {
		"Composite": "a decorator is a composite with a single component",
		"Adapter":   "a decorator adds behavior, an adapter changes the interface",
	},
	"adapter": {
		"Bridge":    "designed up front, where an adapter retrofits",
		"Decorator": "an adapter changes the interface, a decorator adds behavior",
		"Proxy":     "a proxy keeps the same interface, an adapter changes it",
	},
}

var builtinPatterns = []Info{
	{
		Name:        "Singleton",
		Description: "Ensures a class has only one instance and provides a global access point to it.",
		Benefits: []string{
			"Controlled access to the sole instance",
			"Reduced namespace pollution",
			"Permits refinement of operations and representation",
			"More flexible than class-level operations",
		},
		Drawbacks: []string{
			"Makes unit testing difficult",
			"Introduces global state into the application",
			"Can cause thread-safety issues if implemented carelessly",
		},
		ImplementationTips: []string{
			"Use a class method to own instance creation",
			"Make the constructor private or protected",
			"Consider thread safety in concurrent applications",
			"Prefer lazy initialization for expensive resources",
		},
		RefactoringTips: []string{
			"Ask whether the singleton is truly necessary - dependency injection often serves better",
			"Ensure thread safety with an appropriate synchronization mechanism",
			"Consider a metaclass for a cleaner implementation",
			"Handle serialization and deserialization explicitly",
		},
		Example: `class Singleton:
    _instance = None

    def __new__(cls, *args, **kwargs):
        if cls._instance is None:
            cls._instance = super().__new__(cls)
        return cls._instance

    @classmethod
    def get_instance(cls):
        if cls._instance is None:
            cls._instance = cls()
        return cls._instance
`,
	},
	{
		Name:        "Factory Method",
		Description: "Defines an interface for creating an object while letting subclasses decide which class to instantiate.",
		Benefits: []string{
			"Removes the need to bind application-specific classes into the code",
			"Creates objects through inheritance rather than direct instantiation",
			"Connects parallel class hierarchies",
			"Promotes loose coupling by reducing dependence on concrete classes",
		},
		Drawbacks: []string{
			"Can produce many small, similar creator classes",
			"May add complexity by requiring new subclasses",
		},
		ImplementationTips: []string{
			"Return objects that implement a common interface",
			"Let subclasses override the factory method to change the product",
			"Consider a default implementation of the factory method",
			"Use factory methods to connect parts of the system that must cooperate",
		},
		RefactoringTips: []string{
			"Extract common factory code from concrete creators into a base class",
			"Consider a parameterized factory method instead of several specialized ones",
			"Drive product selection from configuration or the environment",
			"Combine with Abstract Factory for families of related products",
		},
		Example: `from abc import ABC, abstractmethod

class Product(ABC):
    @abstractmethod
    def operation(self):
        pass

class ConcreteProductA(Product):
    def operation(self):
        return "result of ConcreteProductA"

class Creator(ABC):
    @abstractmethod
    def factory_method(self):
        pass

    def some_operation(self):
        product = self.factory_method()
        return f"creator: {product.operation()}"

class ConcreteCreatorA(Creator):
    def factory_method(self):
        return ConcreteProductA()
`,
	},
	{
		Name:        "Observer",
		Description: "Defines a one-to-many dependency so that when one object changes state, all its dependents are notified automatically.",
		Benefits: []string{
			"Supports loose coupling between subject and observers",
			"Broadcasts data to any number of interested objects",
			"Relationships can be added and removed at runtime",
		},
		Drawbacks: []string{
			"Observers are notified in unspecified order",
			"Strong references from the subject can leak memory",
			"Many observers or frequent updates can hurt performance",
		},
		ImplementationTips: []string{
			"Define a clear notification interface for observers",
			"Consider weak references to observers to avoid leaks",
			"Pass only the changed data rather than the whole state",
			"Consider thread safety for concurrent applications",
		},
		RefactoringTips: []string{
			"Extract observer management into a reusable base class",
			"For simple cases, prefer events or plain callbacks",
			"Use weak references where observers may be garbage collected",
			"Consider a mediator for complex observer relationships",
		},
		Example: `from abc import ABC, abstractmethod

class Observer(ABC):
    @abstractmethod
    def update(self, subject):
        pass

class Subject:
    def __init__(self):
        self._observers = []
        self._state = None

    def attach(self, observer):
        if observer not in self._observers:
            self._observers.append(observer)

    def detach(self, observer):
        self._observers.remove(observer)

    def notify(self):
        for observer in self._observers:
            observer.update(self)
`,
	},
	{
		Name:        "Strategy",
		Description: "Defines a family of algorithms, encapsulates each one, and makes them interchangeable.",
		Benefits: []string{
			"Encapsulates each algorithm in its own class",
			"Algorithms can be swapped at runtime",
			"Avoids conditional statements over algorithm variants",
			"New strategies require no changes to existing code",
		},
		Drawbacks: []string{
			"Clients must know the available strategies",
			"Increases the number of objects in the application",
			"Overkill for trivial algorithm variants",
		},
		ImplementationTips: []string{
			"Define the family of interchangeable algorithms behind one interface",
			"Encapsulate each algorithm in its own class",
			"Accept the strategy in the context's constructor or a setter",
			"For simple strategies, a plain function may suffice",
		},
		RefactoringTips: []string{
			"Replace conditional logic (if/else chains) with strategy objects",
			"Extract code shared between strategies into a base class",
			"For simple strategies, prefer functions over classes",
			"Use a factory to instantiate the appropriate strategy",
		},
		Example: `from abc import ABC, abstractmethod

class Strategy(ABC):
    @abstractmethod
    def execute(self, data):
        pass

class Ascending(Strategy):
    def execute(self, data):
        return sorted(data)

class Descending(Strategy):
    def execute(self, data):
        return sorted(data, reverse=True)

class Context:
    def __init__(self, strategy):
        self._strategy = strategy

    def execute_strategy(self, data):
        return self._strategy.execute(data)
`,
	},
	{
		Name:        "Decorator",
		Description: "Attaches additional responsibilities to an object dynamically, as a flexible alternative to subclassing.",
		Benefits: []string{
			"More flexible than static inheritance",
			"Responsibilities can be added and removed at runtime",
			"Avoids feature-laden classes high in the hierarchy",
			"Keeps each concern in its own small class",
		},
		Drawbacks: []string{
			"Produces many small, similar-looking objects",
			"Can confuse readers unfamiliar with the pattern",
			"A decorator and its component are not type-identical",
		},
		ImplementationTips: []string{
			"Keep component and decorator behind one shared interface",
			"Have the decorator hold the component and delegate to it",
			"Keep each decorator focused on a single responsibility",
			"Compose multiple decorators for combined behavior",
		},
		RefactoringTips: []string{
			"Extract shared decorator plumbing into a base decorator class",
			"For function decoration, prefer Python's built-in decorator syntax",
			"Mind the ordering when stacking several decorators",
			"Consider a builder to assemble decorated objects",
		},
		Example: `class Component:
    def operation(self):
        return "component"

class Decorator:
    def __init__(self, component):
        self._component = component

    def operation(self):
        return f"decorated({self._component.operation()})"
`,
	},
	{
		Name:        "Adapter",
		Description: "Converts the interface of a class into another interface clients expect, letting otherwise incompatible classes work together.",
		Benefits: []string{
			"Lets classes with incompatible interfaces cooperate",
			"Promotes reuse of existing code",
			"Separates conversion code from core business logic",
			"Adds a level of indirection that aids flexibility",
		},
		Drawbacks: []string{
			"Adds complexity through a new class",
			"Sometimes modifying the adaptee directly is cleaner",
			"The indirection can cost performance",
		},
		ImplementationTips: []string{
			"Implement the target interface the client expects",
			"Compose the adaptee inside the adapter",
			"Delegate client requests to the adaptee, converting as needed",
			"Multiple inheritance can express a class adapter in Python",
		},
		RefactoringTips: []string{
			"Reach for an adapter when integrating existing systems with new code",
			"Build reusable adapters around external libraries",
			"Use adapters to unify interfaces across implementations",
			"Consider a facade when adapting several classes at once",
		},
		Example: `class Target:
    def request(self):
        return "target: default behavior"

class Adaptee:
    def specific_request(self):
        return "adaptee: special behavior"

class Adapter(Target):
    def __init__(self, adaptee):
        self.adaptee = adaptee

    def request(self):
        return f"adapter: translated {self.adaptee.specific_request()}"
`,
	},
}
