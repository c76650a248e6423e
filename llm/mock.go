package llm

import (
	"context"
	"strings"
)

// MockProvider answers every prompt with canned text so the tool stays usable
// without credentials and tests stay offline. The response shape mirrors what
// a real backend returns for a refactoring prompt.
type MockProvider struct{}

// NewMockProvider returns the offline provider.
func NewMockProvider() *MockProvider { return &MockProvider{} }

func (MockProvider) Name() string { return "mock" }

func (MockProvider) Complete(_ context.Context, prompt string, _ int) (string, error) {
	if strings.Contains(strings.ToLower(prompt), "refactor") {
		return mockRefactorResponse, nil
	}
	return mockAnalysisResponse, nil
}

const mockAnalysisResponse = `Analysis (offline mode):

1. Consider extracting long methods into smaller, focused helpers.
2. Classes holding both construction and business logic may benefit from a
   factory.
3. Repeated conditional dispatch over a type field usually indicates a
   missing strategy object.

Configure a real provider with an API key for project-specific analysis.`

const mockRefactorResponse = "```python\n" + `# Refactored example (offline mode). Configure a real provider
# with an API key to generate code for your suggestion.

class Example:
    def __init__(self, collaborator):
        self._collaborator = collaborator

    def run(self):
        return self._collaborator.run()
` + "```"
