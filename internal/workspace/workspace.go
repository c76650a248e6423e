// Package workspace wires the application's components together so commands
// receive their dependencies instead of reaching for globals.
package workspace

import (
	"fmt"

	"github.com/pylens/pylens/internal/config"
	"github.com/pylens/pylens/internal/fileops"
	"github.com/pylens/pylens/internal/refactor"
	"github.com/pylens/pylens/internal/suggest"
	"github.com/pylens/pylens/llm"
	"github.com/pylens/pylens/store"
)

// Workspace carries the assembled components for one CLI invocation.
type Workspace struct {
	Store     store.SuggestionStore
	Files     *fileops.Files
	Generator *suggest.Generator
	Oracle    llm.Provider
	Refactor  *refactor.Engine
}

// Open builds a workspace from the loaded configuration. withOracle controls
// whether a completion backend is constructed; commands that never call the
// oracle skip it so no credentials are required.
func Open(withOracle bool) (*Workspace, error) {
	st := store.NewFileSuggestionStore()
	if err := st.Initialize(config.StoreConfig()); err != nil {
		return nil, fmt.Errorf("initializing suggestion store: %w", err)
	}

	files := fileops.New(nil)
	gen := suggest.NewGenerator(st, files)
	gen.Dedupe = config.Dedupe()

	ws := &Workspace{
		Store:     st,
		Files:     files,
		Generator: gen,
	}

	if withOracle {
		oracle, err := llm.NewProvider(config.LLMConfig())
		if err != nil {
			return nil, err
		}
		ws.Oracle = oracle
	}
	ws.Refactor = refactor.NewEngine(st, ws.Oracle, files)

	return ws, nil
}

// Close releases held resources.
func (w *Workspace) Close() error {
	if w.Store == nil {
		return nil
	}
	return w.Store.Close()
}
