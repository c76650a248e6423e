package store

import (
	"errors"

	"github.com/pylens/pylens/models"
)

// ErrNotFound is returned when no suggestion with the requested ID exists.
var ErrNotFound = errors.New("suggestion not found")

// SuggestionStore persists analysis suggestions across runs. Implementations
// assign IDs, keep them monotonically increasing within one store file, and
// never reuse an ID after removal.
type SuggestionStore interface {
	// Initialize configures the store from string configuration. Supported
	// keys: "dataFile" (path to the store document) and "dataFileFormat"
	// ("json" or "yaml").
	Initialize(config map[string]string) error

	// Add persists a suggestion and returns its assigned ID.
	Add(s models.Suggestion) (int, error)

	// Get returns the suggestion with the given ID or ErrNotFound.
	Get(id int) (models.Suggestion, error)

	// All returns every stored suggestion in insertion order.
	All() ([]models.Suggestion, error)

	// ForFile returns suggestions whose location file path matches exactly.
	ForFile(path string) ([]models.Suggestion, error)

	// Pending returns suggestions not yet marked applied.
	Pending() ([]models.Suggestion, error)

	// MarkApplied marks a suggestion applied, stamping AppliedAt with the
	// current time. Marking an already-applied suggestion re-stamps it.
	// Returns false with ErrNotFound when the ID does not exist.
	MarkApplied(id int) (bool, error)

	// Remove deletes a suggestion. Returns false with ErrNotFound when the
	// ID does not exist. Removal never frees the ID for reuse.
	Remove(id int) (bool, error)

	// Close releases any held resources such as file locks.
	Close() error
}
