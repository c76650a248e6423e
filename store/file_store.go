package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	yaml "gopkg.in/yaml.v3"

	"github.com/pylens/pylens/models"
)

const (
	defaultDataFile   = "suggestions.json"
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
	formatJSON        = "json"
	formatYAML        = "yaml"
)

// FileSuggestionStore implements SuggestionStore on a single file holding a
// flat array of suggestions. Writes go through a temp file and rename so a
// crash never leaves a half-written document, and cross-process access is
// serialized with an advisory file lock.
type FileSuggestionStore struct {
	filePath    string
	format      string
	flk         *flock.Flock
	suggestions []models.Suggestion
	nextID      int
}

// NewFileSuggestionStore creates an unconfigured store; call Initialize
// before use.
func NewFileSuggestionStore() *FileSuggestionStore {
	return &FileSuggestionStore{nextID: 1}
}

// Initialize configures the store, creates the data file's directory when
// missing, and loads the existing document under an exclusive lock.
func (s *FileSuggestionStore) Initialize(config map[string]string) error {
	s.filePath = config[dataFileKey]
	if s.filePath == "" {
		s.filePath = defaultDataFile
	}

	switch format := strings.ToLower(config[dataFileFormatKey]); format {
	case "", formatJSON:
		s.format = formatJSON
	case formatYAML:
		s.format = formatYAML
	default:
		return fmt.Errorf("unsupported dataFileFormat %q: supported formats are json, yaml", format)
	}

	if dir := filepath.Dir(s.filePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	s.flk = flock.New(s.filePath + ".lock")
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock for %s: %w", s.filePath, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	return s.load()
}

// load reads the document and rebuilds the ID counter. A document that does
// not decode is reported loudly and replaced with an empty store; the next
// save overwrites it. Assumes the lock is held.
func (s *FileSuggestionStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.suggestions = nil
			return nil
		}
		return fmt.Errorf("failed to read store file %s: %w", s.filePath, err)
	}

	if len(data) == 0 {
		s.suggestions = nil
		return nil
	}

	var loaded []models.Suggestion
	switch s.format {
	case formatJSON:
		err = json.Unmarshal(data, &loaded)
	case formatYAML:
		err = yaml.Unmarshal(data, &loaded)
	}
	if err != nil {
		slog.Error("suggestion store is corrupt, starting empty",
			"path", s.filePath, "error", err)
		s.suggestions = nil
		return nil
	}

	s.suggestions = loaded
	// The counter only ever moves forward. Removing the highest ID and
	// adding again within one session must not hand the old ID back out.
	for _, sug := range loaded {
		if sug.ID >= s.nextID {
			s.nextID = sug.ID + 1
		}
	}
	return nil
}

// save marshals and atomically replaces the document. Assumes the lock is
// held.
func (s *FileSuggestionStore) save() error {
	doc := s.suggestions
	if doc == nil {
		doc = []models.Suggestion{}
	}

	var data []byte
	var err error
	switch s.format {
	case formatJSON:
		data, err = json.MarshalIndent(doc, "", "  ")
	case formatYAML:
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions to %s: %w", s.format, err)
	}

	tmpPath := s.filePath + ".tmp"
	defer func() { _ = os.Remove(tmpPath) }()
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary store file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("failed to replace store file %s: %w", s.filePath, err)
	}
	return nil
}

// withLock reloads the document under the file lock, runs fn, and saves when
// fn mutated the store.
func (s *FileSuggestionStore) withLock(mutate bool, fn func() error) error {
	if s.flk == nil {
		return errors.New("store not initialized")
	}
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock for %s: %w", s.filePath, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.load(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	if mutate {
		return s.save()
	}
	return nil
}

// Add validates the suggestion, assigns the next ID, and persists it.
func (s *FileSuggestionStore) Add(sug models.Suggestion) (int, error) {
	var id int
	err := s.withLock(true, func() error {
		sug.ID = s.nextID
		if sug.CreatedAt.IsZero() {
			sug.CreatedAt = time.Now().UTC()
		}
		if err := models.ValidateStruct(sug); err != nil {
			return fmt.Errorf("invalid suggestion: %w", err)
		}
		s.nextID++
		s.suggestions = append(s.suggestions, sug)
		id = sug.ID
		return nil
	})
	return id, err
}

// Get returns the suggestion with the given ID.
func (s *FileSuggestionStore) Get(id int) (models.Suggestion, error) {
	var found models.Suggestion
	err := s.withLock(false, func() error {
		for _, sug := range s.suggestions {
			if sug.ID == id {
				found = sug
				return nil
			}
		}
		return fmt.Errorf("suggestion %d: %w", id, ErrNotFound)
	})
	return found, err
}

// All returns every suggestion in insertion order.
func (s *FileSuggestionStore) All() ([]models.Suggestion, error) {
	var out []models.Suggestion
	err := s.withLock(false, func() error {
		out = append(out, s.suggestions...)
		return nil
	})
	return out, err
}

// ForFile returns suggestions whose file path matches exactly. No path
// normalization is applied; callers pass the same path they analyzed with.
func (s *FileSuggestionStore) ForFile(path string) ([]models.Suggestion, error) {
	var out []models.Suggestion
	err := s.withLock(false, func() error {
		for _, sug := range s.suggestions {
			if sug.Location.FilePath == path {
				out = append(out, sug)
			}
		}
		return nil
	})
	return out, err
}

// Pending returns suggestions not yet applied.
func (s *FileSuggestionStore) Pending() ([]models.Suggestion, error) {
	var out []models.Suggestion
	err := s.withLock(false, func() error {
		for _, sug := range s.suggestions {
			if !sug.Applied {
				out = append(out, sug)
			}
		}
		return nil
	})
	return out, err
}

// MarkApplied sets the applied flag and stamps AppliedAt. An already-applied
// suggestion is re-stamped rather than rejected, so retrying a partially
// failed apply is harmless.
func (s *FileSuggestionStore) MarkApplied(id int) (bool, error) {
	ok := false
	err := s.withLock(true, func() error {
		for i := range s.suggestions {
			if s.suggestions[i].ID == id {
				now := time.Now().UTC()
				s.suggestions[i].Applied = true
				s.suggestions[i].AppliedAt = &now
				ok = true
				return nil
			}
		}
		return fmt.Errorf("suggestion %d: %w", id, ErrNotFound)
	})
	return ok, err
}

// Remove deletes the suggestion with the given ID. The ID counter is not
// rewound, so removed IDs are never reassigned.
func (s *FileSuggestionStore) Remove(id int) (bool, error) {
	ok := false
	err := s.withLock(true, func() error {
		for i := range s.suggestions {
			if s.suggestions[i].ID == id {
				s.suggestions = append(s.suggestions[:i], s.suggestions[i+1:]...)
				ok = true
				return nil
			}
		}
		return fmt.Errorf("suggestion %d: %w", id, ErrNotFound)
	})
	return ok, err
}

// Close releases the file lock.
func (s *FileSuggestionStore) Close() error {
	if s.flk == nil {
		return nil
	}
	return s.flk.Unlock()
}
