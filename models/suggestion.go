package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Severity grades how urgently a suggestion should be acted on.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Location pins a suggestion to a place in the analyzed codebase.
// EndLine is -1 when the end of the region is unknown.
type Location struct {
	FilePath  string `json:"file_path" validate:"required"`
	StartLine int    `json:"start_line" validate:"gte=1"`
	EndLine   int    `json:"end_line" validate:"gte=-1"`
	ClassName string `json:"class_name,omitempty"`
}

// Suggestion is one recorded improvement opportunity for an analyzed file.
// IDs are small integers assigned by the store, monotonically increasing and
// never reused within one store file.
type Suggestion struct {
	ID             int        `json:"id" validate:"gte=1"`
	Type           string     `json:"type" validate:"required"`
	Description    string     `json:"description" validate:"required"`
	Location       Location   `json:"location" validate:"required"`
	Recommendation string     `json:"recommendation,omitempty"`
	Severity       Severity   `json:"severity" validate:"required,oneof=low medium high"`
	CodeExample    string     `json:"code_example,omitempty"`
	CreatedAt      time.Time  `json:"created_at" validate:"required"`
	Applied        bool       `json:"applied"`
	AppliedAt      *time.Time `json:"applied_at,omitempty"`
}

// NewSuggestion builds an unapplied suggestion stamped with the current time.
// The ID stays zero until the store assigns one.
func NewSuggestion(typ, description string, loc Location, severity Severity) *Suggestion {
	return &Suggestion{
		Type:        typ,
		Description: description,
		Location:    loc,
		Severity:    severity,
		CreatedAt:   time.Now().UTC(),
	}
}

var validate = validator.New()

// ValidateStruct validates any model struct against its validation tags and
// flattens the field errors into one readable error.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("field %q failed rule %q (value %v)", e.StructNamespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
