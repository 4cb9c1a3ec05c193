package intent

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error values for consistent error handling by callers.
var (
	ErrNotFound          = errors.New("intent not found")
	ErrInvalidIntent     = errors.New("invalid intent")
	ErrDuplicateID       = errors.New("duplicate intent id")
	ErrInvalidDetail     = errors.New("invalid detail level")
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

// Link is a display link attached to an intent's answer.
type Link struct {
	Label     string `json:"label" yaml:"label"`
	Href      string `json:"href" yaml:"href"`
	SectionID string `json:"sectionId,omitempty" yaml:"sectionId,omitempty"`
}

// Intent is a topic the assistant can recognize.
type Intent struct {
	// ID is the stable, unique identifier.
	ID string `json:"id" yaml:"id"`

	// Title is a short human-readable label.
	Title string `json:"title" yaml:"title"`

	// Utterances are example phrases a user might type for this intent.
	Utterances []string `json:"utterances,omitempty" yaml:"utterances,omitempty"`

	// Tags are keywords associated with the intent.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Answer and Links are passed through untouched by the matcher.
	Answer string `json:"answer,omitempty" yaml:"answer,omitempty"`
	Links  []Link `json:"links,omitempty" yaml:"links,omitempty"`
}

// Validate checks the fields the matcher relies on.
func (it Intent) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidIntent)
	}
	if strings.TrimSpace(it.ID) != it.ID {
		return fmt.Errorf("%w: id %q has surrounding whitespace", ErrInvalidIntent, it.ID)
	}
	return nil
}

// Reachable reports whether the intent can ever score above zero.
// An intent with neither utterances nor tags is dead weight in a catalog.
func (it Intent) Reachable() bool {
	return len(it.Utterances) > 0 || len(it.Tags) > 0
}

// Clone returns a deep copy of the intent.
func (it Intent) Clone() Intent {
	out := it
	out.Utterances = slices.Clone(it.Utterances)
	out.Tags = slices.Clone(it.Tags)
	out.Links = slices.Clone(it.Links)
	return out
}
