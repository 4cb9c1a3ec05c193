package intent

import (
	"fmt"
	"slices"
)

// DetailLevel selects how much of an intent Describe includes.
type DetailLevel string

const (
	// DetailSummary includes only the ID and title.
	DetailSummary DetailLevel = "summary"

	// DetailUtterances adds utterances and tags.
	DetailUtterances DetailLevel = "utterances"

	// DetailFull adds the answer and links.
	DetailFull DetailLevel = "full"
)

// IsValid reports whether l is a known level.
func (l DetailLevel) IsValid() bool {
	switch l {
	case DetailSummary, DetailUtterances, DetailFull:
		return true
	default:
		return false
	}
}

// Description is an intent rendered at a detail level.
type Description struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Level      DetailLevel `json:"level"`
	Utterances []string    `json:"utterances,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	Answer     string      `json:"answer,omitempty"`
	Links      []Link      `json:"links,omitempty"`
}

// Describe renders it at the given level. An empty level means DetailSummary.
func Describe(it Intent, level DetailLevel) (Description, error) {
	if level == "" {
		level = DetailSummary
	}
	if !level.IsValid() {
		return Description{}, fmt.Errorf("%w: %q", ErrInvalidDetail, level)
	}

	d := Description{
		ID:    it.ID,
		Title: it.Title,
		Level: level,
	}
	if level == DetailSummary {
		return d, nil
	}

	d.Utterances = slices.Clone(it.Utterances)
	d.Tags = slices.Clone(it.Tags)
	if level == DetailUtterances {
		return d, nil
	}

	d.Answer = it.Answer
	d.Links = slices.Clone(it.Links)
	return d, nil
}

// DescribeID looks up id in c and renders it at the given level.
func (c *Catalog) DescribeID(id string, level DetailLevel) (Description, error) {
	it, err := c.Get(id)
	if err != nil {
		return Description{}, err
	}
	return Describe(*it, level)
}
