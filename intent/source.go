package intent

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Format is a catalog file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Boost is a special-case scoring rule as stored in a catalog file:
// when the normalized query contains any trigger, Value is added to the
// named intent's score.
type Boost struct {
	Triggers []string `json:"triggers" yaml:"triggers"`
	Intent   string   `json:"intent" yaml:"intent"`
	Value    float64  `json:"value" yaml:"value"`
}

// Source is the on-disk catalog document: intents plus the matching
// vocabulary that travels with them.
//
// A nil Synonyms or Boosts means "use the matcher defaults"; an explicitly
// empty one disables them.
type Source struct {
	Intents  []Intent            `json:"intents" yaml:"intents"`
	Synonyms map[string][]string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	Boosts   []Boost             `json:"boosts,omitempty" yaml:"boosts,omitempty"`
}

// Catalog builds a Catalog from the source's intents and checks that every
// boost targets a known intent.
func (s *Source) Catalog() (*Catalog, error) {
	c, err := NewCatalog(s.Intents)
	if err != nil {
		return nil, err
	}
	for _, b := range s.Boosts {
		if _, err := c.Get(b.Intent); err != nil {
			return nil, fmt.Errorf("boost: %w", err)
		}
	}
	return c, nil
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes a catalog document.
func Parse(data []byte, format Format) (*Source, error) {
	var src Source
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&src); err != nil {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&src); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &src, nil
}

// LoadFile reads and decodes a catalog file.
func LoadFile(path string) (*Source, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	src, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// DefaultSource returns the catalog embedded in the binary.
func DefaultSource() (*Source, error) {
	return Parse(defaultCatalog, FormatYAML)
}

// LoadSynonymsFile reads a standalone synonym table: a mapping from a word
// to its expansions, in YAML or JSON.
func LoadSynonymsFile(path string) (map[string][]string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}

	table := map[string][]string{}
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &table)
	case FormatJSON:
		err = json.Unmarshal(data, &table)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: decode synonyms: %w", path, err)
	}
	return table, nil
}
