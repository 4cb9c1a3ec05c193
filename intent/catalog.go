package intent

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Catalog is an ordered, immutable collection of intents.
//
// A Catalog is safe for concurrent use: nothing mutates it after NewCatalog
// returns.
type Catalog struct {
	intents     []Intent
	byID        map[string]int
	fingerprint string
}

// NewCatalog validates and copies intents into a new Catalog.
// Order is preserved. Duplicate IDs are rejected.
func NewCatalog(intents []Intent) (*Catalog, error) {
	c := &Catalog{
		intents: make([]Intent, 0, len(intents)),
		byID:    make(map[string]int, len(intents)),
	}
	for i, it := range intents {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("intent %d: %w", i, err)
		}
		if _, exists := c.byID[it.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
		}
		c.byID[it.ID] = len(c.intents)
		c.intents = append(c.intents, it.Clone())
	}
	c.fingerprint = computeFingerprint(c.intents)
	return c, nil
}

// Intents returns the catalog's intents in order.
// The returned slice is shared with the catalog and must not be modified.
func (c *Catalog) Intents() []Intent {
	if c == nil {
		return nil
	}
	return c.intents
}

// Len returns the number of intents.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.intents)
}

// IDs returns intent IDs in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, c.Len())
	for _, it := range c.Intents() {
		ids = append(ids, it.ID)
	}
	return ids
}

// Get returns the intent with the given ID.
// The pointer references the catalog's own entry.
func (c *Catalog) Get(id string) (*Intent, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &c.intents[i], nil
}

// Index returns the catalog position of id, or -1.
func (c *Catalog) Index(id string) int {
	if c == nil {
		return -1
	}
	i, ok := c.byID[id]
	if !ok {
		return -1
	}
	return i
}

// Dead returns the IDs of intents that can never be matched.
func (c *Catalog) Dead() []string {
	var dead []string
	for _, it := range c.Intents() {
		if !it.Reachable() {
			dead = append(dead, it.ID)
		}
	}
	return dead
}

// Fingerprint returns a stable hash of the catalog contents.
// It changes whenever any matcher-visible field or display payload changes.
func (c *Catalog) Fingerprint() string {
	if c == nil {
		return ""
	}
	return c.fingerprint
}

// computeFingerprint hashes intents in order. Tags are sorted first since
// tag order carries no meaning.
func computeFingerprint(intents []Intent) string {
	h := xxhash.New()
	write := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}

	for _, it := range intents {
		write(it.ID)
		write(it.Title)
		write(strings.Join(it.Utterances, "\x01"))

		sortedTags := slices.Clone(it.Tags)
		slices.Sort(sortedTags)
		write(strings.Join(sortedTags, "\x01"))

		write(it.Answer)
		for _, l := range it.Links {
			write(l.Label + "\x01" + l.Href + "\x01" + l.SectionID)
		}
		_, _ = h.Write([]byte{0xff})
	}

	return strconv.FormatUint(h.Sum64(), 16)
}
