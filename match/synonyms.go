package match

import (
	"maps"
	"slices"
	"strings"
)

// defaultSynonyms maps shorthand to the canonical terms intents are tagged with.
var defaultSynonyms = map[string][]string{
	"paper":   {"research", "publication", "ijraset"},
	"cv":      {"resume", "curriculum vitae"},
	"remix":   {"remixmate", "remix mate"},
	"eval":    {"evaluation", "testing", "benchmark"},
	"rag":     {"retrieval", "augmented", "generation"},
	"llm":     {"language model", "model"},
	"tech":    {"technology", "technologies", "stack", "skills"},
	"contact": {"email", "reach", "get in touch", "social"},
}

// Synonyms is an immutable word -> expansions table.
// A nil *Synonyms expands nothing.
type Synonyms struct {
	table map[string][]string
}

// NewSynonyms builds a table from raw entries. Keys are lowercased and must
// be a single normalized word, since only query words are looked up; other
// keys (such as "c++" or "tech stack") are dropped. Expansions are
// lowercased and trimmed but otherwise kept as given, so "E-Mail" stays the
// single token "e-mail". Empty expansions are dropped, as are keys left
// with none.
func NewSynonyms(table map[string][]string) *Synonyms {
	s := &Synonyms{table: make(map[string][]string, len(table))}
	for key, values := range table {
		k := strings.ToLower(strings.TrimSpace(key))
		if !isSynonymKey(k) {
			continue
		}
		out := s.table[k]
		for _, v := range values {
			if nv := strings.ToLower(strings.TrimSpace(v)); nv != "" && !slices.Contains(out, nv) {
				out = append(out, nv)
			}
		}
		if len(out) > 0 {
			s.table[k] = out
		}
	}
	return s
}

func isSynonymKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		if !isWordRune(r) {
			return false
		}
	}
	return true
}

// DefaultSynonyms returns the built-in synonym table.
func DefaultSynonyms() *Synonyms {
	return NewSynonyms(defaultSynonyms)
}

// Len returns the number of keys.
func (s *Synonyms) Len() int {
	if s == nil {
		return 0
	}
	return len(s.table)
}

// Lookup returns the expansions for a normalized word.
func (s *Synonyms) Lookup(word string) []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.table[word])
}

// Keys returns the table keys in sorted order.
func (s *Synonyms) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.table))
}

// Expand returns the words of normalized followed by the expansions of any
// word that is a table key. Duplicates are removed, keeping first
// occurrence, and original words are never altered or dropped.
func (s *Synonyms) Expand(normalized string) []string {
	words := Words(normalized)
	tokens := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	add := func(tok string) {
		if tok == "" {
			return
		}
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	for _, w := range words {
		add(w)
	}
	if s == nil {
		return tokens
	}
	for _, w := range words {
		for _, syn := range s.table[w] {
			add(syn)
		}
	}
	return tokens
}
