// Package match maps free-text queries to the best intent of a catalog.
//
// Matching is lexical and deterministic. A query is normalized, expanded
// with synonyms, and scored against every intent:
//
//   - Utterance score: best of exact match (1.0), substring containment
//     (length ratio x 0.8), and word overlap (shared words x 0.6) over the
//     intent's utterances
//   - Keyword score: exact and partial tag overlap with the expanded tokens
//   - Multi-keyword boost: 0.15 per matching token once two or more match
//   - Boost rules: fixed bonuses for queries containing trigger substrings
//
// The combined score is utterance*0.5 + keyword*0.5 + boosts. It is not
// clamped and may exceed 1. The intent with the strictly highest combined
// score wins (earlier intents win ties) if it reaches the threshold
// (DefaultThreshold, 0.3); otherwise the result is no match.
//
// # Usage
//
//	m := match.NewForCatalog(catalog)
//	res := m.Match("show me your cv")
//	if res.Matched() {
//	    fmt.Println(res.Intent.Answer)
//	}
//
// One-shot matching with defaults:
//
//	res := match.Match(query, catalog.Intents(), match.DefaultThreshold)
//
// # Normalization
//
// [Normalize] lowercases, turns anything other than ASCII letters, digits,
// and underscore into spaces, and collapses whitespace. Non-ASCII letters
// are treated as punctuation.
//
// # Thread Safety
//
// A [Matcher] is immutable once built and safe for concurrent use; no call
// mutates shared state. [Matcher.MatchAll] fans a batch out across
// goroutines.
package match
