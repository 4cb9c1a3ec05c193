// Package suggest ranks catalog intents for a query with BM25 full-text
// search.
//
// It backs the "try one of these" list shown when the matcher finds no
// intent. The matcher decides; the suggester only orders candidates, so its
// scores are unrelated to match scores and carry no threshold.
//
// # Usage
//
//	s := suggest.New(suggest.Config{})
//	defer s.Close()
//
//	hits, err := s.Suggest("langchain", 3, catalog)
//
// # Configuration
//
// [Config] sets per-field boosts:
//
//	cfg := suggest.Config{
//	    TitleBoost:     3, // default 3
//	    UtteranceBoost: 2, // default 2
//	    TagsBoost:      2, // default 2
//	}
//
// # Thread Safety
//
// Suggester is safe for concurrent use. The Bleve index is built lazily and
// cached by catalog fingerprint, so it is rebuilt only when a different
// catalog is passed in.
//
// # Behavior
//
// Queries that normalize to nothing return no suggestions. Results are
// ordered by score descending, then catalog order.
package suggest
