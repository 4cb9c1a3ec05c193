package match

import "github.com/jonwraymond/faqintent/intent"

// SourceOptions returns the synonym and boost rule options described by a
// catalog document. A nil section selects the built-in default; an empty
// one disables it.
func SourceOptions(src *intent.Source) []Option {
	synonyms := DefaultSynonyms()
	rules := DefaultBoostRules()
	if src != nil {
		if src.Synonyms != nil {
			synonyms = NewSynonyms(src.Synonyms)
		}
		if src.Boosts != nil {
			rules = BoostRulesFromSource(src.Boosts)
		}
	}
	return []Option{WithSynonyms(synonyms), WithBoostRules(rules...)}
}
