package match

import (
	"strings"
)

// Scoring weights.
const (
	exactUtteranceScore = 1.0
	containmentWeight   = 0.8
	wordOverlapWeight   = 0.6

	partialTagCredit   = 0.3
	tokenCoverageShare = 0.6
	tagCoverageShare   = 0.4

	utteranceShare = 0.5
	keywordShare   = 0.5

	multiKeywordMin    = 2
	multiKeywordCredit = 0.15
)

// utterance is a pre-normalized example phrase.
type utterance struct {
	text  string
	words map[string]struct{}
}

func newUtterance(raw string) utterance {
	text := Normalize(raw)
	return utterance{text: text, words: wordSet(text)}
}

// UtteranceScore returns the best similarity in [0, 1] between a normalized
// query and any of the given utterances. Utterances are normalized here.
// An empty query scores 0.
func UtteranceScore(query string, utterances []string) float64 {
	prepared := make([]utterance, len(utterances))
	for i, u := range utterances {
		prepared[i] = newUtterance(u)
	}
	return utteranceScore(query, wordSet(query), prepared)
}

func utteranceScore(query string, queryWords map[string]struct{}, utterances []utterance) float64 {
	if query == "" {
		return 0
	}
	best := 0.0
	for _, u := range utterances {
		if s := scoreUtterance(query, queryWords, u); s > best {
			best = s
		}
		if best == exactUtteranceScore {
			break
		}
	}
	return best
}

// scoreUtterance is the max of exact match, containment, and word overlap.
func scoreUtterance(query string, queryWords map[string]struct{}, u utterance) float64 {
	if query == u.text {
		return exactUtteranceScore
	}

	score := 0.0
	if strings.Contains(query, u.text) || strings.Contains(u.text, query) {
		shorter, longer := len(query), len(u.text)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		score = float64(shorter) / float64(max(longer, 1)) * containmentWeight
	}

	common := 0
	for w := range queryWords {
		if _, ok := u.words[w]; ok {
			common++
		}
	}
	if common > 0 {
		denom := max(len(queryWords), len(u.words), 1)
		if ws := float64(common) / float64(denom) * wordOverlapWeight; ws > score {
			score = ws
		}
	}
	return score
}

// KeywordScore returns the tag-overlap score in [0, 1] for expanded query
// tokens against an intent's tags. Tags are compared case-insensitively.
//
// Every (tag, token) pair that is not an exact match but where one contains
// the other earns partial credit, so very short tokens can inflate the score
// against tag-heavy intents. That generosity is intentional.
func KeywordScore(tokens, tags []string) float64 {
	return keywordScore(tokenSet(tokens), prepareTags(tags))
}

func keywordScore(tokens []string, tags []string) float64 {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}

	exact := 0
	partial := 0.0
	for _, tag := range tags {
		if _, ok := set[tag]; ok {
			exact++
		}
		for _, tok := range tokens {
			if tok == tag {
				continue
			}
			if strings.Contains(tok, tag) || strings.Contains(tag, tok) {
				partial += partialTagCredit
			}
		}
	}

	total := float64(exact) + partial
	coverage := total / float64(max(len(tokens), 1))
	tagCoverage := float64(exact) / float64(max(len(tags), 1))
	return min(coverage*tokenCoverageShare+tagCoverage*tagCoverageShare, 1.0)
}

// matchingKeywords counts tokens that equal, contain, or are contained in
// some tag.
func matchingKeywords(tokens []string, tags []string) int {
	n := 0
	for _, tok := range tokens {
		for _, tag := range tags {
			if tok == tag || strings.Contains(tag, tok) || strings.Contains(tok, tag) {
				n++
				break
			}
		}
	}
	return n
}

func multiKeywordBoost(matching int) float64 {
	if matching < multiKeywordMin {
		return 0
	}
	return float64(matching) * multiKeywordCredit
}

// prepareTags lowercases, trims, and de-duplicates tags, dropping empties.
func prepareTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// tokenSet lowercases and de-duplicates tokens, dropping empties.
func tokenSet(tokens []string) []string {
	return prepareTags(tokens)
}

func wordSet(normalized string) map[string]struct{} {
	words := Words(normalized)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
