package match

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jonwraymond/faqintent/intent"
)

// DefaultThreshold is the minimum combined score for a match.
const DefaultThreshold = 0.3

// Result is the outcome of matching one query.
// The zero value means no match; that is a normal outcome, not an error.
type Result struct {
	// Intent references the winning entry of the caller's intent slice.
	Intent *intent.Intent

	// Score is the winner's combined score. It is not clamped and may exceed 1.
	Score float64
}

// Matched reports whether an intent was selected.
func (r Result) Matched() bool {
	return r.Intent != nil
}

// ID returns the matched intent ID, or "" for no match.
func (r Result) ID() string {
	if r.Intent == nil {
		return ""
	}
	return r.Intent.ID
}

// Score is the per-intent breakdown of a combined score.
type Score struct {
	IntentID         string  `json:"intentId"`
	Utterance        float64 `json:"utterance"`
	Keyword          float64 `json:"keyword"`
	Boost            float64 `json:"boost"`
	MatchingKeywords int     `json:"matchingKeywords"`
	MultiKeyword     float64 `json:"multiKeyword"`
	Combined         float64 `json:"combined"`
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithSynonyms sets the synonym table. A nil table disables expansion.
func WithSynonyms(s *Synonyms) Option {
	return func(m *Matcher) {
		m.synonyms = s
	}
}

// WithBoostRules replaces the boost rules.
func WithBoostRules(rules ...BoostRule) Option {
	return func(m *Matcher) {
		m.rules = rules
	}
}

// WithThreshold sets the default threshold used by Match and Rank.
func WithThreshold(t float64) Option {
	return func(m *Matcher) {
		m.threshold = t
	}
}

// WithLogger sets the logger used for debug tracing of decisions.
func WithLogger(l *zap.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// compiledIntent caches the normalized views of an intent.
type compiledIntent struct {
	utterances []utterance
	tags       []string
}

// Matcher scores queries against an ordered intent slice.
//
// A Matcher is immutable after New and safe for concurrent use. Each call
// allocates only its own scratch state.
type Matcher struct {
	intents   []intent.Intent
	compiled  []compiledIntent
	synonyms  *Synonyms
	rules     []BoostRule
	threshold float64
	logger    *zap.Logger
}

// New creates a Matcher over intents. The slice is referenced, not copied,
// so results point into it; it must not be modified while the Matcher is in
// use. Defaults: DefaultSynonyms, DefaultBoostRules, DefaultThreshold.
func New(intents []intent.Intent, opts ...Option) *Matcher {
	m := &Matcher{
		intents:   intents,
		synonyms:  DefaultSynonyms(),
		rules:     DefaultBoostRules(),
		threshold: DefaultThreshold,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.rules = compileRules(m.rules)

	m.compiled = make([]compiledIntent, len(intents))
	for i, it := range intents {
		utts := make([]utterance, len(it.Utterances))
		for j, u := range it.Utterances {
			utts[j] = newUtterance(u)
		}
		m.compiled[i] = compiledIntent{
			utterances: utts,
			tags:       prepareTags(it.Tags),
		}
	}
	return m
}

// NewForCatalog creates a Matcher over a catalog's intents.
func NewForCatalog(c *intent.Catalog, opts ...Option) *Matcher {
	return New(c.Intents(), opts...)
}

// Match returns the best intent for query at the Matcher's threshold.
func Match(query string, intents []intent.Intent, threshold float64) Result {
	return New(intents, WithThreshold(threshold)).Match(query)
}

// Threshold returns the Matcher's default threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Intents returns the intent slice the Matcher scores against.
func (m *Matcher) Intents() []intent.Intent {
	return m.intents
}

// Match returns the best intent for query at the Matcher's threshold.
func (m *Matcher) Match(query string) Result {
	return m.MatchThreshold(query, m.threshold)
}

// MatchThreshold returns the best intent for query, or no match when the
// best combined score is below threshold. Empty and whitespace-only queries
// never match.
func (m *Matcher) MatchThreshold(query string, threshold float64) Result {
	best := -1
	bestScore := 0.0
	m.evaluate(query, func(i int, s Score) {
		if s.Combined > bestScore {
			best = i
			bestScore = s.Combined
		}
	})

	// Written as a negated >= so that a NaN threshold matches nothing.
	if best < 0 || !(bestScore >= threshold) {
		if ce := m.logger.Check(zap.DebugLevel, "no intent matched"); ce != nil {
			ce.Write(zap.String("query", query), zap.Float64("best_score", bestScore), zap.Float64("threshold", threshold))
		}
		return Result{}
	}

	if ce := m.logger.Check(zap.DebugLevel, "intent matched"); ce != nil {
		ce.Write(zap.String("query", query), zap.String("intent", m.intents[best].ID), zap.Float64("score", bestScore))
	}
	return Result{Intent: &m.intents[best], Score: bestScore}
}

// Explain returns the score breakdown for every intent in catalog order.
// It returns nil for empty or whitespace-only queries.
func (m *Matcher) Explain(query string) []Score {
	var scores []Score
	m.evaluate(query, func(_ int, s Score) {
		scores = append(scores, s)
	})
	return scores
}

// Rank returns up to limit intents whose combined score is positive and at
// least the Matcher's threshold, best first. Ties keep catalog order.
// A limit <= 0 means no limit.
func (m *Matcher) Rank(query string, limit int) []Result {
	var ranked []Result
	m.evaluate(query, func(i int, s Score) {
		if s.Combined > 0 && s.Combined >= m.threshold {
			ranked = append(ranked, Result{Intent: &m.intents[i], Score: s.Combined})
		}
	})
	slices.SortStableFunc(ranked, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// evaluate scores every intent for query and calls visit in catalog order.
func (m *Matcher) evaluate(query string, visit func(i int, s Score)) {
	if strings.TrimSpace(query) == "" {
		return
	}

	normalized := Normalize(query)
	queryWords := wordSet(normalized)
	tokens := m.synonyms.Expand(normalized)
	boosts := resolveBoosts(normalized, m.rules)

	for i := range m.intents {
		c := &m.compiled[i]
		s := Score{
			IntentID:         m.intents[i].ID,
			Utterance:        utteranceScore(normalized, queryWords, c.utterances),
			Keyword:          keywordScore(tokens, c.tags),
			Boost:            boosts[m.intents[i].ID],
			MatchingKeywords: matchingKeywords(tokens, c.tags),
		}
		s.MultiKeyword = multiKeywordBoost(s.MatchingKeywords)
		s.Combined = s.Utterance*utteranceShare + s.Keyword*keywordShare + s.Boost + s.MultiKeyword
		visit(i, s)
	}
}
