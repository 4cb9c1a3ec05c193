package match

import (
	"strings"

	"github.com/jonwraymond/faqintent/intent"
)

// BoostRule adds Boost to one intent's combined score whenever the
// normalized query contains any of Triggers as a substring.
//
// Rules cover targeted special cases (for example, "cv" should always lean
// toward the resume intent) without new code paths.
type BoostRule struct {
	Triggers []string
	IntentID string
	Boost    float64
}

// DefaultBoostRules returns the built-in rules.
func DefaultBoostRules() []BoostRule {
	return []BoostRule{
		{Triggers: []string{"cv", "resume"}, IntentID: "resume", Boost: 0.5},
	}
}

// BoostRulesFromSource converts catalog-file boosts into rules.
func BoostRulesFromSource(boosts []intent.Boost) []BoostRule {
	rules := make([]BoostRule, 0, len(boosts))
	for _, b := range boosts {
		rules = append(rules, BoostRule{
			Triggers: b.Triggers,
			IntentID: b.Intent,
			Boost:    b.Value,
		})
	}
	return rules
}

// compileRules normalizes triggers and drops ones that normalize to nothing,
// since an empty trigger would fire on every query.
func compileRules(rules []BoostRule) []BoostRule {
	out := make([]BoostRule, 0, len(rules))
	for _, r := range rules {
		triggers := make([]string, 0, len(r.Triggers))
		for _, t := range r.Triggers {
			if nt := Normalize(t); nt != "" {
				triggers = append(triggers, nt)
			}
		}
		if len(triggers) == 0 || r.IntentID == "" {
			continue
		}
		out = append(out, BoostRule{Triggers: triggers, IntentID: r.IntentID, Boost: r.Boost})
	}
	return out
}

// resolveBoosts evaluates every rule once against the normalized query and
// returns the total boost per intent ID. Boosts from several firing rules
// for the same intent add up.
func resolveBoosts(query string, rules []BoostRule) map[string]float64 {
	var boosts map[string]float64
	for _, r := range rules {
		for _, t := range r.Triggers {
			if strings.Contains(query, t) {
				if boosts == nil {
					boosts = make(map[string]float64, len(rules))
				}
				boosts[r.IntentID] += r.Boost
				break
			}
		}
	}
	return boosts
}
