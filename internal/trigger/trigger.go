// Package trigger evaluates feed events against a configured rule set.
package trigger

import (
	"strings"

	"coinsentinel/internal/models"
)

// Rule describes one trigger: an optional author, an optional list of
// phrases that must all appear in the event text, the tier to raise at
// and the alert message. At least one of Author/Phrases must be set;
// config validation rejects rules with both unset.
type Rule struct {
	Author  string
	Phrases []string
	Tier    models.Tier
	Message string
}

// Match evaluates an (author, text) pair against the rules in order
// and returns the matched rules.
//
// A rule matches iff its author is unset or equals the given author
// (case-sensitive), and every phrase in its list is a case-insensitive
// substring of text. A rule that requires an author never matches an
// event without one. Amber matches accumulate; the first red match
// stops evaluation and is returned as the final element.
func Match(author, text string, rules []Rule) []Rule {
	var matched []Rule
	lower := strings.ToLower(text)

	for _, rule := range rules {
		if rule.Author != "" && (author == "" || rule.Author != author) {
			continue
		}
		ok := true
		for _, phrase := range rule.Phrases {
			if !strings.Contains(lower, strings.ToLower(phrase)) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		matched = append(matched, rule)
		if rule.Tier == models.TierRed {
			return matched
		}
	}
	return matched
}
