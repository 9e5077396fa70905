// Package regroup collapses free-form survey answers into coarse buckets.
package regroup

import (
	"regexp"
)

// Fallback decides what Select returns when no rule matches.
type Fallback int

const (
	// KeepValue returns the input unchanged.
	KeepValue Fallback = iota
	// MarkMissing returns a missing cell.
	MarkMissing
)

// Rule maps any value containing Pattern to Label.
type Rule struct {
	Pattern *regexp.Regexp
	Label   string
}

// NewRule compiles pattern case-insensitively. The pattern may use
// alternation ("Bisexual|Queer").
func NewRule(pattern, label string) Rule {
	return Rule{
		Pattern: regexp.MustCompile("(?i)" + pattern),
		Label:   label,
	}
}

// RuleSet is an ordered list of rules; the first match wins.
type RuleSet struct {
	Rules    []Rule
	Fallback Fallback
}

// Select returns the label of the first rule found in value, otherwise the
// fallback. Missing cells never match.
func (rs RuleSet) Select(value string, missing bool) (string, bool) {
	if !missing {
		for _, r := range rs.Rules {
			if r.Pattern.MatchString(value) {
				return r.Label, false
			}
		}
	}

	if rs.Fallback == MarkMissing {
		return "", true
	}

	return value, missing
}

// EdLevelRules buckets formal education. The order matters:
// "Some college ... without earning a degree" must not hit a degree rule first.
var EdLevelRules = RuleSet{
	Rules: []Rule{
		NewRule("master", "Masters"),
		NewRule("associate", "Associates"),
		NewRule("bachelor", "Bachelors"),
		NewRule("doctoral", "Doctorate"),
		NewRule("professional", "Professional"),
		NewRule("primary", "Primary"),
		NewRule("secondary", "Secondary"),
		NewRule("college", "Some College"),
		NewRule("never", "No Education"),
		NewRule("else", "Something Else"),
	},
	Fallback: KeepValue,
}

// EmploymentRules buckets employment status.
var EmploymentRules = RuleSet{
	Rules: []Rule{
		NewRule("full", "Full-Time"),
		NewRule("retired", "Retired"),
		NewRule("part", "Part-Time"),
		NewRule("independent", "Self-Employed"),
	},
	Fallback: KeepValue,
}

// SexualityRules fills sexuality_grouped.
var SexualityRules = RuleSet{
	Rules: []Rule{
		NewRule("Straight / Heterosexual|Straight or heterosexual", "straight"),
		NewRule("Bisexual|Gay or Lesbian|Queer|Asexual|Prefer", "lgbtq"),
	},
	Fallback: MarkMissing,
}

// CountryRules folds every "...America..." spelling into United States.
var CountryRules = RuleSet{
	Rules: []Rule{
		NewRule("america", "United States"),
	},
	Fallback: KeepValue,
}
