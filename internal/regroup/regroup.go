package regroup

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"devsurvey/internal/frame"
	"devsurvey/pkg/utils"
)

// Columns written by Apply in addition to the ones it rewrites in place.
const (
	SexualityGrouped = "sexuality_grouped"
	EthnicityGrouped = "ethnicity_grouped"
)

// Ethnicity buckets.
const (
	NonMinority = "non-minority"
	Minority    = "minority"
)

var (
	whiteRule = NewRule("White|European", NonMinority)

	// Answers that carry no ethnicity, compared after folding.
	ethnicityNullTokens = map[string]struct{}{
		"Prefer not to say":      {},
		"Or, in your own words:": {},
		"I don't know":           {},
		"I prefer not to say":    {},
	}

	genderLabels = map[string]string{
		"Woman": "Female",
		"Man":   "Male",
	}

	strs = utils.NewStringHelper()
)

// GroupEthnicity maps an Ethnicity answer to non-minority, minority or missing.
func GroupEthnicity(value string, missing bool) (string, bool) {
	if missing {
		return "", true
	}

	if whiteRule.Pattern.MatchString(value) {
		return NonMinority, false
	}

	if _, ok := ethnicityNullTokens[strs.Fold(value)]; ok {
		return "", true
	}

	return Minority, false
}

// GroupGender renames the exact answers Woman and Man; anything else is kept.
func GroupGender(value string, missing bool) (string, bool) {
	if label, ok := genderLabels[value]; ok && !missing {
		return label, false
	}

	return value, missing
}

type step struct {
	src, dst string
	fn       frame.MapFunc
}

var steps = []step{
	{"EdLevel", "EdLevel", EdLevelRules.Select},
	{"Sexuality", SexualityGrouped, SexualityRules.Select},
	{"Ethnicity", EthnicityGrouped, GroupEthnicity},
	{"Gender", "Gender", GroupGender},
	{"Employment", "Employment", EmploymentRules.Select},
	{"Country", "Country", CountryRules.Select},
}

// Apply runs every regrouping over a merged survey frame. EdLevel, Gender,
// Employment and Country are rewritten in place; sexuality_grouped and
// ethnicity_grouped are added.
func Apply(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	var err error

	for _, s := range steps {
		df, err = frame.MapStrings(df, s.src, s.dst, s.fn)
		if err != nil {
			return df, fmt.Errorf("regroup %s: %w", s.src, err)
		}
	}

	return df, nil
}

// Columns lists the columns Apply adds.
func Columns() []string {
	return []string{SexualityGrouped, EthnicityGrouped}
}
