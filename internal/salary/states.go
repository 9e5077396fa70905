package salary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"devsurvey/internal/frame"
)

// Fuzzy state matching thresholds. A misspelled name must score at least
// MinStateSimilarity and be within MaxStateEdits edits of the state, which
// keeps "Washington DC" away from Washington.
const (
	MinStateSimilarity = 0.92
	MaxStateEdits      = 2
)

var stateAbbreviations = map[string]string{
	"Alabama": "AL", "Alaska": "AK", "Arizona": "AZ", "Arkansas": "AR",
	"California": "CA", "Colorado": "CO", "Connecticut": "CT", "Delaware": "DE",
	"Florida": "FL", "Georgia": "GA", "Hawaii": "HI", "Idaho": "ID",
	"Illinois": "IL", "Indiana": "IN", "Iowa": "IA", "Kansas": "KS",
	"Kentucky": "KY", "Louisiana": "LA", "Maine": "ME", "Maryland": "MD",
	"Massachusetts": "MA", "Michigan": "MI", "Minnesota": "MN", "Mississippi": "MS",
	"Missouri": "MO", "Montana": "MT", "Nebraska": "NE", "Nevada": "NV",
	"New Hampshire": "NH", "New Jersey": "NJ", "New Mexico": "NM", "New York": "NY",
	"North Carolina": "NC", "North Dakota": "ND", "Ohio": "OH", "Oklahoma": "OK",
	"Oregon": "OR", "Pennsylvania": "PA", "Rhode Island": "RI", "South Carolina": "SC",
	"South Dakota": "SD", "Tennessee": "TN", "Texas": "TX", "Utah": "UT",
	"Vermont": "VT", "Virginia": "VA", "Washington": "WA", "West Virginia": "WV",
	"Wisconsin": "WI", "Wyoming": "WY",
}

// stateNames is sorted so fuzzy ties resolve the same way every run.
var stateNames = func() []string {
	names := make([]string, 0, len(stateAbbreviations))
	for name := range stateAbbreviations {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}()

// StatesFrame returns the State/Abbreviation lookup table.
func StatesFrame() dataframe.DataFrame {
	abbrevs := make([]string, len(stateNames))
	for i, name := range stateNames {
		abbrevs[i] = stateAbbreviations[name]
	}

	return dataframe.New(
		series.New(stateNames, series.String, ColState),
		series.New(abbrevs, series.String, ColAbbreviation),
	)
}

// MatchState returns the abbreviation of the state closest to name, or false
// when no state is close enough.
func MatchState(name string) (string, bool) {
	if abbr, ok := stateAbbreviations[name]; ok {
		return abbr, true
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}

	best, bestScore := "", 0.0

	for _, candidate := range stateNames {
		score := matchr.JaroWinkler(needle, strings.ToLower(candidate), false)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}

	if bestScore < MinStateSimilarity || matchr.DamerauLevenshtein(needle, strings.ToLower(best)) > MaxStateEdits {
		return "", false
	}

	return stateAbbreviations[best], true
}

// AddStateAbbreviation left-joins the state table on State. Rows the join
// misses get a fuzzy match; rows that still miss keep a missing abbreviation.
func AddStateAbbreviation(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !frame.HasColumn(df, ColState) {
		return df, fmt.Errorf("%w: %s", frame.ErrMissingColumn, ColState)
	}

	joined := df.LeftJoin(StatesFrame(), ColState)
	if joined.Err != nil {
		return df, fmt.Errorf("failed to join states: %w", joined.Err)
	}

	states, stateMissing, err := frame.Strings(joined, ColState)
	if err != nil {
		return df, err
	}

	abbrevs, abbrMissing, err := frame.Strings(joined, ColAbbreviation)
	if err != nil {
		return df, err
	}

	for i := range abbrevs {
		if !abbrMissing[i] || stateMissing[i] {
			continue
		}

		if abbr, ok := MatchState(states[i]); ok {
			abbrevs[i], abbrMissing[i] = abbr, false
		}
	}

	return frame.Mutate(joined, frame.StringSeries(ColAbbreviation, abbrevs, abbrMissing))
}
