package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"devsurvey/internal/frame"
)

// numberPattern matches thousands-grouped numbers as a single value.
var numberPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d+`)

// ExtractAndAverage returns the mean of every integer in s, or NaN when s has none.
//
//	"25-34 years old"           -> 29.5
//	"1,000 to 4,999 employees"  -> 2999.5
//	"Less than 1 year"          -> 1
func ExtractAndAverage(s string) float64 {
	matches := numberPattern.FindAllString(s, -1)
	if len(matches) == 0 {
		return math.NaN()
	}

	sum := 0.0
	count := 0

	for _, m := range matches {
		n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
		if err != nil {
			continue
		}

		sum += float64(n)
		count++
	}

	if count == 0 {
		return math.NaN()
	}

	return sum / float64(count)
}

// AddAverages appends YearsCodeProAvg, OrgSizeAvg and AgeAvg.
func AddAverages(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for _, avg := range AverageColumns {
		values, missing, err := frame.Strings(df, avg.Source)
		if err != nil {
			return df, err
		}

		out := make([]float64, len(values))
		for i, v := range values {
			if missing[i] {
				out[i] = math.NaN()

				continue
			}

			out[i] = ExtractAndAverage(v)
		}

		if df, err = frame.Mutate(df, series.New(out, series.Float, avg.Target)); err != nil {
			return df, err
		}
	}

	return df, nil
}
