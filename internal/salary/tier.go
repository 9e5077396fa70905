package salary

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"

	"devsurvey/internal/frame"
)

// Tier is a half-open salary band [Min, Max).
type Tier struct {
	Min   float64
	Max   float64
	Label string
}

// Tiers are the annual salary bands, lowest first.
var Tiers = []Tier{
	{0, 60000, "<60K"},
	{60000, 80000, "60K-80K"},
	{80000, 100000, "80K-100K"},
	{100000, 110000, "100K-110K"},
	{110000, 120000, "110K-120K"},
	{120000, 140000, "120K-140K"},
	{140000, 160000, "140K-160K"},
	{160000, math.Inf(1), ">160K"},
}

// TierFor returns the label of the band holding v. Negative and NaN
// salaries have no band.
func TierFor(v float64) (string, bool) {
	if math.IsNaN(v) {
		return "", false
	}

	for _, t := range Tiers {
		if v >= t.Min && v < t.Max {
			return t.Label, true
		}
	}

	return "", false
}

// AddSalaryTier bins Annual Salary into a Salary Tier column.
func AddSalaryTier(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !frame.HasColumn(df, ColAnnualSalary) {
		return df, fmt.Errorf("%w: %s", frame.ErrMissingColumn, ColAnnualSalary)
	}

	col := df.Col(ColAnnualSalary)
	labels := make([]string, col.Len())
	missing := make([]bool, col.Len())

	for i := 0; i < col.Len(); i++ {
		elem := col.Elem(i)
		if elem.IsNA() {
			missing[i] = true

			continue
		}

		label, ok := TierFor(elem.Float())
		labels[i], missing[i] = label, !ok
	}

	return frame.Mutate(df, frame.StringSeries(ColSalaryTier, labels, missing))
}
