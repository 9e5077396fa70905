package normalizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"devsurvey/internal/frame"
)

// Transformer renames and selects one year's columns into the canonical schema.
type Transformer struct{}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform applies schema to df: stamps the year, adds the columns the year
// never asked, renames, fills remaining canonical gaps and selects the
// canonical columns in order.
func (t *Transformer) Transform(schema YearSchema, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	n := df.Nrow()

	years := make([]int, n)
	for i := range years {
		years[i] = schema.Year
	}

	df, err := frame.Mutate(df, series.New(years, series.Int, ColYear))
	if err != nil {
		return df, err
	}

	for _, col := range schema.AddColumns {
		if frame.HasColumn(df, col) {
			continue
		}

		if df, err = frame.Mutate(df, frame.MissingSeries(col, n)); err != nil {
			return df, err
		}
	}

	for _, r := range schema.Renames {
		if df, err = rename(df, r); err != nil {
			return df, err
		}
	}

	for _, col := range CanonicalColumns {
		if frame.HasColumn(df, col) {
			continue
		}

		if df, err = frame.Mutate(df, frame.MissingSeries(col, n)); err != nil {
			return df, err
		}
	}

	if df, err = toFloat(df, ColAnnualSalary); err != nil {
		return df, err
	}

	selected := df.Select(CanonicalColumns)
	if selected.Err != nil {
		return df, fmt.Errorf("failed to select canonical columns: %w", selected.Err)
	}

	return selected, nil
}

// rename moves r.From onto r.To. Absent sources are skipped; an existing
// target is replaced by the renamed column.
func rename(df dataframe.DataFrame, r Rename) (dataframe.DataFrame, error) {
	if r.From == r.To || !frame.HasColumn(df, r.From) {
		return df, nil
	}

	if frame.HasColumn(df, r.To) {
		df = df.Drop(r.To)
		if df.Err != nil {
			return df, fmt.Errorf("failed to drop %s before rename: %w", r.To, df.Err)
		}
	}

	out := df.Rename(r.To, r.From)
	if out.Err != nil {
		return df, fmt.Errorf("failed to rename %s to %s: %w", r.From, r.To, out.Err)
	}

	return out, nil
}

// toFloat re-types a text column as float; unparsable cells become missing.
func toFloat(df dataframe.DataFrame, name string) (dataframe.DataFrame, error) {
	values, missing, err := frame.Strings(df, name)
	if err != nil {
		return df, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.NaN()
		if missing[i] {
			continue
		}

		if f, parseErr := strconv.ParseFloat(strings.TrimSpace(v), 64); parseErr == nil {
			out[i] = f
		}
	}

	return frame.Mutate(df, series.New(out, series.Float, name))
}
