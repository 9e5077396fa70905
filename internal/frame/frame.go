// Package frame holds the small set of dataframe helpers the pipeline stages share.
package frame

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Missing is how a missing cell is spelled in cached CSV files.
const Missing = "NaN"

// NaNValues are the cell spellings read back as missing.
var NaNValues = []string{"NA", "NaN", "<nil>", "nan", ""}

// Frame errors.
var (
	ErrMissingColumn = errors.New("column not found")
	ErrEmptyFrame    = errors.New("frame has no rows")
)

// ReadCSV reads a CSV with every column typed as string, except those named
// in types.
func ReadCSV(r io.Reader, types map[string]series.Type) (dataframe.DataFrame, error) {
	opts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NaNValues),
		dataframe.WithLazyQuotes(true),
	}
	if len(types) > 0 {
		opts = append(opts, dataframe.WithTypes(types))
	}

	df := dataframe.ReadCSV(r, opts...)
	if df.Err != nil {
		return df, fmt.Errorf("failed to read csv: %w", df.Err)
	}

	return df, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string, types map[string]series.Type) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	return ReadCSV(f, types)
}

// WriteCSVFile writes df to path through a temporary file so readers never
// see a half-written snapshot.
func WriteCSVFile(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("refusing to write broken frame: %w", df.Err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := df.WriteCSV(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write csv: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	return nil
}

// HasColumn reports whether df has a column called name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}

	return false
}

// Strings returns the cells of a column and a parallel missing mask.
func Strings(df dataframe.DataFrame, name string) ([]string, []bool, error) {
	if !HasColumn(df, name) {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}

	col := df.Col(name)
	values := make([]string, col.Len())
	missing := make([]bool, col.Len())

	for i := 0; i < col.Len(); i++ {
		elem := col.Elem(i)
		if elem.IsNA() {
			missing[i] = true

			continue
		}

		values[i] = elem.String()
	}

	return values, missing, nil
}

// StringSeries builds a string series where missing[i] marks a missing cell.
// A nil mask means no cell is missing.
func StringSeries(name string, values []string, missing []bool) series.Series {
	cells := make([]string, len(values))
	for i, v := range values {
		if missing != nil && missing[i] {
			cells[i] = Missing

			continue
		}

		cells[i] = v
	}

	return series.New(cells, series.String, name)
}

// MissingSeries builds a string series of n missing cells.
func MissingSeries(name string, n int) series.Series {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = Missing
	}

	return series.New(cells, series.String, name)
}

// ConstSeries builds a string series of n copies of value.
func ConstSeries(name, value string, n int) series.Series {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = value
	}

	return series.New(cells, series.String, name)
}

// MapFunc maps one cell to a new value; the bool results flag missing cells.
type MapFunc func(value string, missing bool) (string, bool)

// MapStrings applies fn to every cell of src and stores the result in dst,
// replacing dst when it exists and appending it otherwise.
func MapStrings(df dataframe.DataFrame, src, dst string, fn MapFunc) (dataframe.DataFrame, error) {
	values, missing, err := Strings(df, src)
	if err != nil {
		return df, err
	}

	out := make([]string, len(values))
	outMissing := make([]bool, len(values))

	for i := range values {
		out[i], outMissing[i] = fn(values[i], missing[i])
	}

	return Mutate(df, StringSeries(dst, out, outMissing))
}

// Mutate adds or replaces a column and surfaces gota's deferred error.
func Mutate(df dataframe.DataFrame, s series.Series) (dataframe.DataFrame, error) {
	out := df.Mutate(s)
	if out.Err != nil {
		return df, fmt.Errorf("failed to set column %s: %w", s.Name, out.Err)
	}

	return out, nil
}

// Concat stacks frames with identical column sets, in order.
func Concat(frames []dataframe.DataFrame) (dataframe.DataFrame, error) {
	if len(frames) == 0 {
		return dataframe.DataFrame{}, ErrEmptyFrame
	}

	out := frames[0]
	for i := 1; i < len(frames); i++ {
		out = out.RBind(frames[i])
		if out.Err != nil {
			return out, fmt.Errorf("failed to concatenate frame %d: %w", i, out.Err)
		}
	}

	return out, nil
}
