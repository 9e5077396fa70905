// Package features derives yes/no indicator columns from the survey's list-valued answers.
package features

import (
	"regexp"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"devsurvey/internal/frame"
)

// Indicator cell values.
const (
	Yes = "yes"
	No  = "no"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// ColumnName derives the indicator column for a keyword: lower-cased with
// everything outside [a-z0-9] removed ("C++" -> "c", "IBM DB2" -> "ibmdb2").
func ColumnName(value string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(value), "")
}

// VectorMatcher compiles a case-insensitive pattern that finds any of terms as a
// whole list item. Survey list answers are separated by ';' or ',', so an
// item boundary is start/end of string, a separator or whitespace.
func VectorMatcher(terms ...string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}

	return regexp.MustCompile(`(?i)(?:^|[,;\s])(?:` + strings.Join(quoted, "|") + `)(?:$|[,;\s])`)
}

// Flag returns Yes when re matches value and No otherwise. Missing cells are No.
func Flag(re *regexp.Regexp, value string, missing bool) string {
	if !missing && re.MatchString(value) {
		return Yes
	}

	return No
}

// ExtractVector adds one indicator column per value, each set when the value
// appears in column col.
func ExtractVector(df dataframe.DataFrame, col string, values []string) (dataframe.DataFrame, error) {
	var err error

	for _, value := range values {
		df, err = extract(df, col, ColumnName(value), VectorMatcher(value))
		if err != nil {
			return df, err
		}
	}

	return df, nil
}

// ExtractList adds a single indicator column name, set when any of terms
// appears in column col.
func ExtractList(df dataframe.DataFrame, col, name string, terms []string) (dataframe.DataFrame, error) {
	return extract(df, col, name, VectorMatcher(terms...))
}

func extract(df dataframe.DataFrame, src, dst string, re *regexp.Regexp) (dataframe.DataFrame, error) {
	return frame.MapStrings(df, src, dst, func(value string, missing bool) (string, bool) {
		return Flag(re, value, missing), false
	})
}

// VectorColumns lists the indicator columns ExtractVector creates for values, in order.
func VectorColumns(values []string) []string {
	cols := make([]string, 0, len(values))
	for _, v := range values {
		cols = append(cols, ColumnName(v))
	}

	return cols
}
