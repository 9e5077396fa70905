// Package report summarizes the cached tables as a markdown document.
package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"devsurvey/internal/features"
	"devsurvey/internal/formatter"
	"devsurvey/internal/frame"
	"devsurvey/internal/normalizer"
	"devsurvey/internal/salary"
)

// Section is one titled table of the report.
type Section struct {
	Heading string
	Table   formatter.Table
}

// Report is an ordered list of sections.
type Report struct {
	Title    string
	Sections []Section
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n", r.Title)

	for _, s := range r.Sections {
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", s.Heading, formatter.RenderTable(s.Table))
	}

	return sb.String()
}

var numeric = []formatter.Align{formatter.AlignLeft, formatter.AlignRight, formatter.AlignRight}

// group collects row indexes by the text value of a column, in sorted key order.
type group struct {
	key  string
	rows []int
}

func groupBy(df dataframe.DataFrame, col string) ([]group, error) {
	keys, missing, err := frame.Strings(df, col)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}

	var groups []group

	for i, k := range keys {
		if missing[i] {
			continue
		}

		pos, ok := index[k]
		if !ok {
			pos = len(groups)
			index[k] = pos
			groups = append(groups, group{key: k})
		}

		groups[pos].rows = append(groups[pos].rows, i)
	}

	sort.Slice(groups, func(a, b int) bool { return groups[a].key < groups[b].key })

	return groups, nil
}

// median of the non-missing float values of col at rows; NaN when none.
func median(df dataframe.DataFrame, col string, rows []int) float64 {
	s := df.Col(col)

	values := make([]float64, 0, len(rows))
	for _, i := range rows {
		if e := s.Elem(i); !e.IsNA() && !math.IsNaN(e.Float()) {
			values = append(values, e.Float())
		}
	}

	if len(values) == 0 {
		return math.NaN()
	}

	sort.Float64s(values)

	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}

	return (values[mid-1] + values[mid]) / 2
}

func money(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}

	return "$" + strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

func share(n, total int) string {
	if total == 0 {
		return "n/a"
	}

	return strconv.FormatFloat(100*float64(n)/float64(total), 'f', 1, 64) + "%"
}

// YearSection counts respondents and the median salary per survey year.
func YearSection(wide dataframe.DataFrame) (Section, error) {
	groups, err := groupBy(wide, normalizer.ColYear)
	if err != nil {
		return Section{}, err
	}

	if !frame.HasColumn(wide, normalizer.ColAnnualSalary) {
		return Section{}, fmt.Errorf("%w: %s", frame.ErrMissingColumn, normalizer.ColAnnualSalary)
	}

	t := formatter.Table{Header: []string{"Year", "Respondents", "Median salary"}, Align: numeric}
	for _, g := range groups {
		t.Rows = append(t.Rows, []string{
			g.key,
			strconv.Itoa(len(g.rows)),
			money(median(wide, normalizer.ColAnnualSalary, g.rows)),
		})
	}

	return Section{Heading: "Respondents by year", Table: t}, nil
}

// AdoptionSection reports the share of respondents answering yes for each
// feature column, most adopted first.
func AdoptionSection(heading string, wide dataframe.DataFrame, cols []string) (Section, error) {
	type adoption struct {
		col string
		yes int
	}

	rows := make([]adoption, 0, len(cols))

	for _, col := range cols {
		values, _, err := frame.Strings(wide, col)
		if err != nil {
			return Section{}, err
		}

		a := adoption{col: col}
		for _, v := range values {
			if v == features.Yes {
				a.yes++
			}
		}

		rows = append(rows, a)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].yes > rows[j].yes })

	t := formatter.Table{Header: []string{"Column", "Yes", "Share"}, Align: numeric}
	for _, a := range rows {
		t.Rows = append(t.Rows, []string{a.col, strconv.Itoa(a.yes), share(a.yes, wide.Nrow())})
	}

	return Section{Heading: heading, Table: t}, nil
}

// JobSection reports the median annual salary per job title.
func JobSection(salaries dataframe.DataFrame) (Section, error) {
	groups, err := groupBy(salaries, salary.ColJobTitle)
	if err != nil {
		return Section{}, err
	}

	if !frame.HasColumn(salaries, salary.ColAnnualSalary) {
		return Section{}, fmt.Errorf("%w: %s", frame.ErrMissingColumn, salary.ColAnnualSalary)
	}

	t := formatter.Table{Header: []string{"Job title", "States", "Median annual salary"}, Align: numeric}
	for _, g := range groups {
		t.Rows = append(t.Rows, []string{
			g.key,
			strconv.Itoa(len(g.rows)),
			money(median(salaries, salary.ColAnnualSalary, g.rows)),
		})
	}

	return Section{Heading: "Salary by job title", Table: t}, nil
}

// TierSection counts salary rows per tier, in tier order.
func TierSection(salaries dataframe.DataFrame) (Section, error) {
	values, missing, err := frame.Strings(salaries, salary.ColSalaryTier)
	if err != nil {
		return Section{}, err
	}

	counts := map[string]int{}
	for i, v := range values {
		if !missing[i] {
			counts[v]++
		}
	}

	t := formatter.Table{Header: []string{"Tier", "Rows", "Share"}, Align: numeric}
	for _, tier := range salary.Tiers {
		n := counts[tier.Label]
		t.Rows = append(t.Rows, []string{tier.Label, strconv.Itoa(n), share(n, salaries.Nrow())})
	}

	return Section{Heading: "Salary tiers", Table: t}, nil
}

// CategorySection counts the values of a categorical column, missing included.
func CategorySection(wide dataframe.DataFrame, col string) (Section, error) {
	values, missing, err := frame.Strings(wide, col)
	if err != nil {
		return Section{}, err
	}

	counts := map[string]int{}
	for i, v := range values {
		if missing[i] {
			v = "(missing)"
		}

		counts[v]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	t := formatter.Table{Header: []string{col, "Rows", "Share"}, Align: numeric}
	for _, k := range keys {
		t.Rows = append(t.Rows, []string{k, strconv.Itoa(counts[k]), share(counts[k], wide.Nrow())})
	}

	return Section{Heading: col, Table: t}, nil
}
