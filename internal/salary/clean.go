// Package salary scrapes per-state salary tables for a set of job titles and
// cleans them into one typed table.
package salary

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"devsurvey/internal/frame"
)

// Salary table columns.
const (
	ColState        = "State"
	ColAnnualSalary = "Annual Salary"
	ColMonthlyPay   = "Monthly Pay"
	ColWeeklyPay    = "Weekly Pay"
	ColHourlyWage   = "Hourly Wage"
	ColJobTitle     = "Job Title"
	ColAbbreviation = "Abbreviation"
	ColSalaryTier   = "Salary Tier"
)

// IntColumns are parsed as whole dollars.
var IntColumns = []string{ColAnnualSalary, ColMonthlyPay, ColWeeklyPay}

// ErrBadAmount is returned when a money cell does not parse.
var ErrBadAmount = errors.New("bad amount")

var moneyStripper = strings.NewReplacer("$", "", ",", "")

func stripMoney(s string) string {
	return strings.TrimSpace(moneyStripper.Replace(s))
}

// Clean strips "$" and "," from the pay columns and types them: integers for
// annual, monthly and weekly pay, float for the hourly wage. An empty hourly
// wage stays missing; an empty integer amount is an error.
func Clean(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	var err error

	for _, col := range IntColumns {
		if df, err = cleanColumn(df, col, series.Int); err != nil {
			return df, err
		}
	}

	return cleanColumn(df, ColHourlyWage, series.Float)
}

func cleanColumn(df dataframe.DataFrame, col string, typ series.Type) (dataframe.DataFrame, error) {
	values, missing, err := frame.Strings(df, col)
	if err != nil {
		return df, err
	}

	ints := make([]int, len(values))
	floats := make([]float64, len(values))

	for i, raw := range values {
		if missing[i] {
			if typ == series.Float {
				floats[i] = math.NaN()

				continue
			}

			return df, fmt.Errorf("%w: column %q row %d is empty", ErrBadAmount, col, i)
		}

		v := stripMoney(raw)

		switch typ {
		case series.Int:
			ints[i], err = strconv.Atoi(v)
		default:
			floats[i], err = strconv.ParseFloat(v, 64)
		}

		if err != nil {
			return df, fmt.Errorf("%w: column %q row %d: %q", ErrBadAmount, col, i, raw)
		}
	}

	if typ == series.Int {
		return frame.Mutate(df, series.New(ints, series.Int, col))
	}

	return frame.Mutate(df, series.New(floats, series.Float, col))
}
