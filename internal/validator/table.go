// Package validator checks the contents of built tables beyond what the
// manifest hash can tell.
package validator

import (
	"fmt"
	"strconv"

	"github.com/go-gota/gota/dataframe"

	"devsurvey/internal/config"
	"devsurvey/internal/features"
	"devsurvey/internal/frame"
	"devsurvey/internal/normalizer"
	"devsurvey/internal/salary"
)

// maxErrors caps how many cell errors a result keeps. Stats still count all.
const maxErrors = 20

// ValidationError points at one bad cell.
type ValidationError struct {
	Column  string
	Row     int
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Row < 0 {
		return e.Message
	}

	return fmt.Sprintf("row %d [%s]: %s (found %q)", e.Row, e.Column, e.Message, e.Value)
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	TotalRows       int
	ValidRows       int
	InvalidRows     int
	RowsWithMissing int
}

// CellCheck returns an error message for a bad cell, or "".
type CellCheck func(value string, missing bool) string

// TableValidator validates the survey and salary tables.
type TableValidator struct {
	years     map[int]bool
	flagCols  []string
	tierNames map[string]bool
}

// NewTableValidator builds a validator for the years and feature columns of cfg.
func NewTableValidator(cfg *config.Config) *TableValidator {
	v := &TableValidator{
		years:     map[int]bool{},
		tierNames: map[string]bool{},
	}

	for _, y := range cfg.Stack.Years {
		v.years[y] = true
	}

	f := cfg.Features
	v.flagCols = append(v.flagCols, features.VectorColumns(f.Languages)...)
	v.flagCols = append(v.flagCols, features.VectorColumns(f.Databases)...)
	v.flagCols = append(v.flagCols, features.VectorColumns(f.Platforms)...)

	for _, l := range f.ListColumns {
		v.flagCols = append(v.flagCols, l.Name)
	}

	for _, t := range salary.Tiers {
		v.tierNames[t.Label] = true
	}

	return v
}

// ValidateSurvey checks a raw or wide survey table. Flag columns are checked
// only when present.
func (v *TableValidator) ValidateSurvey(df dataframe.DataFrame) *ValidationResult {
	checks := map[string]CellCheck{
		normalizer.ColYear:         v.checkYear,
		normalizer.ColAnnualSalary: nonNegative,
	}

	for _, col := range v.flagCols {
		checks[col] = yesNo
	}

	return validate(df, checks, []string{normalizer.ColYear}, []string{normalizer.ColCountry})
}

// ValidateSalaries checks the combined salary table. A row missing its state
// abbreviation is a warning, not an error.
func (v *TableValidator) ValidateSalaries(df dataframe.DataFrame) *ValidationResult {
	checks := map[string]CellCheck{
		salary.ColAnnualSalary: positive,
		salary.ColMonthlyPay:   positive,
		salary.ColWeeklyPay:    positive,
		salary.ColHourlyWage:   positive,
		salary.ColSalaryTier:   v.checkTier,
	}

	required := []string{salary.ColState, salary.ColAnnualSalary, salary.ColJobTitle}

	return validate(df, checks, required, []string{salary.ColAbbreviation})
}

// validate runs checks over every row. Required columns must exist;
// optional ones only feed the missing-cell count.
func validate(df dataframe.DataFrame, checks map[string]CellCheck, required, watched []string) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Stats:   ValidationStats{TotalRows: df.Nrow()},
	}

	for _, col := range required {
		if !frame.HasColumn(df, col) {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Row:     -1,
				Message: fmt.Sprintf("required column %s is missing", col),
			})
		}
	}

	if !result.IsValid {
		return result
	}

	bad := make([]bool, df.Nrow())

	for _, col := range df.Names() {
		check, ok := checks[col]
		if !ok {
			continue
		}

		values, missing, err := frame.Strings(df, col)
		if err != nil {
			continue
		}

		for i := range values {
			msg := check(values[i], missing[i])
			if msg == "" {
				continue
			}

			bad[i] = true

			if len(result.Errors) < maxErrors {
				result.Errors = append(result.Errors, ValidationError{Column: col, Row: i, Value: values[i], Message: msg})
			}
		}
	}

	missingRow := make([]bool, df.Nrow())

	for _, col := range watched {
		_, missing, err := frame.Strings(df, col)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("column %s is missing", col))

			continue
		}

		for i, m := range missing {
			missingRow[i] = missingRow[i] || m
		}
	}

	for i := range bad {
		if bad[i] {
			result.Stats.InvalidRows++
		} else {
			result.Stats.ValidRows++
		}

		if missingRow[i] {
			result.Stats.RowsWithMissing++
		}
	}

	if result.Stats.RowsWithMissing > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d row(s) missing one of %v", result.Stats.RowsWithMissing, watched))
	}

	result.IsValid = result.Stats.InvalidRows == 0

	return result
}

func (v *TableValidator) checkYear(value string, missing bool) string {
	if missing {
		return "year is empty"
	}

	y, err := strconv.Atoi(value)
	if err != nil {
		return "year is not a number"
	}

	if len(v.years) > 0 && !v.years[y] {
		return "year is not configured"
	}

	return ""
}

func (v *TableValidator) checkTier(value string, missing bool) string {
	if missing || v.tierNames[value] {
		return ""
	}

	return "unknown salary tier"
}

func yesNo(value string, missing bool) string {
	if !missing && (value == features.Yes || value == features.No) {
		return ""
	}

	return "expected Yes or No"
}

func nonNegative(value string, missing bool) string {
	return amount(value, missing, 0, "amount is negative")
}

func positive(value string, missing bool) string {
	return amount(value, missing, 1e-9, "amount is not positive")
}

func amount(value string, missing bool, min float64, msg string) string {
	if missing {
		return ""
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return "amount is not a number"
	}

	if f < min {
		return msg
	}

	return ""
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "valid"
	if !r.IsValid {
		status = "invalid"
	}

	return fmt.Sprintf(
		"%s | Total: %d | Valid: %d | Invalid: %d | Warnings: %d",
		status,
		r.Stats.TotalRows,
		r.Stats.ValidRows,
		r.Stats.InvalidRows,
		len(r.Warnings),
	)
}
