package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"devsurvey/internal/cache"
	"devsurvey/internal/validator"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Checks every cached table against its manifest hash and validates its contents.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		man, err := e.cache.Manifest()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Stage", "Rows", "Cols", "Built", "Status", "Contents"})

		v := validator.NewTableValidator(e.cfg)

		var (
			errs   []error
			failed int
		)

		for _, stage := range cache.Stages() {
			if !e.cache.Exists(stage) {
				t.AppendRow(table.Row{stage, "", "", "", "missing", ""})

				continue
			}

			entry := man.Entries[string(stage)]
			status := "ok"
			before := len(errs)

			if err := e.cache.Verify(stage); err != nil {
				status = err.Error()
				errs = append(errs, err)
			}

			contents, err := validateStage(e, v, stage)
			if err != nil {
				errs = append(errs, err)
			}

			if len(errs) > before {
				failed++
			}

			built := ""
			if !entry.LastModify.IsZero() {
				built = entry.LastModify.Format("2006-01-02 15:04")
			}

			t.AppendRow(table.Row{stage, entry.Rows, entry.Columns, built, status, contents})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()

		for _, name := range man.Stages() {
			stage, err := cache.ParseStage(name)
			if err != nil || !e.cache.Exists(stage) {
				e.log.Warn("Manifest entry has no snapshot", "stage", name)
			}
		}

		if len(errs) > 0 {
			return fmt.Errorf("%d snapshot(s) failed verification: %w", failed, errors.Join(errs...))
		}

		return nil
	},
}

// validateStage checks the contents of one snapshot and logs what it finds.
func validateStage(e *env, v *validator.TableValidator, stage cache.Stage) (string, error) {
	df, err := e.cache.Load(stage)
	if err != nil {
		return "unreadable", err
	}

	var result *validator.ValidationResult
	if stage == cache.Salaries {
		result = v.ValidateSalaries(df)
	} else {
		result = v.ValidateSurvey(df)
	}

	for _, w := range result.Warnings {
		e.log.Warn("Validation warning", "stage", stage, "warning", w)
	}

	for _, ve := range result.Errors {
		e.log.Error("Validation error", "stage", stage, "error", ve.Error())
	}

	if !result.IsValid {
		return result.String(), fmt.Errorf("%s: %d invalid row(s)", stage, result.Stats.InvalidRows)
	}

	return result.String(), nil
}
