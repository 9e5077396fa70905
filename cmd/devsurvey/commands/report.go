package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"

	"devsurvey/internal/cache"
	"devsurvey/internal/report"
	"devsurvey/internal/stack"
)

var (
	reportOut   *string
	reportBuild *bool
)

func init() {
	reportOut = reportCmd.Flags().StringP("out", "o", "", "Write the report here instead of stdout.")
	reportBuild = reportCmd.Flags().Bool("build", false, "Build the survey tables when no snapshot exists.")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--out report.md]",
	Short: "Summarizes the cached tables as markdown.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		var wide dataframe.DataFrame
		if *reportBuild {
			p := stack.NewPipeline(e.cfg, stack.NewSource(e.cfg, e.log), e.cache, e.log)
			wide, err = p.Get(cmd.Context(), true)
		} else {
			wide, err = e.cache.Load(cache.Wide)
		}

		if err != nil {
			return err
		}

		var salaries *dataframe.DataFrame

		df, err := e.cache.Load(cache.Salaries)
		switch {
		case err == nil:
			salaries = &df
		case errors.Is(err, cache.ErrCacheMiss):
			e.log.Warn("No salary snapshot, leaving salary sections out")
		default:
			return err
		}

		rep, err := report.Build(e.cfg.Features, wide, salaries)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}

		if *reportOut == "" {
			_, err = fmt.Fprint(os.Stdout, rep.Markdown())

			return err
		}

		if err := os.WriteFile(*reportOut, []byte(rep.Markdown()), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		e.log.Info("Report written", "path", *reportOut, "sections", len(rep.Sections))

		return nil
	},
}
