package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"devsurvey/internal/crawler"
	"devsurvey/internal/salary"
	"devsurvey/internal/stack"
)

const (
	targetStack    = "stack"
	targetSalaries = "salaries"
	targetAll      = "all"
)

func init() {
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:       "build [stack|salaries|all]",
	Short:     "Rebuilds cached tables from their sources.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{targetStack, targetSalaries, targetAll},
	RunE: func(cmd *cobra.Command, args []string) error {
		target := targetAll
		if len(args) == 1 {
			target = args[0]
		}

		e, err := setup()
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		if target == targetStack || target == targetAll {
			if err := buildStack(ctx, e); err != nil {
				return err
			}
		}

		if target == targetSalaries || target == targetAll {
			if err := buildSalaries(ctx, e); err != nil {
				return err
			}
		}

		return nil
	},
}

func buildStack(ctx context.Context, e *env) error {
	start := time.Now()

	p := stack.NewPipeline(e.cfg, stack.NewSource(e.cfg, e.log), e.cache, e.log)

	wide, err := p.Build(ctx)
	if err != nil {
		return fmt.Errorf("build stack: %w", err)
	}

	e.log.Info("Survey tables built", "rows", wide.Nrow(), "cols", wide.Ncol(), "elapsed", time.Since(start))

	return nil
}

func buildSalaries(ctx context.Context, e *env) (err error) {
	start := time.Now()

	fetcher, err := crawler.NewFetcher(e.cfg, e.log)
	if err != nil {
		return err
	}

	client := crawler.NewClient(fetcher, e.log)
	defer func() {
		if cerr := client.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	p := salary.NewPipeline(e.cfg, client, e.cache, e.log)

	df, err := p.Build(ctx)
	if err != nil {
		return fmt.Errorf("build salaries: %w", err)
	}

	e.log.Info("Salary table built", "rows", df.Nrow(), "elapsed", time.Since(start))

	return nil
}
