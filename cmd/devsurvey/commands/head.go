package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"devsurvey/internal/cache"
	"devsurvey/pkg/utils"
)

var (
	headRows  *int
	headCols  *[]string
	headWidth *int
)

func init() {
	headRows = headCmd.Flags().IntP("rows", "n", 10, "Number of rows to print.")
	headCols = headCmd.Flags().StringSliceP("cols", "c", nil, "Only print these columns.")
	headWidth = headCmd.Flags().IntP("width", "w", 40, "Truncate cells to this many characters, 0 for no limit.")
	rootCmd.AddCommand(headCmd)
}

var headCmd = &cobra.Command{
	Use:   "head <raw|wide|salaries> [-n rows] [-c col,col]",
	Short: "Prints the first rows of a cached table.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stage, err := cache.ParseStage(args[0])
		if err != nil {
			return err
		}

		e, err := setup()
		if err != nil {
			return err
		}

		df, err := e.cache.Load(stage)
		if err != nil {
			return err
		}

		if len(*headCols) > 0 {
			df = df.Select(*headCols)
			if df.Err != nil {
				return fmt.Errorf("select columns: %w", df.Err)
			}
		}

		records := df.Records()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(toRow(records[0], 0))

		for i, rec := range records[1:] {
			if i >= *headRows {
				break
			}

			t.AppendRow(toRow(rec, *headWidth))
		}

		t.AppendFooter(table.Row{fmt.Sprintf("%d rows x %d cols", df.Nrow(), df.Ncol())})
		t.SetStyle(table.StyleRounded)
		t.Render()

		return nil
	},
}

// toRow converts cells to a table row, truncating each to width runes.
func toRow(cells []string, width int) table.Row {
	sh := utils.NewStringHelper()

	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = sh.TruncateString(c, width)
	}

	return row
}
