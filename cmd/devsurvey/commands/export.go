package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"devsurvey/internal/cache"
	"devsurvey/internal/store"
	"devsurvey/pkg/metadata"
)

var exportDB *string

func init() {
	exportDB = exportCmd.Flags().String("db", "devsurvey.db", "The SQLite database to export into.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--db <path/to/output.db>]",
	Short: "Copies every cached table into a SQLite database.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		e, err := setup()
		if err != nil {
			return err
		}

		man, err := e.cache.Manifest()
		if err != nil {
			return err
		}

		st, err := store.Open(*exportDB)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := st.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		exported := 0

		for _, stage := range cache.Stages() {
			if !e.cache.Exists(stage) {
				e.log.Warn("Skipping missing snapshot", "stage", stage)

				continue
			}

			df, err := e.cache.Load(stage)
			if err != nil {
				return err
			}

			var entry *metadata.Entry
			if ent, ok := man.Entries[string(stage)]; ok {
				entry = &ent
			}

			name := tableName(stage)
			if err := st.Export(cmd.Context(), string(stage), name, df, entry); err != nil {
				return err
			}

			n, err := st.Count(cmd.Context(), name)
			if err != nil {
				return err
			}

			if n != df.Nrow() {
				return fmt.Errorf("table %s holds %d rows, snapshot has %d", name, n, df.Nrow())
			}

			e.log.Info("Exported table", "stage", stage, "table", name, "rows", n)
			exported++
		}

		if exported == 0 {
			return fmt.Errorf("%w: nothing to export, run build first", cache.ErrCacheMiss)
		}

		records, err := st.Exports(cmd.Context())
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Stage", "Table", "Rows", "Run", "Exported"})

		for _, r := range records {
			t.AppendRow(table.Row{r.Stage, r.Table, r.Rows, r.RunID, r.ExportedAt.Format("2006-01-02 15:04")})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()

		return nil
	},
}

// tableName maps a stage to its SQL table: wide -> stack_wide.
func tableName(stage cache.Stage) string {
	if stage == cache.Salaries {
		return string(stage)
	}

	return "stack_" + string(stage)
}
