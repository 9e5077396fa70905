package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"devsurvey/internal/formatter"
)

var fmtWrite *bool

func init() {
	fmtWrite = fmtCmd.Flags().BoolP("write", "w", false, "Write changes back instead of listing them.")
	rootCmd.AddCommand(fmtCmd)
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [path] [-w]",
	Short: "Realigns the tables of markdown reports under a path.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		count, changed, err := formatTree(root, *fmtWrite, func(path string) {
			if *fmtWrite {
				fmt.Fprintf(cmd.OutOrStdout(), "formatted %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "would format %s\n", path)
			}
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d markdown file(s), %d need formatting\n", count, changed)

		return nil
	},
}

// formatTree walks root and realigns every .md file, skipping dot
// directories. onChange is called for each file whose tables move.
func formatTree(root string, write bool, onChange func(path string)) (count, changed int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		count++

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		out := formatter.FormatMarkdown(string(data))
		if out == string(data) {
			return nil
		}

		changed++
		onChange(path)

		if !write {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		return os.WriteFile(path, []byte(out), info.Mode().Perm())
	})

	return count, changed, err
}
