package commands

import (
	"github.com/spf13/cobra"
)

var configOut *string

func init() {
	configOut = configCmd.Flags().StringP("out", "o", "", "Write the effective config to this file instead of stdout.")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [--out devsurvey.yaml]",
	Short: "Prints the effective configuration after local and environment overrides.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		if *configOut != "" {
			if err := e.cfg.SaveConfig(*configOut); err != nil {
				return err
			}

			e.log.Info("Config written", "path", *configOut)

			return nil
		}

		data, err := e.cfg.YAML()
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	},
}
