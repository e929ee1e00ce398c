package commands

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/objatlas/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [file]",
	Short: "Print the effective configuration, or save it to file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(&flags)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return cfg.SaveTo(args[0])
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}
