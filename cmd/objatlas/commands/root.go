// Package commands implements the objatlas command line.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/objatlas/internal/config"
	"github.com/Faultbox/objatlas/internal/logger"
	"github.com/Faultbox/objatlas/internal/merge"
)

var flags config.Flags

func init() {
	flags.Register(rootCmd.PersistentFlags())
	rootCmd.AddCommand(planCmd, configCmd)
}

var rootCmd = &cobra.Command{
	Use:   "objatlas",
	Short: "Merge the materials of an OBJ model into one texture atlas",
	Long: `objatlas packs every diffuse map used by an OBJ model into one
power-of-two texture, rewrites the texture coordinates to address it and
writes a model that references a single material.`,
	Example: `  objatlas -i house.obj -d out
  cat house.obj | objatlas -o - > merged.obj`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		p := merge.New(cfg)
		p.SetIO(cmd.InOrStdin(), cmd.OutOrStdout())
		_, err = p.Run()
		return err
	},
}

// setup loads the effective configuration and starts logging.
func setup() (*config.Config, error) {
	cfg, err := config.Load(&flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger.Debug("configuration loaded",
		zap.String("input", cfg.Input.Path),
		zap.String("directory", cfg.Output.Directory),
		zap.String("order", cfg.Atlas.Order),
		zap.Int("max_size", cfg.Atlas.MaxSize))
	return cfg, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
