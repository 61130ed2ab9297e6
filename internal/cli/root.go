package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lachlan2k/labour-console/internal/config"
	"github.com/lachlan2k/labour-console/internal/logging"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	conf   *config.Config
	logger *zap.Logger
)

// NewRootCmd creates the root cobra command for the labour-console CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "labour-console",
		Short: "Operator console for the labour marketplace",
		Long:  "labour-console logs admins and contractors into the labour marketplace backend and serves the dashboard routes for the held session.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			conf, err = config.Load(flagConfig)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if cmd.Flags().Changed("log-level") {
				conf.Log.Level = flagLogLevel
			}
			if cmd.Flags().Changed("log-format") {
				conf.Log.Format = flagLogFormat
			}

			logger, err = logging.New(conf.Log.Level, conf.Log.Format)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "config.toml", "Path to config file")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "Log format (console, json)")

	root.AddCommand(
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
	)

	return root
}
