package cli

import (
	"github.com/spf13/cobra"

	"github.com/BartekS5/tourmap/internal/config"
	"github.com/BartekS5/tourmap/pkg/logger"
)

type rootOptions struct {
	LogLevel string
	LogFile  string
	cfg      *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tourmap",
		Short: "tourmap - partner tour API field mapping",
		Long: `tourmap maps wholesaler tour API responses onto the travel target schema.
It inspects sample payloads, auto-detects bindings, previews and validates
transformed tours, and runs batch imports into MongoDB.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if opts.LogLevel == "" {
				opts.LogLevel = cfg.LogLevel
			}
			if opts.LogFile == "" {
				opts.LogFile = cfg.LogFile
			}
			opts.cfg = cfg
			return logger.InitLogger(opts.LogFile, opts.LogLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "Append JSON logs to this file")

	rootCmd.AddCommand(
		newCatalogCmd(),
		newAutoDetectCmd(),
		newTransformCmd(),
		newRunCmd(opts),
		newMappingCmd(opts),
	)

	return rootCmd
}
