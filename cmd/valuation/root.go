package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/company-valuation/internal/config"
	"github.com/iwvelando/company-valuation/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "valuation",
		Short:         "Company valuation service",
		Long:          `valuation serves the signup, verification and report wizards of the company valuation product and projects revenue from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newProjectCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// load reads the application configuration and builds the logger from it.
// A missing default config file falls back to built-in defaults.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Configuration, *zap.Logger, error) {
	path := o.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, o.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return conf, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "valuation %s\n", version)
		},
	}
}
