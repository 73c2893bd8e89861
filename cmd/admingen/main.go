package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/internal/config"
	"github.com/goliatone/go-admingen/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "admingen",
		Short: "Schema-driven admin CRUD generator",
		Long: `admingen derives admin tables and forms from entity definitions,
OpenAPI documents or JSON Schema files and serves them over HTTP.

Examples:
  admingen serve                          # Serve the bundled demo entities
  admingen serve --config admingen.yaml   # Serve with a config file
  admingen derive ./openapi.yaml          # Print the derived configurations
  admingen prompt vehicles                # Create a record from the terminal`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newServeCommand(flags),
		newDeriveCommand(flags),
		newPromptCommand(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "admingen %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)
	return root
}

// setup loads the configuration and builds the logger every command shares.
func setup(flags *globalFlags) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
