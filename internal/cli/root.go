package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/config"
	"github.com/miradorstack/aura/internal/utils"
)

// Build metadata, overridden with -ldflags at release time.
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "aura"

type rootOptions struct {
	configPath string
	logLevel   string
	packs      []string
}

// settings loads configuration, logger and catalog for a command.
func (o *rootOptions) settings(errOut io.Writer) (*config.Config, *slog.Logger, *catalog.Catalog, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if len(o.packs) > 0 {
		cfg.Catalog.Packs = o.packs
	}
	logger := utils.NewLoggerTo(errOut, cfg.Logging.Level, cfg.Logging.JSON)

	cat, err := catalog.Load(cfg.Catalog.Packs, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load scenarios: %w", err)
	}
	return cfg, logger, cat, nil
}

// NewRootCmd assembles the aura command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Aura walks cloud alerts through detection, analysis, planning and approval",
		Long: `Aura is an autonomous remediation agent demo for Google Cloud.

It provides:
- an interactive terminal demo of the remediation workflow
- the four agent tools (process, analyze, plan, simulate execution)
- the agent manifest for registration with an agent runtime`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringSliceVar(&opts.packs, "packs", nil, "Scenario pack glob patterns")

	cmd.AddCommand(
		newDemoCmd(opts),
		newScenariosCmd(opts),
		newToolCmd(opts),
		newAgentCmd(opts),
		newAuditCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}
