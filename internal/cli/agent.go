package cli

import (
	"github.com/spf13/cobra"

	"github.com/miradorstack/aura/internal/agent"
	"github.com/miradorstack/aura/internal/tools"
)

func newAgentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Agent runtime registration helpers",
	}

	var format string
	manifest := &cobra.Command{
		Use:   "manifest",
		Short: "Print the agent manifest (name, model, instruction, tools)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, cat, err := opts.settings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			exec := tools.NewExecutor(tools.NewFacade(cat, tools.WithProject(cfg.Catalog.Project)))
			m := agent.Build(cfg.Agent.Name, cfg.Agent.Model, exec)
			return m.Write(cmd.OutOrStdout(), format)
		},
	}
	manifest.Flags().StringVarP(&format, "output", "o", "json", "Output format (json, yaml)")
	cmd.AddCommand(manifest)
	return cmd
}
