package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/miradorstack/aura/internal/dashboard"
	"github.com/miradorstack/aura/internal/engine"
	"github.com/miradorstack/aura/internal/models"
)

// firstChoice answers the first scenario prompt with a preset scenario.
type firstChoice struct {
	dashboard.Prompter
	scenario models.ScenarioID
}

func (p *firstChoice) ChooseScenario(options []dashboard.ScenarioOption) (models.ScenarioID, error) {
	if p.scenario != "" {
		id := p.scenario
		p.scenario = ""
		return id, nil
	}
	return p.Prompter.ChooseScenario(options)
}

func newDemoCmd(opts *rootOptions) *cobra.Command {
	var (
		scenario string
		fast     bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the interactive remediation demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, cat, err := opts.settings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if scenario != "" {
				if _, err := cat.Resolve(scenario); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pipeline := engine.NewPipeline(cat, engine.WithLogger(logger))
			prompter := &firstChoice{Prompter: dashboard.TerminalPrompter{}, scenario: models.ScenarioID(scenario)}
			d := dashboard.New(pipeline, cat, prompter,
				dashboard.WithOutput(cmd.OutOrStdout()),
				dashboard.WithLogger(logger),
				dashboard.WithFast(fast),
			)
			err = d.Run(ctx)
			if errors.Is(err, dashboard.ErrAborted) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "Start with this scenario instead of the picker")
	cmd.Flags().BoolVar(&fast, "fast", false, "Disable progress animation and delays")
	return cmd
}
