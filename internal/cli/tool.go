package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/miradorstack/aura/internal/api"
	"github.com/miradorstack/aura/internal/tools"
)

type toolOptions struct {
	addr    string
	timeout time.Duration
}

// dial connects to a running aura-engine.
func (o *toolOptions) dial() (*api.Client, func() error, error) {
	conn, err := grpc.NewClient(o.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", o.addr, err)
	}
	return api.NewClient(conn), conn.Close, nil
}

func newToolCmd(opts *rootOptions) *cobra.Command {
	topts := &toolOptions{}
	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Call the agent tools in-process or against a running engine",
	}
	cmd.PersistentFlags().StringVar(&topts.addr, "addr", "", "gRPC address of aura-engine; empty runs in-process")
	cmd.PersistentFlags().DurationVar(&topts.timeout, "timeout", 10*time.Second, "Call timeout")

	cmd.AddCommand(newToolListCmd(opts, topts), newToolRunCmd(opts, topts))
	return cmd
}

func newToolListCmd(opts *rootOptions, topts *toolOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the tool definitions as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), topts.timeout)
			defer cancel()

			var defs []tools.ToolDefinition
			if topts.addr != "" {
				client, closeFn, err := topts.dial()
				if err != nil {
					return err
				}
				defer closeFn()
				if defs, err = client.ListTools(ctx); err != nil {
					return err
				}
			} else {
				exec, err := localExecutor(opts, cmd)
				if err != nil {
					return err
				}
				defs = exec.ListTools()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(defs)
		},
	}
}

func newToolRunCmd(opts *rootOptions, topts *toolOptions) *cobra.Command {
	var alertType string
	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Invoke one tool and print its JSON result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), topts.timeout)
			defer cancel()

			call := tools.ToolCall{Name: args[0], Arguments: map[string]any{"alert_type": alertType}}
			if topts.addr != "" {
				client, closeFn, err := topts.dial()
				if err != nil {
					return err
				}
				defer closeFn()
				res, err := client.InvokeTool(ctx, call)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Content)
				return nil
			}

			exec, err := localExecutor(opts, cmd)
			if err != nil {
				return err
			}
			res, err := exec.Execute(ctx, call)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Content)
			return nil
		},
	}
	cmd.Flags().StringVarP(&alertType, "alert-type", "a", "", "Scenario identifier or alias")
	_ = cmd.MarkFlagRequired("alert-type")
	return cmd
}

func localExecutor(opts *rootOptions, cmd *cobra.Command) (*tools.RecordingExecutor, error) {
	cfg, logger, cat, err := opts.settings(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	facade := tools.NewFacade(cat, tools.WithProject(cfg.Catalog.Project))
	return tools.NewRecordingExecutor(tools.NewExecutor(facade), logger, nil), nil
}
