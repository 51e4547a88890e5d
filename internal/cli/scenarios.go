package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newScenariosCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenarios in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, cat, err := opts.settings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rows := [][]string{{"ID", "Title", "Severity", "Aliases"}}
			for _, s := range cat.All() {
				rows = append(rows, []string{string(s.ID), s.Title, string(s.Alert.Severity), strings.Join(s.Aliases, ", ")})
			}
			out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	var format string
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one scenario record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, cat, err := opts.settings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s, err := cat.Lookup(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(s); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
		},
	}
	show.Flags().StringVarP(&format, "output", "o", "yaml", "Output format (yaml, json)")
	cmd.AddCommand(show)
	return cmd
}
