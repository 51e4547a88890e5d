package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/miradorstack/aura/internal/audit"
	"github.com/miradorstack/aura/internal/config"
	"github.com/miradorstack/aura/internal/insights"
	"github.com/miradorstack/aura/internal/utils"
)

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the decision audit trail",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Audit database path (defaults to audit.path from config)")

	open := func() (*audit.Log, error) {
		path := dbPath
		if path == "" {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return nil, err
			}
			path = cfg.Audit.Path
		}
		return audit.Open(path)
	}

	var sessionID string
	events := &cobra.Command{
		Use:   "events",
		Short: "Print audited decisions as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := open()
			if err != nil {
				return err
			}
			defer log.Close()

			evs, err := log.Events(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, ev := range evs {
				if err := enc.Encode(ev); err != nil {
					return err
				}
			}
			return nil
		},
	}
	events.Flags().StringVar(&sessionID, "session", "", "Only events of this session")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Summarise decisions per scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := open()
			if err != nil {
				return err
			}
			defer log.Close()

			evs, err := log.Events(cmd.Context(), "")
			if err != nil {
				return err
			}
			logger := utils.NewLoggerTo(cmd.ErrOrStderr(), opts.logLevel, false)
			patterns, err := insights.NewMiner(logger).Mine(cmd.Context(), evs)
			if err != nil {
				return err
			}
			if len(patterns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No decisions recorded.")
				return nil
			}

			rows := [][]string{{"Scenario", "Sessions", "Approved", "Rejected", "Deferred", "Approval Rate", "Top Actions", "Last Seen"}}
			for _, p := range patterns {
				rows = append(rows, []string{
					string(p.Scenario),
					strconv.Itoa(p.Sessions),
					strconv.Itoa(p.Approvals),
					strconv.Itoa(p.Rejections),
					strconv.Itoa(p.Deferrals),
					fmt.Sprintf("%.0f%%", p.ApprovalRate*100),
					strings.Join(p.TopActions, ", "),
					utils.ISOTimestamp(p.LastSeen),
				})
			}
			out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.AddCommand(events, summary)
	return cmd
}
