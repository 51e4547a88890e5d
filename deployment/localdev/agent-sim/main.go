package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/miradorstack/aura/internal/api"
	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/tools"
	"github.com/miradorstack/aura/internal/utils"
)

// agent-sim plays the part of the agent runtime against a local aura-engine:
// it calls the four tools in order and then walks a session to a decision.
func main() {
	addr := flag.String("addr", "localhost:50051", "aura-engine gRPC address")
	alertType := flag.String("alert-type", "cost_anomaly", "scenario to simulate")
	decision := flag.String("decision", string(models.TriggerApprove), "final decision: approve, reject or defer")
	timeout := flag.Duration("timeout", 10*time.Second, "overall timeout")
	flag.Parse()

	logger := utils.NewLogger("debug", false)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Error("dial failed", slog.String("addr", *addr), slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()
	client := api.NewClient(conn)

	defs, err := client.ListTools(ctx)
	if err != nil {
		logger.Error("list tools failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("tools registered", slog.Int("count", len(defs)))

	for _, name := range []string{
		tools.ToolProcessAlert,
		tools.ToolAnalyzeRootCause,
		tools.ToolGenerateRemediationPlan,
		tools.ToolSimulateExecution,
	} {
		res, err := client.InvokeTool(ctx, tools.ToolCall{Name: name, Arguments: map[string]any{"alert_type": *alertType}})
		if err != nil {
			logger.Error("tool call failed", slog.String("tool", name), slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("tool result", slog.String("tool", name), slog.String("call_id", res.CallID), slog.Int("bytes", len(res.Content)))
		if _, failed := res.Result["error"]; failed {
			logger.Warn("tool reported an error", slog.Any("result", res.Result))
			os.Exit(2)
		}
	}

	created, err := client.CreateSession(ctx)
	if err != nil {
		logger.Error("create session failed", slog.Any("error", err))
		os.Exit(1)
	}
	id := created.SessionID
	defer func() {
		if err := client.CloseSession(context.Background(), id); err != nil {
			logger.Warn("close session failed", slog.Any("error", err))
		}
	}()

	if _, err := client.SelectScenario(ctx, id, *alertType); err != nil {
		logger.Error("select scenario failed", slog.Any("error", err))
		return
	}

	final, ok := models.ParseTrigger(*decision)
	if !ok {
		logger.Error("unknown decision", slog.String("decision", *decision))
		return
	}
	var view models.View
	for _, trig := range []models.Trigger{models.TriggerDetect, models.TriggerStartAnalysis, models.TriggerProposePlan, final} {
		view, err = client.Advance(ctx, id, trig)
		if err != nil {
			logger.Error("advance failed", slog.String("trigger", string(trig)), slog.Any("error", err))
			return
		}
		logger.Info("pipeline advanced", slog.String("trigger", string(trig)), slog.String("state", string(view.State)))
	}

	if view.Execution != nil {
		logger.Info("remediation complete",
			slog.String("commands_run", view.Execution.CommandsRun()),
			slog.String("outcome", view.Execution.Outcome),
		)
	}
	if view.Notice != "" {
		logger.Info("notice", slog.String("text", view.Notice))
	}
}
