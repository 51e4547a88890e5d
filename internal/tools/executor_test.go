package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListToolsAdvertisesCatalog(t *testing.T) {
	defs := NewExecutor(newFacade()).ListTools()
	require.Len(t, defs, 4)

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
		props := d.Parameters["properties"].(map[string]any)
		alertType := props["alert_type"].(map[string]any)
		assert.Equal(t, []string{"cost_anomaly", "performance_degradation", "security_vulnerability"}, alertType["enum"])
		assert.Equal(t, []string{"alert_type"}, d.Parameters["required"])
	}
	assert.Equal(t, []string{ToolProcessAlert, ToolAnalyzeRootCause, ToolGenerateRemediationPlan, ToolSimulateExecution}, names)
}

func TestExecuteReturnsJSONContent(t *testing.T) {
	exec := NewExecutor(newFacade())
	res, err := exec.Execute(context.Background(), ToolCall{
		Name:      ToolSimulateExecution,
		Arguments: map[string]any{"alert_type": "cost_anomaly"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.CallID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content), &decoded))
	assert.Equal(t, "SUCCESS", decoded["status"])
	assert.Equal(t, "2/2", decoded["commands_run"])
	assert.Equal(t, ExecutedBy, decoded["executed_by"])
}

func TestExecuteUnknownScenarioIsNotAnError(t *testing.T) {
	exec := NewExecutor(newFacade())
	res, err := exec.Execute(context.Background(), ToolCall{
		ID:        "call-1",
		Name:      ToolProcessAlert,
		Arguments: map[string]any{"alert_type": "meteor_strike"},
	})
	require.NoError(t, err)
	assert.Equal(t, "call-1", res.CallID)
	assert.Empty(t, res.Error)
	assert.True(t, isErrorPayload(res.Content))
	assert.Contains(t, res.Content, "available_types")
}

func TestExecuteRejectsBadCalls(t *testing.T) {
	exec := NewExecutor(newFacade())

	_, err := exec.Execute(context.Background(), ToolCall{Name: "delete_everything", Arguments: map[string]any{"alert_type": "cost_anomaly"}})
	assert.ErrorContains(t, err, "unknown tool")
	assert.ErrorIs(t, err, ErrInvalidCall)

	_, err = exec.Execute(context.Background(), ToolCall{Name: "delete_everything"})
	assert.ErrorContains(t, err, "unknown tool: delete_everything")
	assert.NotContains(t, err.Error(), "alert_type")

	_, err = exec.Execute(context.Background(), ToolCall{Name: ToolProcessAlert})
	assert.ErrorContains(t, err, "alert_type")

	_, err = exec.Execute(context.Background(), ToolCall{Name: ToolProcessAlert, Arguments: map[string]any{"alert_type": 7}})
	assert.ErrorContains(t, err, "must be a string")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = exec.Execute(ctx, ToolCall{Name: ToolProcessAlert, Arguments: map[string]any{"alert_type": "cost_anomaly"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordingExecutorLogsAndTracksLatency(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	rec := NewRecordingExecutor(NewExecutor(newFacade()), logger, nil)

	_, err := rec.Execute(context.Background(), ToolCall{Name: ToolAnalyzeRootCause, Arguments: map[string]any{"alert_type": "cost_anomaly"}})
	require.NoError(t, err)
	_, err = rec.Execute(context.Background(), ToolCall{Name: ToolAnalyzeRootCause, Arguments: map[string]any{"alert_type": "nope"}})
	require.NoError(t, err)
	_, err = rec.Execute(context.Background(), ToolCall{Name: "bogus", Arguments: map[string]any{"alert_type": "nope"}})
	require.Error(t, err)

	assert.Equal(t, 3, rec.Latency().Count())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"outcome":"success"`)
	assert.Contains(t, lines[1], `"outcome":"error"`)
	assert.Contains(t, lines[2], "tool call failed")
	assert.Len(t, rec.ListTools(), 4)
}
