package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/miradorstack/aura/internal/metrics"
	"github.com/miradorstack/aura/internal/utils"
)

// MaxLoggedContentLength bounds the result preview written to debug logs.
const MaxLoggedContentLength = 512

// RecordingExecutor wraps a ToolExecutor and records latency, outcome and a
// log line for every call.
type RecordingExecutor struct {
	inner   ToolExecutor
	logger  *slog.Logger
	latency *utils.LatencyTracker
}

// NewRecordingExecutor wraps inner with call recording.
func NewRecordingExecutor(inner ToolExecutor, logger *slog.Logger, latency *utils.LatencyTracker) *RecordingExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	if latency == nil {
		latency = utils.NewLatencyTracker(512)
	}
	return &RecordingExecutor{inner: inner, logger: logger, latency: latency}
}

// Execute runs the underlying executor and records the call.
func (r *RecordingExecutor) Execute(ctx context.Context, call ToolCall) (ToolResult, error) {
	start := time.Now()
	result, err := r.inner.Execute(ctx, call)
	elapsed := time.Since(start)

	r.latency.Observe(elapsed)

	outcome := metrics.OutcomeSuccess
	if err != nil || result.Error != "" || isErrorPayload(result.Content) {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveTool(call.Name, elapsed, outcome)

	attrs := []any{
		slog.String("tool", call.Name),
		slog.String("call_id", result.CallID),
		slog.String("outcome", outcome),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		r.logger.Warn("tool call failed", append(attrs, slog.Any("error", err))...)
		return result, err
	}
	r.logger.Info("tool call completed", attrs...)
	r.logger.Debug("tool call result", slog.String("call_id", result.CallID), slog.String("content", truncate(result.Content, MaxLoggedContentLength)))
	return result, nil
}

// ListTools delegates to the inner executor.
func (r *RecordingExecutor) ListTools() []ToolDefinition {
	return r.inner.ListTools()
}

// Latency exposes the tracker fed by this executor.
func (r *RecordingExecutor) Latency() *utils.LatencyTracker {
	return r.latency
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
