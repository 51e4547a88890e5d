package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Tool names as registered with the agent runtime.
const (
	ToolProcessAlert            = "process_cloud_alert"
	ToolAnalyzeRootCause        = "analyze_root_cause"
	ToolGenerateRemediationPlan = "generate_remediation_plan"
	ToolSimulateExecution       = "simulate_remediation_execution"
)

// ErrInvalidCall marks tool calls naming an unknown tool or carrying bad arguments.
var ErrInvalidCall = errors.New("invalid tool call")

// ToolDefinition describes a tool and its JSON-schema parameters.
type ToolDefinition struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters"`
}

// ToolCall is one invocation requested by the agent runtime.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the JSON content handed back to the agent runtime.
// Error is set only when the call itself could not be served.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// ToolExecutor runs tool calls.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall) (ToolResult, error)
	ListTools() []ToolDefinition
}

// Executor dispatches tool calls to a Facade.
type Executor struct {
	facade *Facade
}

// NewExecutor wraps facade as a ToolExecutor.
func NewExecutor(facade *Facade) *Executor {
	if facade == nil {
		facade = NewFacade(nil)
	}
	return &Executor{facade: facade}
}

// Execute runs one tool call. Unknown scenarios are reported inside Content;
// an error is returned only for unknown tools or malformed arguments.
func (e *Executor) Execute(ctx context.Context, call ToolCall) (ToolResult, error) {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	if err := ctx.Err(); err != nil {
		return ToolResult{CallID: call.ID, Error: err.Error()}, err
	}

	var run func(string) Result
	switch call.Name {
	case ToolProcessAlert:
		run = e.facade.ProcessAlert
	case ToolAnalyzeRootCause:
		run = e.facade.AnalyzeRootCause
	case ToolGenerateRemediationPlan:
		run = e.facade.GenerateRemediationPlan
	case ToolSimulateExecution:
		run = e.facade.SimulateExecution
	default:
		err := fmt.Errorf("%w: unknown tool: %s", ErrInvalidCall, call.Name)
		return ToolResult{CallID: call.ID, Error: err.Error()}, err
	}

	alertType, err := alertTypeArg(call.Arguments)
	if err != nil {
		return ToolResult{CallID: call.ID, Error: err.Error()}, err
	}
	result := run(alertType)

	content, err := json.MarshalIndent(result.Payload, "", "  ")
	if err != nil {
		return ToolResult{CallID: call.ID, Error: err.Error()}, fmt.Errorf("encode %s result: %w", call.Name, err)
	}
	return ToolResult{CallID: call.ID, Content: string(content)}, nil
}

// ListTools returns the four tool definitions. The alert_type enum lists the
// catalog identifiers current at call time.
func (e *Executor) ListTools() []ToolDefinition {
	types := e.facade.availableTypes()
	param := func(verb string) map[string]any {
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				"alert_type": map[string]any{
					"type":        "string",
					"description": fmt.Sprintf("Type of alert to %s (%s)", verb, strings.Join(types, ", ")),
					"enum":        types,
				},
			},
			"required": []string{"alert_type"},
		}
	}

	return []ToolDefinition{
		{
			Name:        ToolProcessAlert,
			Description: "Processes incoming cloud monitoring alerts and returns structured analysis.",
			Parameters:  param("process"),
		},
		{
			Name:        ToolAnalyzeRootCause,
			Description: "Analyzes the root cause of a cloud alert and returns a confidence score and risk assessment.",
			Parameters:  param("analyze"),
		},
		{
			Name:        ToolGenerateRemediationPlan,
			Description: "Generates specific remediation commands and strategies for the identified issue.",
			Parameters:  param("generate remediation for"),
		},
		{
			Name:        ToolSimulateExecution,
			Description: "Simulates the execution of remediation commands and returns execution results.",
			Parameters:  param("simulate remediation for"),
		},
	}
}

func alertTypeArg(args map[string]any) (string, error) {
	raw, ok := args["alert_type"]
	if !ok {
		return "", fmt.Errorf("%w: missing required argument alert_type", ErrInvalidCall)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument alert_type must be a string, got %T", ErrInvalidCall, raw)
	}
	return value, nil
}

func isErrorPayload(content string) bool {
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &probe); err != nil {
		return false
	}
	return probe.Error != ""
}
