// Package tools exposes the scenario catalog to an agent runtime as four
// stateless lookup tools. Every result is stamped with the time it was produced.
package tools

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/utils"
)

// ExecutedBy names the actor reported on simulated executions.
const ExecutedBy = "Aura Autonomous Agent"

// DefaultProject fills the {project} placeholder when none is configured.
const DefaultProject = "my-project"

const projectPlaceholder = "{project}"

// ErrorPayload is returned in place of a record when the scenario is unknown.
type ErrorPayload struct {
	Error          string   `json:"error"`
	AvailableTypes []string `json:"available_types"`
}

// AlertDetails is the alert as the agent sees it, with the resource path expanded.
type AlertDetails struct {
	AlertID     string          `json:"alert_id"`
	Type        string          `json:"type"`
	Severity    models.Severity `json:"severity"`
	Resource    string          `json:"resource"`
	Duration    string          `json:"duration"`
	Description string          `json:"description"`
	Metrics     []models.Metric `json:"metrics"`
	Timestamp   string          `json:"timestamp"`
}

// AlertResult is returned by ProcessAlert.
type AlertResult struct {
	AlertProcessed    bool         `json:"alert_processed"`
	AlertDetails      AlertDetails `json:"alert_details"`
	AnalysisTimestamp string       `json:"analysis_timestamp"`
	NextAction        string       `json:"next_action"`
}

// AnalysisResult is returned by AnalyzeRootCause.
type AnalysisResult struct {
	RootCause           string                `json:"root_cause"`
	ContributingFactors []string              `json:"contributing_factors"`
	ConfidenceScore     int                   `json:"confidence_score"`
	RiskLevel           int                   `json:"risk_level"`
	Urgency             models.Urgency        `json:"urgency"`
	RiskAssessment      models.RiskAssessment `json:"risk_assessment"`
	AnalysisTimestamp   string                `json:"analysis_timestamp"`
}

// PlanResult is returned by GenerateRemediationPlan.
type PlanResult struct {
	RecommendedAction string         `json:"recommended_action"`
	Action            string         `json:"action"`
	Urgency           models.Urgency `json:"urgency"`
	EstimatedTime     string         `json:"estimated_time"`
	Commands          []string       `json:"commands"`
	CommandsFormatted string         `json:"commands_formatted"`
	ExpectedOutcome   string         `json:"expected_outcome"`
	SuccessRate       int            `json:"success_rate"`
	SafetyMeasures    []string       `json:"safety_measures"`
	RollbackStrategy  string         `json:"rollback_strategy"`
	RiskLevel         int            `json:"risk_level"`
	ApprovalRequired  bool           `json:"approval_required"`
	PlanGenerated     string         `json:"plan_generated"`
}

// ExecutionReport is returned by SimulateExecution. Nothing is executed.
type ExecutionReport struct {
	Status             models.ExecutionStatus `json:"status"`
	ExecutionTime      string                 `json:"execution_time"`
	CommandsExecuted   int                    `json:"commands_executed"`
	CommandsRun        string                 `json:"commands_run"`
	Outcome            string                 `json:"outcome"`
	VerifiedImpact     string                 `json:"verified_impact"`
	NextMonitoring     string                 `json:"next_monitoring"`
	ExecutionTimestamp string                 `json:"execution_timestamp"`
	ExecutedBy         string                 `json:"executed_by"`
}

// Result carries one tool response. Payload holds the tool's result type or an *ErrorPayload.
type Result struct {
	Tool    string
	Payload any
}

// Failed reports whether the call resolved to an error payload.
func (r Result) Failed() bool {
	_, ok := r.Payload.(*ErrorPayload)
	return ok
}

// Facade answers the four agent tools from a scenario catalog.
type Facade struct {
	source  catalog.Source
	project string
	now     func() time.Time
}

// FacadeOption customises a Facade.
type FacadeOption func(*Facade)

// WithProject sets the project substituted into resource paths and commands.
func WithProject(project string) FacadeOption {
	return func(f *Facade) {
		if project != "" {
			f.project = project
		}
	}
}

// WithNow overrides the clock used for timestamps.
func WithNow(now func() time.Time) FacadeOption {
	return func(f *Facade) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFacade constructs a Facade over source.
func NewFacade(source catalog.Source, opts ...FacadeOption) *Facade {
	if source == nil {
		source = catalog.Default()
	}
	f := &Facade{source: source, project: DefaultProject, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ProcessAlert returns the alert record for the scenario.
func (f *Facade) ProcessAlert(alertType string) Result {
	s, failed := f.lookup(ToolProcessAlert, alertType, "Unknown alert type: %s")
	if failed != nil {
		return *failed
	}
	stamp := f.stamp()
	return Result{Tool: ToolProcessAlert, Payload: &AlertResult{
		AlertProcessed: true,
		AlertDetails: AlertDetails{
			AlertID:     s.Alert.AlertID,
			Type:        s.Alert.Type,
			Severity:    s.Alert.Severity,
			Resource:    f.expand(resourcePath(s.Alert)),
			Duration:    s.Alert.Duration,
			Description: s.Alert.Description,
			Metrics:     s.Alert.Metrics,
			Timestamp:   stamp,
		},
		AnalysisTimestamp: stamp,
		NextAction:        ToolAnalyzeRootCause,
	}}
}

// AnalyzeRootCause returns the canned analysis for the scenario.
func (f *Facade) AnalyzeRootCause(alertType string) Result {
	s, failed := f.lookup(ToolAnalyzeRootCause, alertType, "No analysis available for %s")
	if failed != nil {
		return *failed
	}
	return Result{Tool: ToolAnalyzeRootCause, Payload: &AnalysisResult{
		RootCause:           s.Analysis.RootCause,
		ContributingFactors: s.Analysis.ContributingFactors,
		ConfidenceScore:     s.Analysis.Confidence,
		RiskLevel:           s.Analysis.RiskLevel,
		Urgency:             s.Analysis.Urgency,
		RiskAssessment:      s.Analysis.RiskAssessment,
		AnalysisTimestamp:   f.stamp(),
	}}
}

// GenerateRemediationPlan returns the plan with its command script split into lines.
func (f *Facade) GenerateRemediationPlan(alertType string) Result {
	s, failed := f.lookup(ToolGenerateRemediationPlan, alertType, "No remediation plan available for %s")
	if failed != nil {
		return *failed
	}
	script := f.expand(s.Plan.CommandScript)
	return Result{Tool: ToolGenerateRemediationPlan, Payload: &PlanResult{
		RecommendedAction: s.Plan.RecommendedAction,
		Action:            s.Plan.Action,
		Urgency:           s.Analysis.Urgency,
		EstimatedTime:     s.Plan.EstimatedTime,
		Commands:          strings.Split(script, "\n"),
		CommandsFormatted: script,
		ExpectedOutcome:   s.Plan.ExpectedOutcome,
		SuccessRate:       s.Plan.SuccessRate,
		SafetyMeasures:    s.Plan.SafetyMeasures,
		RollbackStrategy:  f.expand(s.Plan.RollbackCommand),
		RiskLevel:         s.Analysis.RiskLevel,
		ApprovalRequired:  s.Plan.ApprovalRequired,
		PlanGenerated:     f.stamp(),
	}}
}

// SimulateExecution returns the fixed execution outcome for the scenario.
func (f *Facade) SimulateExecution(alertType string) Result {
	s, failed := f.lookup(ToolSimulateExecution, alertType, "Cannot execute remediation for %s")
	if failed != nil {
		return *failed
	}
	return Result{Tool: ToolSimulateExecution, Payload: &ExecutionReport{
		Status:             s.Execution.Status,
		ExecutionTime:      s.Execution.ExecutionTime,
		CommandsExecuted:   s.Execution.CommandsExecuted,
		CommandsRun:        s.Execution.CommandsRun(),
		Outcome:            s.Execution.Outcome,
		VerifiedImpact:     s.Execution.VerifiedImpact,
		NextMonitoring:     s.Execution.FollowUpMonitoring,
		ExecutionTimestamp: f.stamp(),
		ExecutedBy:         ExecutedBy,
	}}
}

func (f *Facade) lookup(tool, alertType, errFormat string) (models.Scenario, *Result) {
	s, err := f.source.Current().Lookup(alertType)
	if err == nil {
		return s, nil
	}
	payload := &ErrorPayload{Error: fmt.Sprintf(errFormat, alertType)}
	var unknown *catalog.UnknownScenarioError
	if errors.As(err, &unknown) {
		payload.AvailableTypes = unknown.AvailableTypes()
	} else {
		payload.AvailableTypes = f.availableTypes()
	}
	return models.Scenario{}, &Result{Tool: tool, Payload: payload}
}

func (f *Facade) availableTypes() []string {
	ids := f.source.Current().IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func (f *Facade) stamp() string {
	return utils.ISOTimestamp(f.now())
}

func (f *Facade) expand(text string) string {
	return strings.ReplaceAll(text, projectPlaceholder, f.project)
}

func resourcePath(alert models.AlertRecord) string {
	if alert.ResourcePath != "" {
		return alert.ResourcePath
	}
	return alert.Resource
}
