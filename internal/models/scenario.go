package models

import "fmt"

// ScenarioID identifies one fictitious cloud incident in the catalog.
type ScenarioID string

// Severity captures alert impact levels.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Urgency captures how quickly a remediation should happen.
type Urgency string

const (
	UrgencyLow      Urgency = "Low"
	UrgencyMedium   Urgency = "Medium"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

// Valid reports whether u is one of the known urgencies.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Metric is a single named reading attached to an alert.
type Metric struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// AlertRecord describes the alert raised for a scenario.
type AlertRecord struct {
	AlertID      string   `json:"alert_id" yaml:"alert_id"`
	Type         string   `json:"type" yaml:"type"`
	Severity     Severity `json:"severity" yaml:"severity"`
	Resource     string   `json:"resource" yaml:"resource"`
	ResourcePath string   `json:"resource_path,omitempty" yaml:"resource_path"`
	Duration     string   `json:"duration" yaml:"duration"`
	Description  string   `json:"description" yaml:"description"`
	Metrics      []Metric `json:"metrics,omitempty" yaml:"metrics"`
}

// RiskAssessment splits the analysed risk by dimension.
type RiskAssessment struct {
	Financial   string `json:"financial_risk" yaml:"financial"`
	Operational string `json:"operational_risk" yaml:"operational"`
	Security    string `json:"security_risk" yaml:"security"`
}

// AnalysisRecord is the canned root-cause analysis for a scenario.
type AnalysisRecord struct {
	Confidence          int            `json:"confidence_score" yaml:"confidence"`
	RiskLevel           int            `json:"risk_level" yaml:"risk_level"`
	Urgency             Urgency        `json:"urgency" yaml:"urgency"`
	RootCause           string         `json:"root_cause" yaml:"root_cause"`
	ContributingFactors []string       `json:"contributing_factors" yaml:"contributing_factors"`
	RiskAssessment      RiskAssessment `json:"risk_assessment" yaml:"risk_assessment"`
}

// RemediationPlan is the canned fix proposed for a scenario. CommandScript is
// display text only and is never parsed or executed.
type RemediationPlan struct {
	RecommendedAction string   `json:"recommended_action" yaml:"recommended_action"`
	Action            string   `json:"action" yaml:"action"`
	EstimatedTime     string   `json:"estimated_time" yaml:"estimated_time"`
	ExpectedOutcome   string   `json:"expected_outcome" yaml:"expected_outcome"`
	SuccessRate       int      `json:"success_rate" yaml:"success_rate"`
	CommandScript     string   `json:"command_script" yaml:"command_script"`
	SafetyMeasures    []string `json:"safety_measures" yaml:"safety_measures"`
	RollbackCommand   string   `json:"rollback_command" yaml:"rollback_command"`
	ApprovalRequired  bool     `json:"approval_required" yaml:"approval_required"`
}

// ImpactSummary is shown once a remediation has been executed.
type ImpactSummary struct {
	Title   string   `json:"title" yaml:"title"`
	Details []string `json:"details" yaml:"details"`
}

// ExecutionStatus labels a simulated execution outcome.
type ExecutionStatus string

const ExecutionSuccess ExecutionStatus = "SUCCESS"

// ExecutionResult is the canned outcome of a simulated remediation run.
type ExecutionResult struct {
	Status             ExecutionStatus `json:"status" yaml:"status"`
	ExecutionTime      string          `json:"execution_time" yaml:"execution_time"`
	CommandsExecuted   int             `json:"commands_executed" yaml:"commands_executed"`
	CommandsTotal      int             `json:"commands_total" yaml:"commands_total"`
	Outcome            string          `json:"outcome" yaml:"outcome"`
	VerifiedImpact     string          `json:"verified_impact" yaml:"verified_impact"`
	FollowUpMonitoring string          `json:"next_monitoring" yaml:"follow_up_monitoring"`
}

// CommandsRun renders the executed/total counter, e.g. "2/2".
func (r ExecutionResult) CommandsRun() string {
	return fmt.Sprintf("%d/%d", r.CommandsExecuted, r.CommandsTotal)
}

// Scenario bundles every record the catalog holds for one ScenarioID.
type Scenario struct {
	ID        ScenarioID      `json:"id" yaml:"id"`
	Title     string          `json:"title" yaml:"title"`
	Aliases   []string        `json:"aliases,omitempty" yaml:"aliases"`
	Alert     AlertRecord     `json:"alert" yaml:"alert"`
	Analysis  AnalysisRecord  `json:"analysis" yaml:"analysis"`
	Plan      RemediationPlan `json:"plan" yaml:"plan"`
	Impact    ImpactSummary   `json:"impact" yaml:"impact"`
	Execution ExecutionResult `json:"execution" yaml:"execution"`
}
