package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miradorstack/aura/internal/models"
)

// Validate checks that a scenario carries every record with in-range values.
func Validate(s models.Scenario) error {
	var problems []error
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, fmt.Errorf("%s is required", field))
		}
	}

	require("id", string(s.ID))
	require("alert.resource", s.Alert.Resource)
	require("alert.duration", s.Alert.Duration)
	require("alert.description", s.Alert.Description)
	if !s.Alert.Severity.Valid() {
		problems = append(problems, fmt.Errorf("alert.severity %q is not one of LOW, MEDIUM, HIGH, CRITICAL", s.Alert.Severity))
	}

	require("analysis.root_cause", s.Analysis.RootCause)
	if s.Analysis.Confidence < 0 || s.Analysis.Confidence > 100 {
		problems = append(problems, fmt.Errorf("analysis.confidence %d outside 0-100", s.Analysis.Confidence))
	}
	if s.Analysis.RiskLevel < 0 || s.Analysis.RiskLevel > 10 {
		problems = append(problems, fmt.Errorf("analysis.risk_level %d outside 0-10", s.Analysis.RiskLevel))
	}
	if !s.Analysis.Urgency.Valid() {
		problems = append(problems, fmt.Errorf("analysis.urgency %q is not one of Low, Medium, High, Critical", s.Analysis.Urgency))
	}
	if len(s.Analysis.ContributingFactors) == 0 {
		problems = append(problems, errors.New("analysis.contributing_factors is empty"))
	}

	require("plan.action", s.Plan.Action)
	require("plan.estimated_time", s.Plan.EstimatedTime)
	require("plan.expected_outcome", s.Plan.ExpectedOutcome)
	require("plan.command_script", s.Plan.CommandScript)
	require("plan.rollback_command", s.Plan.RollbackCommand)
	if s.Plan.SuccessRate < 0 || s.Plan.SuccessRate > 100 {
		problems = append(problems, fmt.Errorf("plan.success_rate %d outside 0-100", s.Plan.SuccessRate))
	}
	if len(s.Plan.SafetyMeasures) == 0 {
		problems = append(problems, errors.New("plan.safety_measures is empty"))
	}

	require("impact.title", s.Impact.Title)
	if len(s.Impact.Details) == 0 {
		problems = append(problems, errors.New("impact.details is empty"))
	}

	require("execution.status", string(s.Execution.Status))
	require("execution.outcome", s.Execution.Outcome)
	if s.Execution.CommandsExecuted < 0 || s.Execution.CommandsExecuted > s.Execution.CommandsTotal {
		problems = append(problems, fmt.Errorf("execution commands %d/%d inconsistent", s.Execution.CommandsExecuted, s.Execution.CommandsTotal))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("scenario %q invalid: %w", s.ID, errors.Join(problems...))
}
