package tools

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/models"
)

var fixedNow = func() time.Time { return time.Date(2025, 1, 15, 14, 23, 0, 0, time.UTC) }

func newFacade() *Facade {
	return NewFacade(catalog.Default(), WithProject("demo-project"), WithNow(fixedNow))
}

func TestProcessAlertExpandsProject(t *testing.T) {
	res := newFacade().ProcessAlert("cost_spike")
	require.False(t, res.Failed())

	alert, ok := res.Payload.(*AlertResult)
	require.True(t, ok)
	assert.True(t, alert.AlertProcessed)
	assert.Equal(t, ToolAnalyzeRootCause, alert.NextAction)
	assert.Equal(t, "projects/demo-project/zones/us-central1-a/instances/expensive-vm", alert.AlertDetails.Resource)
	assert.Equal(t, "cost-alert-001", alert.AlertDetails.AlertID)
	assert.Equal(t, "2025-01-15T14:23:00.000000Z", alert.AnalysisTimestamp)
}

func TestAnalyzeRootCause(t *testing.T) {
	res := newFacade().AnalyzeRootCause("security_vulnerability")
	analysis, ok := res.Payload.(*AnalysisResult)
	require.True(t, ok)
	assert.Equal(t, 98, analysis.ConfidenceScore)
	assert.Equal(t, models.UrgencyCritical, analysis.Urgency)
	assert.NotEmpty(t, analysis.RiskAssessment.Security)
}

func TestGenerateRemediationPlanFormatsCommands(t *testing.T) {
	res := newFacade().GenerateRemediationPlan("cost_anomaly")
	plan, ok := res.Payload.(*PlanResult)
	require.True(t, ok)

	assert.Equal(t, "shutdown_unused_instance", plan.RecommendedAction)
	assert.Equal(t, strings.Join(plan.Commands, "\n"), plan.CommandsFormatted)
	assert.Contains(t, plan.CommandsFormatted, "gcloud compute instances stop expensive-vm")
	assert.True(t, plan.ApprovalRequired)
	assert.NotEmpty(t, plan.RollbackStrategy)
}

func TestSimulateExecution(t *testing.T) {
	res := newFacade().SimulateExecution("performance_issue")
	report, ok := res.Payload.(*ExecutionReport)
	require.True(t, ok)
	assert.Equal(t, models.ExecutionSuccess, report.Status)
	assert.Equal(t, "3/3", report.CommandsRun)
	assert.Equal(t, ExecutedBy, report.ExecutedBy)
}

func TestUnknownScenarioReturnsStructuredError(t *testing.T) {
	f := newFacade()
	for _, res := range []Result{
		f.ProcessAlert("disk_full"),
		f.AnalyzeRootCause("disk_full"),
		f.GenerateRemediationPlan("disk_full"),
		f.SimulateExecution("disk_full"),
	} {
		require.True(t, res.Failed(), res.Tool)
		payload := res.Payload.(*ErrorPayload)
		assert.Contains(t, payload.Error, "disk_full")
		assert.Equal(t, []string{"cost_anomaly", "performance_degradation", "security_vulnerability"}, payload.AvailableTypes)
	}
}

func TestDefaultProjectPlaceholder(t *testing.T) {
	res := NewFacade(nil, WithProject("")).ProcessAlert("security_breach")
	alert := res.Payload.(*AlertResult)
	assert.Equal(t, "projects/"+DefaultProject+"/global/firewalls/allow-all-traffic", alert.AlertDetails.Resource)
}
