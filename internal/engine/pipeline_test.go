package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/workflow"
)

type stepClock struct {
	at   time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.at
	c.at = c.at.Add(c.step)
	return now
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	clock := &stepClock{at: time.Date(2025, 1, 15, 14, 23, 0, 0, time.UTC), step: 30 * time.Second}
	return NewPipeline(catalog.Default(), WithClock(clock.Now))
}

func advanceAll(t *testing.T, p *Pipeline, triggers ...models.Trigger) models.View {
	t.Helper()
	var view models.View
	for _, trig := range triggers {
		var err error
		view, err = p.Advance(trig)
		if err != nil {
			t.Fatalf("advance %s: %v", trig, err)
		}
	}
	return view
}

func TestPipelineApproveReachesDone(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.SelectScenario("cost_anomaly"); err != nil {
		t.Fatalf("select: %v", err)
	}

	view := advanceAll(t, p,
		models.TriggerDetect, models.TriggerStartAnalysis, models.TriggerProposePlan, models.TriggerApprove)

	if view.State != models.StateDone {
		t.Fatalf("expected done, got %s", view.State)
	}
	if _, ok := p.CurrentStage(); ok {
		t.Fatalf("expected no current stage after done")
	}
	if len(view.Completed) != 4 {
		t.Fatalf("expected four completed stages, got %v", view.Completed)
	}

	want, err := catalog.Default().Lookup("cost_anomaly")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if view.Impact == nil || view.Impact.Title != want.Impact.Title || len(view.Impact.Details) != len(want.Impact.Details) {
		t.Fatalf("impact mismatch: %+v", view.Impact)
	}
	if view.Execution == nil || view.Execution.Status != models.ExecutionSuccess {
		t.Fatalf("expected SUCCESS execution, got %+v", view.Execution)
	}
	if got := view.Execution.CommandsRun(); got != "2/2" {
		t.Fatalf("expected 2/2 commands, got %s", got)
	}
}

func TestPipelineViewRevealsRecordsAsReached(t *testing.T) {
	p := newTestPipeline(t)
	view, err := p.SelectScenario("security_vulnerability")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if view.State != models.StateSelected || view.Alert != nil || view.Next != models.StageDetected {
		t.Fatalf("unexpected selected view: %+v", view)
	}

	view = advanceAll(t, p, models.TriggerDetect)
	if view.Alert == nil || view.Analysis != nil {
		t.Fatalf("expected only alert after detect: %+v", view)
	}
	if view.Alert.Severity != models.SeverityCritical {
		t.Fatalf("unexpected severity %s", view.Alert.Severity)
	}

	view = advanceAll(t, p, models.TriggerStartAnalysis)
	if view.Analysis == nil || view.Plan != nil {
		t.Fatalf("expected analysis without plan: %+v", view)
	}

	view = advanceAll(t, p, models.TriggerProposePlan)
	if view.Plan == nil || view.Execution != nil || view.Next != models.StageExecuted {
		t.Fatalf("expected plan awaiting execution: %+v", view)
	}
}

func TestPipelineDeferStaysInPlan(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.SelectScenario("performance_degradation"); err != nil {
		t.Fatalf("select: %v", err)
	}
	advanceAll(t, p, models.TriggerDetect, models.TriggerStartAnalysis, models.TriggerProposePlan)

	view := advanceAll(t, p, models.TriggerDefer)
	if view.State != models.StatePlan || view.State.Terminal() {
		t.Fatalf("expected non-terminal plan after defer, got %s", view.State)
	}
	if !view.Pending || view.Deferrals != 1 || view.Notice != DeferNotice {
		t.Fatalf("expected pending marker, got %+v", view)
	}

	view = advanceAll(t, p, models.TriggerDefer, models.TriggerApprove)
	if view.State != models.StateDone {
		t.Fatalf("expected done after approve, got %s", view.State)
	}
	if view.Pending || view.Notice != "" || view.Deferrals != 2 {
		t.Fatalf("unexpected view after approve: %+v", view)
	}
}

func TestPipelineRejectIsTerminal(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.SelectScenario("cost_anomaly"); err != nil {
		t.Fatalf("select: %v", err)
	}
	view := advanceAll(t, p,
		models.TriggerDetect, models.TriggerStartAnalysis, models.TriggerProposePlan, models.TriggerReject)

	if view.State != models.StateRejected || !view.State.Terminal() {
		t.Fatalf("expected rejected, got %s", view.State)
	}
	if view.Notice != RejectNotice {
		t.Fatalf("unexpected notice %q", view.Notice)
	}

	for _, trig := range models.Triggers {
		view, err := p.Advance(trig)
		var ooo *workflow.OutOfOrderStageError
		if !errors.As(err, &ooo) {
			t.Fatalf("trigger %s after reject: expected OutOfOrderStageError, got %v", trig, err)
		}
		if view.State != models.StateRejected || view.Execution != nil {
			t.Fatalf("trigger %s re-entered execution: %+v", trig, view)
		}
	}
}

func TestPipelineOutOfOrderTriggers(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.Advance(models.TriggerDetect)
	var ooo *workflow.OutOfOrderStageError
	if !errors.As(err, &ooo) || ooo.State != models.StateIdle {
		t.Fatalf("expected out of order from idle, got %v", err)
	}

	if _, err := p.SelectScenario("cost_anomaly"); err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, trig := range []models.Trigger{models.TriggerStartAnalysis, models.TriggerApprove, models.TriggerDefer} {
		if _, err := p.Advance(trig); !errors.As(err, &ooo) {
			t.Fatalf("expected %s to be rejected from selected, got %v", trig, err)
		}
	}

	if _, err := p.Advance(models.Trigger("launch")); !errors.As(err, &ooo) {
		t.Fatalf("expected unknown trigger to be rejected, got %v", err)
	}
	if p.State() != models.StateSelected {
		t.Fatalf("failed triggers changed state to %s", p.State())
	}
}

func TestPipelineRepeatedTriggerIsNoop(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.SelectScenario("cost_anomaly"); err != nil {
		t.Fatalf("select: %v", err)
	}
	first := advanceAll(t, p, models.TriggerDetect, models.TriggerStartAnalysis)
	second := advanceAll(t, p, models.TriggerDetect, models.TriggerStartAnalysis)

	if second.State != models.StateAnalyze {
		t.Fatalf("expected analyze, got %s", second.State)
	}
	if len(second.Completed) != len(first.Completed) || len(second.Timeline) != len(first.Timeline) {
		t.Fatalf("repeated triggers changed the view: %+v vs %+v", first, second)
	}
}

func TestPipelineSelectMidFlowResets(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.SelectScenario("cost_anomaly"); err != nil {
		t.Fatalf("select: %v", err)
	}
	advanceAll(t, p, models.TriggerDetect, models.TriggerStartAnalysis)

	view, err := p.SelectScenario("performance_issue")
	if err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if view.Scenario != catalog.PerformanceDegradation || view.State != models.StateSelected {
		t.Fatalf("unexpected view after reselect: %+v", view)
	}
	if len(view.Completed) != 0 || len(view.Timeline) != 0 {
		t.Fatalf("reselect kept previous progress: %+v", view)
	}

	_, err = p.SelectScenario("unknown")
	var unknown *catalog.UnknownScenarioError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected unknown scenario, got %v", err)
	}
	if p.Snapshot().Scenario != catalog.PerformanceDegradation {
		t.Fatalf("failed select must keep the current scenario")
	}
}

func TestPipelineReset(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.SelectScenario("cost_anomaly"); err != nil {
		t.Fatalf("select: %v", err)
	}
	advanceAll(t, p, models.TriggerDetect)

	view := p.Reset()
	if view.State != models.StateIdle || view.Scenario != "" {
		t.Fatalf("unexpected view after reset: %+v", view)
	}
	if _, ok := p.CurrentStage(); ok {
		t.Fatalf("expected no current stage after reset")
	}
}

func TestPipelineTimelineOffsets(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.SelectScenario("cost_anomaly"); err != nil {
		t.Fatalf("select: %v", err)
	}
	view := advanceAll(t, p,
		models.TriggerDetect, models.TriggerStartAnalysis, models.TriggerProposePlan, models.TriggerApprove)

	if len(view.Timeline) != 4 {
		t.Fatalf("expected four timeline entries, got %d", len(view.Timeline))
	}
	for i, entry := range view.Timeline {
		if want := time.Duration(i) * 30 * time.Second; entry.Offset != want {
			t.Fatalf("entry %d (%s): expected offset %s, got %s", i, entry.Event, want, entry.Offset)
		}
	}
	if view.Timeline[0].Event != "Alert detected" || view.Timeline[3].Event != "Remediation executed" {
		t.Fatalf("unexpected timeline events: %+v", view.Timeline)
	}
}

func TestPipelineSnapshotRoundTrip(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.SelectScenario("cost_anomaly"); err != nil {
		t.Fatalf("select: %v", err)
	}
	advanceAll(t, p, models.TriggerDetect, models.TriggerStartAnalysis, models.TriggerProposePlan, models.TriggerDefer)

	data, err := json.Marshal(p.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored, err := Restore(catalog.Default(), snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	view := restored.CurrentView()
	if view.State != models.StatePlan || !view.Pending || view.Plan == nil {
		t.Fatalf("restored view lost progress: %+v", view)
	}

	view, err = restored.Advance(models.TriggerApprove)
	if err != nil || view.State != models.StateDone {
		t.Fatalf("expected approve after restore to finish, got %s (%v)", view.State, err)
	}
}

func TestRestoreRejectsBrokenSnapshot(t *testing.T) {
	if _, err := Restore(catalog.Default(), Snapshot{State: models.StatePlan}); err == nil {
		t.Fatalf("expected error for state without scenario")
	}
	snap := Snapshot{State: models.StateAnalyze, Scenario: catalog.CostAnomaly, Completed: []models.Stage{models.StageDetected, models.StagePlanned}}
	if _, err := Restore(catalog.Default(), snap); err == nil {
		t.Fatalf("expected error for non-prefix stages")
	}

	mismatched := []Snapshot{
		{State: models.StateDone, Scenario: catalog.CostAnomaly},
		{State: models.StatePlan, Scenario: catalog.CostAnomaly, Completed: []models.Stage{models.StageDetected}},
		{State: models.StateRejected, Scenario: catalog.CostAnomaly, Completed: models.StageOrder},
		{State: models.StateSelected, Scenario: catalog.CostAnomaly, Completed: []models.Stage{models.StageDetected}},
		{State: models.PipelineState("launching"), Scenario: catalog.CostAnomaly},
	}
	for _, snap := range mismatched {
		if _, err := Restore(catalog.Default(), snap); err == nil {
			t.Fatalf("expected error for state %s with %d completed stages", snap.State, len(snap.Completed))
		}
	}
}

func TestRestoreAcceptsEveryConsistentState(t *testing.T) {
	states := []models.PipelineState{
		models.StateSelected, models.StateDetect, models.StateAnalyze, models.StatePlan, models.StateDone,
	}
	for i, state := range states {
		snap := Snapshot{State: state, Scenario: catalog.CostAnomaly, Completed: models.StageOrder[:i]}
		p, err := Restore(catalog.Default(), snap)
		if err != nil {
			t.Fatalf("restore %s: %v", state, err)
		}
		if p.State() != state {
			t.Fatalf("expected %s, got %s", state, p.State())
		}
	}

	p, err := Restore(catalog.Default(), Snapshot{State: models.StateDone, Scenario: catalog.CostAnomaly, Completed: models.StageOrder})
	if err != nil {
		t.Fatalf("restore done: %v", err)
	}
	if view := p.CurrentView(); view.Execution == nil || view.Impact == nil {
		t.Fatalf("restored done session lost execution view: %+v", view)
	}
}
