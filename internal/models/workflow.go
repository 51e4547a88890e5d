package models

import "time"

// Stage is one step of the fixed four-step remediation workflow.
type Stage string

const (
	StageDetected Stage = "detected"
	StageAnalyzed Stage = "analyzed"
	StagePlanned  Stage = "planned"
	StageExecuted Stage = "executed"
)

// StageOrder is the only permitted completion order.
var StageOrder = []Stage{StageDetected, StageAnalyzed, StagePlanned, StageExecuted}

// Index returns the position of s in StageOrder, or -1 when unknown.
func (s Stage) Index() int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// PipelineState is a node of the stage pipeline state machine.
type PipelineState string

const (
	StateIdle     PipelineState = "idle"
	StateSelected PipelineState = "selected"
	StateDetect   PipelineState = "detect"
	StateAnalyze  PipelineState = "analyze"
	StatePlan     PipelineState = "plan"
	StateDone     PipelineState = "done"
	StateRejected PipelineState = "rejected"
)

// Terminal reports whether no further transitions are possible.
func (s PipelineState) Terminal() bool {
	return s == StateDone || s == StateRejected
}

// Trigger is a caller action that asks the pipeline to move forward.
type Trigger string

const (
	TriggerDetect        Trigger = "detect"
	TriggerStartAnalysis Trigger = "start_analysis"
	TriggerProposePlan   Trigger = "propose_plan"
	TriggerApprove       Trigger = "approve"
	TriggerReject        Trigger = "reject"
	TriggerDefer         Trigger = "defer"
)

// Triggers lists every trigger the pipeline understands.
var Triggers = []Trigger{
	TriggerDetect, TriggerStartAnalysis, TriggerProposePlan,
	TriggerApprove, TriggerReject, TriggerDefer,
}

// ParseTrigger maps a raw string onto a known Trigger.
func ParseTrigger(raw string) (Trigger, bool) {
	for _, t := range Triggers {
		if string(t) == raw {
			return t, true
		}
	}
	return "", false
}

// TimelineEntry marks when a workflow milestone happened.
type TimelineEntry struct {
	Event  string        `json:"event"`
	At     time.Time     `json:"at"`
	Offset time.Duration `json:"offset"`
}

// View is what the pipeline exposes to a dashboard or agent after each step.
// Records are populated only once their stage has been reached.
type View struct {
	State     PipelineState    `json:"state"`
	Scenario  ScenarioID       `json:"scenario,omitempty"`
	Title     string           `json:"title,omitempty"`
	Completed []Stage          `json:"completed"`
	Next      Stage            `json:"next,omitempty"`
	Alert     *AlertRecord     `json:"alert,omitempty"`
	Analysis  *AnalysisRecord  `json:"analysis,omitempty"`
	Plan      *RemediationPlan `json:"plan,omitempty"`
	Execution *ExecutionResult `json:"execution,omitempty"`
	Impact    *ImpactSummary   `json:"impact,omitempty"`
	Pending   bool             `json:"pending"`
	Deferrals int              `json:"deferrals"`
	Notice    string           `json:"notice,omitempty"`
	Timeline  []TimelineEntry  `json:"timeline,omitempty"`
}
