package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/workflow"
)

// DeferNotice is shown while a plan waits after a defer decision.
const DeferNotice = "Execution deferred. Will retry in 1 hour."

// RejectNotice is shown once a plan has been rejected.
const RejectNotice = "Plan rejected. Escalating to human operators."

// Pipeline drives one session through detect, analyze, plan and execute.
// Every transition is requested by the caller; nothing advances on its own.
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	logger  *slog.Logger
	source  catalog.Source
	now     func() time.Time
	tracker workflow.Tracker

	state     models.PipelineState
	scenario  *models.Scenario
	deferrals int
	notice    string
	timeline  []models.TimelineEntry
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the clock used to stamp timeline entries.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline constructs an idle pipeline reading scenarios from source.
func NewPipeline(source catalog.Source, opts ...Option) *Pipeline {
	if source == nil {
		source = catalog.Default()
	}
	p := &Pipeline{
		logger: slog.Default(),
		source: source,
		now:    time.Now,
		state:  models.StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SelectScenario resets the pipeline and starts over with the given scenario.
// An unknown identifier leaves the pipeline untouched.
func (p *Pipeline) SelectScenario(raw string) (models.View, error) {
	cat := p.source.Current()
	s, err := cat.Lookup(raw)
	if err != nil {
		return p.CurrentView(), err
	}

	var tracker workflow.Tracker
	if _, err := tracker.Select(cat, string(s.ID)); err != nil {
		return p.CurrentView(), err
	}

	p.tracker = tracker
	p.scenario = &s
	p.state = models.StateSelected
	p.deferrals = 0
	p.notice = ""
	p.timeline = nil
	p.logger.Debug("scenario selected", slog.String("scenario", string(s.ID)))
	return p.CurrentView(), nil
}

// Advance applies trigger to the current state. Triggers whose stage already
// completed are accepted without changing anything.
func (p *Pipeline) Advance(trigger models.Trigger) (models.View, error) {
	next, err := p.transition(trigger)
	if err != nil {
		return p.CurrentView(), err
	}
	if next == "" {
		return p.CurrentView(), nil
	}

	if stage, ok := stageFor[trigger]; ok {
		if err := p.tracker.MarkComplete(stage); err != nil {
			return p.CurrentView(), err
		}
	}

	switch trigger {
	case models.TriggerDefer:
		p.deferrals++
		p.notice = DeferNotice
	case models.TriggerReject:
		p.notice = RejectNotice
	default:
		p.notice = ""
	}

	p.record(trigger)
	p.logger.Debug("pipeline transition",
		slog.String("scenario", string(p.tracker.Selected())),
		slog.String("trigger", string(trigger)),
		slog.String("from", string(p.state)),
		slog.String("to", string(next)),
	)
	p.state = next
	return p.CurrentView(), nil
}

// transition returns the state trigger leads to, "" for an accepted no-op, or
// an OutOfOrderStageError when the current state does not accept it.
func (p *Pipeline) transition(trigger models.Trigger) (models.PipelineState, error) {
	if _, ok := models.ParseTrigger(string(trigger)); !ok {
		return "", &workflow.OutOfOrderStageError{State: p.state, Trigger: trigger, Reason: "unknown trigger"}
	}

	switch p.state {
	case models.StateIdle:
		return "", &workflow.OutOfOrderStageError{State: p.state, Trigger: trigger, Reason: "no scenario selected"}
	case models.StateRejected:
		return "", &workflow.OutOfOrderStageError{State: p.state, Trigger: trigger, Reason: "plan was rejected"}
	}

	if next, ok := transitions[p.state][trigger]; ok {
		return next, nil
	}
	if stage, ok := stageFor[trigger]; ok && p.tracker.IsComplete(stage) {
		return "", nil
	}

	reason := ""
	if stage, ok := stageFor[trigger]; ok {
		if current, ok := p.tracker.CurrentStage(); ok && current != stage {
			reason = fmt.Sprintf("%s not complete", current)
		}
	}
	return "", &workflow.OutOfOrderStageError{State: p.state, Trigger: trigger, Reason: reason}
}

var transitions = map[models.PipelineState]map[models.Trigger]models.PipelineState{
	models.StateSelected: {models.TriggerDetect: models.StateDetect},
	models.StateDetect:   {models.TriggerStartAnalysis: models.StateAnalyze},
	models.StateAnalyze:  {models.TriggerProposePlan: models.StatePlan},
	models.StatePlan: {
		models.TriggerApprove: models.StateDone,
		models.TriggerReject:  models.StateRejected,
		models.TriggerDefer:   models.StatePlan,
	},
}

var stageFor = map[models.Trigger]models.Stage{
	models.TriggerDetect:        models.StageDetected,
	models.TriggerStartAnalysis: models.StageAnalyzed,
	models.TriggerProposePlan:   models.StagePlanned,
	models.TriggerApprove:       models.StageExecuted,
}

var timelineEvents = map[models.Trigger]string{
	models.TriggerDetect:        "Alert detected",
	models.TriggerStartAnalysis: "Root cause analysis complete",
	models.TriggerProposePlan:   "Remediation plan generated",
	models.TriggerApprove:       "Remediation executed",
	models.TriggerReject:        "Plan rejected",
	models.TriggerDefer:         "Execution deferred",
}

func (p *Pipeline) record(trigger models.Trigger) {
	at := p.now().UTC()
	var offset time.Duration
	if len(p.timeline) > 0 {
		offset = at.Sub(p.timeline[0].At)
	}
	p.timeline = append(p.timeline, models.TimelineEntry{
		Event:  timelineEvents[trigger],
		At:     at,
		Offset: offset,
	})
}

// Reset discards the selection and returns to idle.
func (p *Pipeline) Reset() models.View {
	p.tracker.Reset()
	p.scenario = nil
	p.state = models.StateIdle
	p.deferrals = 0
	p.notice = ""
	p.timeline = nil
	return p.CurrentView()
}

// State returns the current pipeline state.
func (p *Pipeline) State() models.PipelineState {
	return p.state
}

// CurrentStage returns the next stage to complete, or false when idle or finished.
func (p *Pipeline) CurrentStage() (models.Stage, bool) {
	if p.state == models.StateRejected {
		return "", false
	}
	return p.tracker.CurrentStage()
}

// CurrentView exposes the records reached so far.
func (p *Pipeline) CurrentView() models.View {
	view := models.View{
		State:     p.state,
		Completed: p.tracker.Completed(),
		Pending:   p.state == models.StatePlan && p.deferrals > 0,
		Deferrals: p.deferrals,
		Notice:    p.notice,
		Timeline:  append([]models.TimelineEntry(nil), p.timeline...),
	}
	if stage, ok := p.CurrentStage(); ok {
		view.Next = stage
	}
	if p.scenario == nil {
		return view
	}

	s := p.scenario
	view.Scenario = s.ID
	view.Title = s.Title
	if p.tracker.IsComplete(models.StageDetected) {
		alert := s.Alert
		view.Alert = &alert
	}
	if p.tracker.IsComplete(models.StageAnalyzed) {
		analysis := s.Analysis
		view.Analysis = &analysis
	}
	if p.tracker.IsComplete(models.StagePlanned) {
		plan := s.Plan
		view.Plan = &plan
	}
	if p.tracker.IsComplete(models.StageExecuted) {
		execution := s.Execution
		impact := s.Impact
		view.Execution = &execution
		view.Impact = &impact
	}
	return view
}
