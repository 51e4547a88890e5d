package engine

import (
	"fmt"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/workflow"
)

// Snapshot is the persisted form of a Pipeline. Records are not stored; they
// are looked up again from the catalog on restore.
type Snapshot struct {
	State     models.PipelineState   `json:"state"`
	Scenario  models.ScenarioID      `json:"scenario,omitempty"`
	Completed []models.Stage         `json:"completed,omitempty"`
	Deferrals int                    `json:"deferrals,omitempty"`
	Notice    string                 `json:"notice,omitempty"`
	Timeline  []models.TimelineEntry `json:"timeline,omitempty"`
}

// Snapshot captures the pipeline state for persistence.
func (p *Pipeline) Snapshot() Snapshot {
	return Snapshot{
		State:     p.state,
		Scenario:  p.tracker.Selected(),
		Completed: p.tracker.Completed(),
		Deferrals: p.deferrals,
		Notice:    p.notice,
		Timeline:  append([]models.TimelineEntry(nil), p.timeline...),
	}
}

// Restore rebuilds a pipeline from a snapshot.
func Restore(source catalog.Source, snap Snapshot, opts ...Option) (*Pipeline, error) {
	p := NewPipeline(source, opts...)
	if snap.State == "" || snap.State == models.StateIdle {
		return p, nil
	}
	if snap.Scenario == "" {
		return nil, fmt.Errorf("restore pipeline: state %s without scenario", snap.State)
	}

	s, err := p.source.Current().Lookup(string(snap.Scenario))
	if err != nil {
		return nil, fmt.Errorf("restore pipeline: %w", err)
	}
	want, ok := completedFor[snap.State]
	if !ok {
		return nil, fmt.Errorf("restore pipeline: unknown state %q", snap.State)
	}
	if len(snap.Completed) != want {
		return nil, fmt.Errorf("restore pipeline: state %s needs %d completed stages, got %d", snap.State, want, len(snap.Completed))
	}
	tracker, err := workflow.Restore(s.ID, snap.Completed)
	if err != nil {
		return nil, fmt.Errorf("restore pipeline: %w", err)
	}

	p.tracker = tracker
	p.scenario = &s
	p.state = snap.State
	p.deferrals = snap.Deferrals
	p.notice = snap.Notice
	p.timeline = append([]models.TimelineEntry(nil), snap.Timeline...)
	return p, nil
}

// completedFor is the number of completed stages each non-idle state implies.
var completedFor = map[models.PipelineState]int{
	models.StateSelected: 0,
	models.StateDetect:   1,
	models.StateAnalyze:  2,
	models.StatePlan:     3,
	models.StateRejected: 3,
	models.StateDone:     4,
}
