// Package workflow tracks which scenario a session is working on and which of
// the four ordered stages have completed.
package workflow

import (
	"fmt"

	"github.com/miradorstack/aura/internal/models"
)

// OutOfOrderStageError reports an attempt to complete a stage before its
// predecessor, or a pipeline trigger the current state does not accept.
type OutOfOrderStageError struct {
	Stage   models.Stage
	Missing models.Stage
	State   models.PipelineState
	Trigger models.Trigger
	Reason  string
}

func (e *OutOfOrderStageError) Error() string {
	if e.Trigger != "" {
		msg := fmt.Sprintf("trigger %s not allowed in state %s", e.Trigger, e.State)
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		return msg
	}
	if e.Reason != "" {
		return fmt.Sprintf("stage %s out of order: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("stage %s out of order: %s not complete", e.Stage, e.Missing)
}

// Resolver maps a raw identifier onto a canonical scenario. *catalog.Catalog satisfies it.
type Resolver interface {
	Resolve(raw string) (models.ScenarioID, error)
}

// Tracker is the mutable WorkflowState of one session. The zero value is an
// empty tracker with nothing selected. It is not safe for concurrent use.
type Tracker struct {
	selected  models.ScenarioID
	completed int
}

// Select records the scenario to work on and clears every completed stage.
func (t *Tracker) Select(r Resolver, raw string) (models.ScenarioID, error) {
	id, err := r.Resolve(raw)
	if err != nil {
		return "", err
	}
	t.selected = id
	t.completed = 0
	return id, nil
}

// MarkComplete adds stage to the completed prefix. Completing an already
// completed stage is a no-op.
func (t *Tracker) MarkComplete(stage models.Stage) error {
	idx := stage.Index()
	if idx < 0 {
		return &OutOfOrderStageError{Stage: stage, Reason: "unknown stage"}
	}
	if t.selected == "" {
		return &OutOfOrderStageError{Stage: stage, Reason: "no scenario selected"}
	}
	if idx < t.completed {
		return nil
	}
	if idx > t.completed {
		return &OutOfOrderStageError{Stage: stage, Missing: models.StageOrder[t.completed]}
	}
	t.completed++
	return nil
}

// Reset clears the selection and every completed stage.
func (t *Tracker) Reset() {
	t.selected = ""
	t.completed = 0
}

// CurrentStage returns the next stage not yet completed. It reports false when
// nothing is selected or every stage is complete.
func (t *Tracker) CurrentStage() (models.Stage, bool) {
	if t.selected == "" || t.completed >= len(models.StageOrder) {
		return "", false
	}
	return models.StageOrder[t.completed], true
}

// Selected returns the selected scenario, or "" when none is.
func (t *Tracker) Selected() models.ScenarioID {
	return t.selected
}

// Completed returns the completed stages in order.
func (t *Tracker) Completed() []models.Stage {
	return append([]models.Stage(nil), models.StageOrder[:t.completed]...)
}

// IsComplete reports whether stage is in the completed prefix.
func (t *Tracker) IsComplete(stage models.Stage) bool {
	idx := stage.Index()
	return idx >= 0 && idx < t.completed
}

// Restore rebuilds a tracker from persisted fields, enforcing the prefix invariant.
func Restore(selected models.ScenarioID, completed []models.Stage) (Tracker, error) {
	t := Tracker{selected: selected}
	for _, stage := range completed {
		if err := t.MarkComplete(stage); err != nil {
			return Tracker{}, err
		}
	}
	return t, nil
}
