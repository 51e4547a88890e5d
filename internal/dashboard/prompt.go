package dashboard

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/miradorstack/aura/internal/models"
)

// ErrAborted is returned when the operator leaves the demo.
var ErrAborted = errors.New("demo aborted")

// ScenarioOption is one entry of the scenario picker.
type ScenarioOption struct {
	ID    models.ScenarioID
	Label string
}

// Prompter supplies every operator decision the dashboard needs.
type Prompter interface {
	ChooseScenario(options []ScenarioOption) (models.ScenarioID, error)
	Confirm(question string) (bool, error)
	Decide(options []models.Trigger) (models.Trigger, error)
}

// TerminalPrompter asks questions with pterm's interactive printers.
type TerminalPrompter struct{}

// ChooseScenario shows an interactive select over the catalog.
func (TerminalPrompter) ChooseScenario(options []ScenarioOption) (models.ScenarioID, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no scenarios to choose from")
	}
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = opt.Label
	}
	picked, err := pterm.DefaultInteractiveSelect.
		WithOptions(labels).
		WithDefaultText("Choose alert scenario").
		Show()
	if err != nil {
		return "", err
	}
	for _, opt := range options {
		if opt.Label == picked {
			return opt.ID, nil
		}
	}
	return "", fmt.Errorf("unknown selection %q", picked)
}

// Confirm shows a yes/no question.
func (TerminalPrompter) Confirm(question string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(true).Show(question)
}

// Decide asks for approve, reject or defer.
func (TerminalPrompter) Decide(options []models.Trigger) (models.Trigger, error) {
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = decisionLabels[opt]
	}
	picked, err := pterm.DefaultInteractiveSelect.
		WithOptions(labels).
		WithDefaultText("Human approval").
		Show()
	if err != nil {
		return "", err
	}
	for _, opt := range options {
		if decisionLabels[opt] == picked {
			return opt, nil
		}
	}
	return "", fmt.Errorf("unknown decision %q", picked)
}

var decisionLabels = map[models.Trigger]string{
	models.TriggerApprove: "Approve & Execute",
	models.TriggerReject:  "Reject",
	models.TriggerDefer:   "Defer",
}
