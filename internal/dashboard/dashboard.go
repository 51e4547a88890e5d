package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/models"
)

// Driver is the pipeline surface the dashboard walks through.
type Driver interface {
	SelectScenario(raw string) (models.View, error)
	Advance(trigger models.Trigger) (models.View, error)
	CurrentView() models.View
	Reset() models.View
}

// Progress steps shown while the analysis and the execution "run".
var (
	AnalysisSteps = []string{
		"Scanning alert patterns...",
		"Analyzing resource metrics...",
		"Determining root cause...",
		"Calculating confidence score...",
		"Analysis complete!",
	}
	ExecutionSteps = []string{
		"Authenticating with Google Cloud...",
		"Establishing connection...",
		"Executing commands...",
		"Verifying results...",
		"Updating monitoring...",
	}
)

// Dashboard renders the remediation demo in a terminal.
type Dashboard struct {
	out      io.Writer
	logger   *slog.Logger
	driver   Driver
	source   catalog.Source
	prompter Prompter

	analysisDelay  time.Duration
	executionDelay time.Duration
	animate        bool
}

// Option customises a Dashboard.
type Option func(*Dashboard)

// WithOutput redirects rendering, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(d *Dashboard) {
		if w != nil {
			d.out = w
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithFast disables progress animation and delays.
func WithFast(fast bool) Option {
	return func(d *Dashboard) {
		if fast {
			d.analysisDelay = 0
			d.executionDelay = 0
			d.animate = false
		}
	}
}

// New constructs a dashboard over driver. Scenario options come from source.
func New(driver Driver, source catalog.Source, prompter Prompter, opts ...Option) *Dashboard {
	if source == nil {
		source = catalog.Default()
	}
	if prompter == nil {
		prompter = TerminalPrompter{}
	}
	d := &Dashboard{
		out:            os.Stdout,
		logger:         slog.Default(),
		driver:         driver,
		source:         source,
		prompter:       prompter,
		analysisDelay:  800 * time.Millisecond,
		executionDelay: time.Second,
		animate:        true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run plays demos until the operator declines another run or ctx ends.
func (d *Dashboard) Run(ctx context.Context) error {
	d.renderHeader()
	for {
		if err := d.RunOnce(ctx); err != nil {
			return err
		}
		again, err := d.prompter.Confirm("Run another demo?")
		if err != nil {
			return err
		}
		d.driver.Reset()
		if !again {
			return nil
		}
	}
}

// RunOnce walks one scenario from selection to a final decision.
func (d *Dashboard) RunOnce(ctx context.Context) error {
	id, err := d.prompter.ChooseScenario(d.options())
	if err != nil {
		return err
	}
	view, err := d.driver.SelectScenario(string(id))
	if err != nil {
		return err
	}
	d.logger.Debug("demo started", slog.String("scenario", string(view.Scenario)))

	if view, err = d.driver.Advance(models.TriggerDetect); err != nil {
		return err
	}
	d.renderAlert(view)

	start, err := d.prompter.Confirm("Start analysis?")
	if err != nil {
		return err
	}
	if !start {
		return ErrAborted
	}
	if err := d.progress(ctx, "AI analysis", AnalysisSteps, d.analysisDelay); err != nil {
		return err
	}
	if view, err = d.driver.Advance(models.TriggerStartAnalysis); err != nil {
		return err
	}
	d.renderAnalysis(view)

	if view, err = d.driver.Advance(models.TriggerProposePlan); err != nil {
		return err
	}
	d.renderPlan(view)

	return d.decide(ctx)
}

func (d *Dashboard) decide(ctx context.Context) error {
	decisions := []models.Trigger{models.TriggerApprove, models.TriggerReject, models.TriggerDefer}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		trigger, err := d.prompter.Decide(decisions)
		if err != nil {
			return err
		}

		if trigger == models.TriggerApprove {
			if err := d.progress(ctx, "Executing remediation", ExecutionSteps, d.executionDelay); err != nil {
				return err
			}
		}
		view, err := d.driver.Advance(trigger)
		if err != nil {
			return err
		}

		switch view.State {
		case models.StateDone:
			d.renderExecution(view)
			return nil
		case models.StateRejected:
			d.renderNotice(view)
			return nil
		default:
			d.renderNotice(view)
		}
	}
}

func (d *Dashboard) options() []ScenarioOption {
	all := d.source.Current().All()
	out := make([]ScenarioOption, len(all))
	for i, s := range all {
		out[i] = ScenarioOption{ID: s.ID, Label: fmt.Sprintf("%s (%s)", s.Title, s.ID)}
	}
	return out
}

func (d *Dashboard) progress(ctx context.Context, title string, steps []string, delay time.Duration) error {
	if !d.animate {
		for _, step := range steps {
			d.println(step)
		}
		return nil
	}
	bar, err := newProgressbar(d.out, title, len(steps))
	if err != nil {
		return err
	}
	for _, step := range steps {
		bar.UpdateTitle(step)
		bar.Increment()
		if err := sleep(ctx, delay); err != nil {
			_, _ = bar.Stop()
			return err
		}
	}
	_, err = bar.Stop()
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
