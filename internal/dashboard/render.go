package dashboard

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/utils"
)

// Showcase figures printed in the header. They are presentation values only.
var headerMetrics = [][]string{
	{"Alerts Processed", "Issues Resolved", "Cost Saved", "Avg Resolution"},
	{"1,247", "1,156", "$127,450", "2.3 min"},
	{"+23 today", "92.7% success", "+$2,340 this week", "-45% faster"},
}

func newProgressbar(w io.Writer, title string, total int) (*pterm.ProgressbarPrinter, error) {
	return pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithWriter(w).
		Start()
}

func (d *Dashboard) print(s string) {
	_, _ = io.WriteString(d.out, s)
}

func (d *Dashboard) println(s string) {
	d.print(s + "\n")
}

func (d *Dashboard) table(rows [][]string) {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		d.logger.Warn("table render failed", slog.Any("error", err))
		return
	}
	d.println(out)
}

func (d *Dashboard) bullets(items []string) {
	for _, item := range items {
		d.println("  • " + item)
	}
}

func (d *Dashboard) renderHeader() {
	d.print(pterm.DefaultHeader.WithFullWidth().Sprint("Aura - Autonomous Remediation Agent"))
	d.println("")
	d.println(pterm.FgGray.Sprint("Transforming reactive alerts into proactive autonomous solutions"))
	d.table(headerMetrics)
}

func (d *Dashboard) renderAlert(view models.View) {
	d.print(pterm.DefaultSection.Sprint("Step 1: Alert Detection"))
	if view.Alert == nil {
		return
	}
	a := view.Alert
	d.table([][]string{
		{"Severity", "Resource", "Duration", "Status"},
		{severityStyle(a.Severity), a.Resource, a.Duration, "Analyzing"},
	})
	d.print(pterm.Success.Sprintln("Alert Details: " + a.Description))
	if len(a.Metrics) > 0 {
		rows := [][]string{{"Metric", "Value"}}
		for _, m := range a.Metrics {
			rows = append(rows, []string{m.Name, m.Value})
		}
		d.table(rows)
	}
}

func (d *Dashboard) renderAnalysis(view models.View) {
	d.print(pterm.DefaultSection.Sprint("Step 2: AI Analysis"))
	if view.Analysis == nil {
		return
	}
	a := view.Analysis
	d.table([][]string{
		{"AI Confidence", "Risk Level", "Urgency"},
		{strconv.Itoa(a.Confidence) + "%", fmt.Sprintf("%d/10", a.RiskLevel), string(a.Urgency)},
	})
	d.print(pterm.Info.Sprintln("Root Cause: " + a.RootCause))
	d.println("Contributing Factors:")
	d.bullets(a.ContributingFactors)
}

func (d *Dashboard) renderPlan(view models.View) {
	d.print(pterm.DefaultSection.Sprint("Step 3: Proposed Remediation"))
	if view.Plan == nil {
		return
	}
	p := view.Plan
	d.println("Action: " + p.Action)
	d.println("Time: " + p.EstimatedTime)
	d.println("Outcome: " + p.ExpectedOutcome)
	d.println(fmt.Sprintf("Success Rate: %d%%", p.SuccessRate))
	d.print(pterm.DefaultBox.WithTitle("Execution Commands").Sprint(strings.TrimSpace(p.CommandScript)))
	d.println("")
	d.println("Safety Measures:")
	d.bullets(p.SafetyMeasures)
	d.println("Rollback Command: " + p.RollbackCommand)
	d.print(pterm.DefaultSection.Sprint("Step 4: Human Approval & Execution"))
}

func (d *Dashboard) renderNotice(view models.View) {
	switch view.State {
	case models.StateRejected:
		d.print(pterm.Error.Sprintln(view.Notice))
	default:
		d.print(pterm.Warning.Sprintln(view.Notice))
	}
}

func (d *Dashboard) renderExecution(view models.View) {
	if view.Execution == nil {
		return
	}
	e := view.Execution
	d.print(pterm.Success.Sprintln("REMEDIATION EXECUTED SUCCESSFULLY!"))
	d.table([][]string{
		{"Execution Time", "Commands Run", "Status", "Rollback"},
		{e.ExecutionTime, e.CommandsRun(), string(e.Status), "Available"},
	})
	d.println("Outcome: " + e.Outcome)
	d.println("Verified: " + e.VerifiedImpact)

	if view.Impact != nil {
		d.print(pterm.DefaultSection.WithLevel(2).Sprint(view.Impact.Title))
		d.bullets(view.Impact.Details)
	}

	d.print(pterm.DefaultSection.WithLevel(2).Sprint("Resolution Timeline"))
	for _, entry := range view.Timeline {
		d.println(utils.ClockOffset(entry.Offset) + " - " + entry.Event)
	}
	d.print(pterm.Success.Sprintln("Aura has successfully resolved the issue autonomously! Ready for the next alert."))
}

func severityStyle(s models.Severity) string {
	switch s {
	case models.SeverityCritical, models.SeverityHigh:
		return pterm.FgRed.Sprint(string(s))
	case models.SeverityMedium:
		return pterm.FgYellow.Sprint(string(s))
	default:
		return pterm.FgBlue.Sprint(string(s))
	}
}
