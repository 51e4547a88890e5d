// Package notifications escalates rejected remediation plans to human operators.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/miradorstack/aura/internal/models"
)

// Escalation is what gets reported when an operator rejects a plan.
type Escalation struct {
	SessionID string
	Scenario  models.Scenario
	Reason    string
	At        time.Time
}

// Escalator notifies humans about a rejected plan.
type Escalator interface {
	Escalate(ctx context.Context, e Escalation) error
}

// Noop drops every escalation.
type Noop struct{}

// Escalate implements Escalator.
func (Noop) Escalate(context.Context, Escalation) error { return nil }

// SlackNotifier posts escalations to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Channel    string
	client     *http.Client
}

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// NewSlackNotifier builds a notifier with a bounded request timeout.
func NewSlackNotifier(webhookURL, channel string, timeout time.Duration) *SlackNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Channel:    channel,
		client:     &http.Client{Timeout: timeout},
	}
}

// Escalate implements Escalator.
func (s *SlackNotifier) Escalate(ctx context.Context, e Escalation) error {
	reason := e.Reason
	if reason == "" {
		reason = "Plan rejected. Escalating to human operators."
	}

	color := "warning"
	if e.Scenario.Alert.Severity == models.SeverityCritical || e.Scenario.Alert.Severity == models.SeverityHigh {
		color = "danger"
	}

	msg := slackMessage{
		Channel:   s.Channel,
		Username:  "Aura",
		IconEmoji: ":rotating_light:",
		Text:      fmt.Sprintf("🚨 *Remediation plan rejected*\n%s", reason),
		Attachments: []slackAttachment{
			{
				Color: color,
				Title: e.Scenario.Title,
				Text:  e.Scenario.Analysis.RootCause,
				Fields: []slackField{
					{Title: "Alert", Value: e.Scenario.Alert.AlertID, Short: true},
					{Title: "Severity", Value: string(e.Scenario.Alert.Severity), Short: true},
					{Title: "Proposed action", Value: e.Scenario.Plan.Action, Short: true},
					{Title: "Success rate", Value: strconv.Itoa(e.Scenario.Plan.SuccessRate) + "%", Short: true},
					{Title: "Session", Value: e.SessionID, Short: true},
				},
				Footer: "Aura remediation agent",
			},
		},
	}

	return s.sendMessage(ctx, msg)
}

func (s *SlackNotifier) sendMessage(ctx context.Context, msg slackMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send slack message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned non-200 status: %d", resp.StatusCode)
	}

	return nil
}
