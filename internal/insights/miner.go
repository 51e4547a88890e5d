package insights

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/miradorstack/aura/internal/audit"
	"github.com/miradorstack/aura/internal/models"
)

// DecisionPattern aggregates the operator decisions taken on one scenario.
type DecisionPattern struct {
	Scenario     models.ScenarioID `json:"scenario"`
	Sessions     int               `json:"sessions"`
	Approvals    int               `json:"approvals"`
	Rejections   int               `json:"rejections"`
	Deferrals    int               `json:"deferrals"`
	ApprovalRate float64           `json:"approval_rate"`
	TopActions   []string          `json:"top_actions,omitempty"`
	LastSeen     time.Time         `json:"last_seen"`
}

// Miner turns the audit trail into per-scenario decision patterns.
type Miner struct {
	logger *slog.Logger
}

// NewMiner constructs a Miner.
func NewMiner(logger *slog.Logger) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{logger: logger}
}

type decisionPayload struct {
	Scenario models.ScenarioID `json:"scenario"`
	Action   string            `json:"action"`
}

// Mine aggregates approve, reject and defer events by scenario. Patterns are
// ordered by the number of decisions, most frequent first.
func (m *Miner) Mine(ctx context.Context, events []audit.Event) ([]DecisionPattern, error) {
	if len(events) == 0 {
		return nil, nil
	}

	stats := make(map[models.ScenarioID]*scenarioAggregate)
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var payload decisionPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			m.logger.Debug("skipping unreadable audit payload", slog.String("session", ev.SessionID), slog.Any("error", err))
			continue
		}
		agg := ensureAggregate(stats, payload.Scenario)
		agg.sessions[ev.SessionID] = struct{}{}
		switch models.Trigger(ev.Type) {
		case models.TriggerApprove:
			agg.approvals++
			if payload.Action != "" {
				agg.actionCounts[payload.Action]++
			}
		case models.TriggerReject:
			agg.rejections++
		case models.TriggerDefer:
			agg.deferrals++
		default:
			continue
		}
		if ev.At.After(agg.lastSeen) {
			agg.lastSeen = ev.At
		}
	}

	patterns := make([]DecisionPattern, 0, len(stats))
	for scenario, agg := range stats {
		final := agg.approvals + agg.rejections
		if final+agg.deferrals == 0 {
			continue
		}
		pattern := DecisionPattern{
			Scenario:   scenario,
			Sessions:   len(agg.sessions),
			Approvals:  agg.approvals,
			Rejections: agg.rejections,
			Deferrals:  agg.deferrals,
			TopActions: agg.topActions(3),
			LastSeen:   agg.lastSeen,
		}
		if final > 0 {
			pattern.ApprovalRate = float64(agg.approvals) / float64(final)
		}
		patterns = append(patterns, pattern)
	}

	sort.Slice(patterns, func(i, j int) bool {
		ti := patterns[i].Approvals + patterns[i].Rejections + patterns[i].Deferrals
		tj := patterns[j].Approvals + patterns[j].Rejections + patterns[j].Deferrals
		if ti != tj {
			return ti > tj
		}
		return patterns[i].Scenario < patterns[j].Scenario
	})

	return patterns, nil
}

type scenarioAggregate struct {
	sessions     map[string]struct{}
	approvals    int
	rejections   int
	deferrals    int
	lastSeen     time.Time
	actionCounts map[string]int
}

func ensureAggregate(m map[models.ScenarioID]*scenarioAggregate, scenario models.ScenarioID) *scenarioAggregate {
	if scenario == "" {
		scenario = "unknown"
	}
	agg, ok := m[scenario]
	if !ok {
		agg = &scenarioAggregate{
			sessions:     make(map[string]struct{}),
			actionCounts: make(map[string]int),
		}
		m[scenario] = agg
	}
	return agg
}

func (agg *scenarioAggregate) topActions(limit int) []string {
	actions := make([]string, 0, len(agg.actionCounts))
	for action := range agg.actionCounts {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool {
		if agg.actionCounts[actions[i]] != agg.actionCounts[actions[j]] {
			return agg.actionCounts[actions[i]] > agg.actionCounts[actions[j]]
		}
		return actions[i] < actions[j]
	})
	if len(actions) > limit {
		actions = actions[:limit]
	}
	return actions
}
