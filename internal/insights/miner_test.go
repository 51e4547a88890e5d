package insights

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/miradorstack/aura/internal/audit"
	"github.com/miradorstack/aura/internal/models"
)

func event(t *testing.T, at time.Time, session string, trigger models.Trigger, scenario, action string) audit.Event {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"scenario": scenario, "action": action})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return audit.Event{At: at, Actor: "operator", Type: string(trigger), SessionID: session, Payload: payload}
}

func TestMinerMinesDecisionPatterns(t *testing.T) {
	miner := NewMiner(nil)

	now := time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)
	events := []audit.Event{
		event(t, now, "s1", models.TriggerDefer, "cost_anomaly", "shutdown_unused_instance"),
		event(t, now.Add(time.Minute), "s1", models.TriggerApprove, "cost_anomaly", "shutdown_unused_instance"),
		event(t, now.Add(2*time.Minute), "s2", models.TriggerReject, "cost_anomaly", "shutdown_unused_instance"),
		event(t, now.Add(3*time.Minute), "s3", models.TriggerApprove, "security_vulnerability", "close_open_firewall"),
	}

	patterns, err := miner.Mine(context.Background(), events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected two patterns, got %d", len(patterns))
	}

	cost := patterns[0]
	if cost.Scenario != "cost_anomaly" {
		t.Fatalf("expected cost_anomaly first, got %s", cost.Scenario)
	}
	if cost.Sessions != 2 || cost.Approvals != 1 || cost.Rejections != 1 || cost.Deferrals != 1 {
		t.Fatalf("unexpected counts: %+v", cost)
	}
	if cost.ApprovalRate != 0.5 {
		t.Fatalf("expected approval rate 0.5, got %v", cost.ApprovalRate)
	}
	if len(cost.TopActions) != 1 || cost.TopActions[0] != "shutdown_unused_instance" {
		t.Fatalf("unexpected top actions: %v", cost.TopActions)
	}
	if !cost.LastSeen.Equal(now.Add(2 * time.Minute)) {
		t.Fatalf("unexpected last seen %s", cost.LastSeen)
	}
}

func TestMinerSkipsUnreadablePayloads(t *testing.T) {
	miner := NewMiner(nil)
	patterns, err := miner.Mine(context.Background(), []audit.Event{{Type: "approve", Payload: json.RawMessage("not json")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 0 {
		t.Fatalf("expected no patterns, got %+v", patterns)
	}
}

func TestMinerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events := []audit.Event{event(t, time.Now(), "s1", models.TriggerApprove, "cost_anomaly", "")}
	if _, err := NewMiner(nil).Mine(ctx, events); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMinerReadsAuditLog(t *testing.T) {
	log, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer log.Close()

	ctx := context.Background()
	for _, trig := range []models.Trigger{models.TriggerDefer, models.TriggerApprove} {
		if err := log.Record(ctx, "operator", string(trig), "s1", map[string]any{"scenario": "performance_degradation"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	events, err := log.Events(ctx, "")
	if err != nil {
		t.Fatalf("events: %v", err)
	}

	patterns, err := NewMiner(nil).Mine(ctx, events)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(patterns) != 1 || patterns[0].Approvals != 1 || patterns[0].Deferrals != 1 || patterns[0].ApprovalRate != 1 {
		t.Fatalf("unexpected patterns: %+v", patterns)
	}
}
