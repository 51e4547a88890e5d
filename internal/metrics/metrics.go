package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels tool calls and transitions that succeeded.
	OutcomeSuccess = "success"
	// OutcomeError labels tool calls that failed or returned an error payload.
	OutcomeError = "error"
	// OutcomeRejected labels pipeline triggers refused by the current state.
	OutcomeRejected = "rejected"
)

var (
	toolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aura",
			Name:      "tool_invocations_total",
			Help:      "Total number of agent tool invocations, partitioned by tool and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	toolDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aura",
			Name:      "tool_seconds",
			Help:      "Agent tool latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"tool"},
	)

	stageTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aura",
			Name:      "stage_transitions_total",
			Help:      "Pipeline triggers handled, partitioned by trigger and outcome.",
		},
		[]string{"trigger", "outcome"},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "aura",
			Name:      "sessions_active",
			Help:      "Workflow sessions currently open.",
		},
	)
)

// Register attaches aura collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		toolInvocationsTotal,
		toolDurationSeconds,
		stageTransitionsTotal,
		sessionsActive,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveTool records a tool call duration and outcome label.
func ObserveTool(tool string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	toolInvocationsTotal.WithLabelValues(tool, label).Inc()
	if duration < 0 {
		duration = 0
	}
	toolDurationSeconds.WithLabelValues(tool).Observe(duration.Seconds())
}

// ObserveTransition counts a pipeline trigger.
func ObserveTransition(trigger, outcome string) {
	stageTransitionsTotal.WithLabelValues(trigger, outcome).Inc()
}

// SessionOpened increments the active session gauge.
func SessionOpened() { sessionsActive.Inc() }

// SessionClosed decrements the active session gauge.
func SessionClosed() { sessionsActive.Dec() }
