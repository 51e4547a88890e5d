// Package events publishes pipeline transitions to NATS so other systems can
// follow a session without polling it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/miradorstack/aura/internal/models"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "aura.sessions"

// Transition describes one accepted pipeline trigger.
type Transition struct {
	SessionID string               `json:"session_id"`
	Scenario  models.ScenarioID    `json:"scenario,omitempty"`
	Trigger   string               `json:"trigger"`
	From      models.PipelineState `json:"from"`
	To        models.PipelineState `json:"to"`
	Deferrals int                  `json:"deferrals,omitempty"`
	At        time.Time            `json:"at"`
}

// Publisher emits transitions.
type Publisher interface {
	Publish(ctx context.Context, t Transition) error
	Close() error
}

// Noop drops every transition.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Transition) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }

type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher publishes transitions on <prefix>.<session>.transitions.
type NATSPublisher struct {
	conn   conn
	prefix string
}

// Connect dials the NATS server at url.
func Connect(url, prefix string, timeout time.Duration) (*NATSPublisher, error) {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	nc, err := nats.Connect(url,
		nats.Name("aura-engine"),
		nats.Timeout(timeout),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return newPublisher(nc, prefix), nil
}

func newPublisher(c conn, prefix string) *NATSPublisher {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: c, prefix: prefix}
}

// Subject returns the subject transitions of sessionID are published on.
func (p *NATSPublisher) Subject(sessionID string) string {
	return fmt.Sprintf("%s.%s.transitions", p.prefix, sessionID)
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, t Transition) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal transition: %w", err)
	}
	if err := p.conn.Publish(p.Subject(t.SessionID), data); err != nil {
		return fmt.Errorf("publish transition: %w", err)
	}
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
