package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/aura/internal/models"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestNATSPublisherSubjectAndPayload(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "")

	err := p.Publish(context.Background(), Transition{
		SessionID: "abc",
		Scenario:  "cost_anomaly",
		Trigger:   "approve",
		From:      models.StatePlan,
		To:        models.StateDone,
		At:        time.Date(2025, 1, 15, 14, 25, 18, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"aura.sessions.abc.transitions"}, fc.subjects)

	var decoded Transition
	require.NoError(t, json.Unmarshal(fc.payloads[0], &decoded))
	assert.Equal(t, models.StateDone, decoded.To)
	assert.Equal(t, "approve", decoded.Trigger)

	require.NoError(t, p.Close())
	assert.True(t, fc.closed)
}

func TestNATSPublisherErrors(t *testing.T) {
	fc := &fakeConn{err: errors.New("nats: connection closed")}
	p := newPublisher(fc, "custom.prefix.")
	assert.Equal(t, "custom.prefix.s1.transitions", p.Subject("s1"))

	assert.ErrorContains(t, p.Publish(context.Background(), Transition{SessionID: "s1"}), "connection closed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, Transition{SessionID: "s1"}), context.Canceled)
}

func TestConnectFailsWithoutServer(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", "", 200*time.Millisecond)
	assert.Error(t, err)
}
