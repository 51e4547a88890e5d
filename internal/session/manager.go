// Package session keeps one stage pipeline per workflow session and persists
// it between calls. Sessions are independent; nothing is shared between them.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/miradorstack/aura/internal/audit"
	"github.com/miradorstack/aura/internal/cache"
	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/engine"
	"github.com/miradorstack/aura/internal/events"
	"github.com/miradorstack/aura/internal/metrics"
	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/notifications"
	"github.com/miradorstack/aura/internal/utils"
	"github.com/miradorstack/aura/internal/workflow"
)

// ErrNotFound is returned for unknown, closed, or expired sessions.
var ErrNotFound = errors.New("session not found")

// DefaultTTL bounds how long an untouched session is kept.
const DefaultTTL = 30 * time.Minute

// Actor is recorded as the decision maker in the audit trail.
const Actor = "operator"

const keyPrefix = "aura:session:"

// record is the persisted form of a session.
type record struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Pipeline  engine.Snapshot `json:"pipeline"`
}

// Manager creates, advances and discards workflow sessions.
type Manager struct {
	source    catalog.Source
	store     cache.Provider
	ttl       time.Duration
	logger    *slog.Logger
	audit     audit.Recorder
	events    events.Publisher
	escalator notifications.Escalator
	now       func() time.Time
	newID     func() string
	locks     keyedMutex
}

// Option customises a Manager.
type Option func(*Manager)

// WithTTL sets the session lifetime. Zero keeps sessions until closed.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithAudit records plan decisions.
func WithAudit(r audit.Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.audit = r
		}
	}
}

// WithEvents publishes every accepted transition.
func WithEvents(p events.Publisher) Option {
	return func(m *Manager) {
		if p != nil {
			m.events = p
		}
	}
}

// WithEscalator notifies humans when a plan is rejected.
func WithEscalator(e notifications.Escalator) Option {
	return func(m *Manager) {
		if e != nil {
			m.escalator = e
		}
	}
}

// WithClock overrides the clock used for timestamps and timelines.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a Manager. A nil store keeps sessions in memory.
func NewManager(source catalog.Source, store cache.Provider, opts ...Option) *Manager {
	if source == nil {
		source = catalog.Default()
	}
	if store == nil {
		store = cache.NewMemoryProvider()
	}
	m := &Manager{
		source:    source,
		store:     store,
		ttl:       DefaultTTL,
		logger:    slog.Default(),
		audit:     audit.Noop{},
		events:    events.Noop{},
		escalator: notifications.Noop{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a new idle session.
func (m *Manager) Create(ctx context.Context) (string, models.View, error) {
	now := m.now().UTC()
	rec := record{ID: m.newID(), CreatedAt: now, UpdatedAt: now, Pipeline: engine.Snapshot{State: models.StateIdle}}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", models.View{}, utils.NewAppError("session.create", "encode session", err)
	}
	ok, err := m.store.SetNX(ctx, keyPrefix+rec.ID, data, m.ttl)
	if err != nil {
		return "", models.View{}, utils.NewAppError("session.create", "persist session", err)
	}
	if !ok {
		return "", models.View{}, utils.NewAppError("session.create", fmt.Sprintf("session id %s already taken", rec.ID), nil)
	}

	metrics.SessionOpened()
	m.logger.Info("session created", slog.String("session", rec.ID))
	return rec.ID, engine.NewPipeline(m.source).CurrentView(), nil
}

// Select chooses the scenario for a session, restarting its pipeline.
func (m *Manager) Select(ctx context.Context, id, scenario string) (models.View, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	rec, p, err := m.load(ctx, id)
	if err != nil {
		return models.View{}, err
	}
	view, err := p.SelectScenario(scenario)
	if err != nil {
		return view, err
	}
	if err := m.save(ctx, rec, p); err != nil {
		return models.View{}, err
	}
	m.logger.Info("scenario selected", slog.String("session", id), slog.String("scenario", string(view.Scenario)))
	return view, nil
}

// Advance applies a trigger to a session's pipeline.
func (m *Manager) Advance(ctx context.Context, id, trigger string) (models.View, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	rec, p, err := m.load(ctx, id)
	if err != nil {
		return models.View{}, err
	}

	from := p.State()
	view, err := p.Advance(models.Trigger(trigger))
	if err != nil {
		metrics.ObserveTransition(trigger, metrics.OutcomeRejected)
		m.logger.Info("transition refused",
			slog.String("session", id),
			slog.String("trigger", trigger),
			slog.String("state", string(from)),
			slog.Any("error", err),
		)
		return view, err
	}
	if err := m.save(ctx, rec, p); err != nil {
		return models.View{}, err
	}

	metrics.ObserveTransition(trigger, metrics.OutcomeSuccess)
	m.logger.Info("transition applied",
		slog.String("session", id),
		slog.String("scenario", string(view.Scenario)),
		slog.String("trigger", trigger),
		slog.String("from", string(from)),
		slog.String("to", string(view.State)),
	)
	if from != view.State || models.Trigger(trigger) == models.TriggerDefer {
		m.afterTransition(ctx, id, models.Trigger(trigger), from, view)
	}
	return view, nil
}

func (m *Manager) afterTransition(ctx context.Context, id string, trigger models.Trigger, from models.PipelineState, view models.View) {
	err := m.events.Publish(ctx, events.Transition{
		SessionID: id,
		Scenario:  view.Scenario,
		Trigger:   string(trigger),
		From:      from,
		To:        view.State,
		Deferrals: view.Deferrals,
		At:        m.now().UTC(),
	})
	if err != nil {
		m.logger.Warn("transition event not published", slog.String("session", id), slog.Any("error", err))
	}

	switch trigger {
	case models.TriggerApprove, models.TriggerReject, models.TriggerDefer:
	default:
		return
	}

	payload := map[string]any{
		"scenario":  view.Scenario,
		"from":      from,
		"to":        view.State,
		"deferrals": view.Deferrals,
	}
	if view.Plan != nil {
		payload["action"] = view.Plan.RecommendedAction
	}
	if err := m.audit.Record(ctx, Actor, string(trigger), id, payload); err != nil {
		m.logger.Warn("decision not audited", slog.String("session", id), slog.Any("error", err))
	}

	if trigger != models.TriggerReject {
		return
	}
	s, err := m.source.Current().Lookup(string(view.Scenario))
	if err != nil {
		m.logger.Warn("escalation skipped", slog.String("session", id), slog.Any("error", err))
		return
	}
	esc := notifications.Escalation{SessionID: id, Scenario: s, Reason: view.Notice, At: m.now().UTC()}
	if err := m.escalator.Escalate(ctx, esc); err != nil {
		m.logger.Warn("escalation failed", slog.String("session", id), slog.Any("error", err))
	}
}

// View returns the current view of a session.
func (m *Manager) View(ctx context.Context, id string) (models.View, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	_, p, err := m.load(ctx, id)
	if err != nil {
		return models.View{}, err
	}
	return p.CurrentView(), nil
}

// Reset returns a session to idle without closing it.
func (m *Manager) Reset(ctx context.Context, id string) (models.View, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	rec, p, err := m.load(ctx, id)
	if err != nil {
		return models.View{}, err
	}
	view := p.Reset()
	if err := m.save(ctx, rec, p); err != nil {
		return models.View{}, err
	}
	m.logger.Info("session reset", slog.String("session", id))
	return view, nil
}

// Close discards a session and all of its state.
func (m *Manager) Close(ctx context.Context, id string) error {
	unlock := m.locks.lock(id)
	defer unlock()

	if _, err := m.get(ctx, id); err != nil {
		return err
	}
	if err := m.store.Del(ctx, keyPrefix+id); err != nil {
		return utils.NewAppError("session.close", "delete session", err)
	}
	metrics.SessionClosed()
	m.logger.Info("session closed", slog.String("session", id))
	return nil
}

func (m *Manager) get(ctx context.Context, id string) (record, error) {
	if id == "" {
		return record{}, ErrNotFound
	}
	data, err := m.store.Get(ctx, keyPrefix+id)
	if errors.Is(err, cache.ErrCacheMiss) {
		return record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return record{}, utils.NewAppError("session.load", "read session", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, utils.NewAppError("session.load", "decode session", err)
	}
	return rec, nil
}

func (m *Manager) load(ctx context.Context, id string) (record, *engine.Pipeline, error) {
	rec, err := m.get(ctx, id)
	if err != nil {
		return record{}, nil, err
	}
	p, err := engine.Restore(m.source, rec.Pipeline, engine.WithClock(m.now), engine.WithLogger(m.logger))
	if err != nil {
		return record{}, nil, utils.NewAppError("session.load", "restore pipeline", err)
	}
	return rec, p, nil
}

func (m *Manager) save(ctx context.Context, rec record, p *engine.Pipeline) error {
	rec.Pipeline = p.Snapshot()
	rec.UpdatedAt = m.now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return utils.NewAppError("session.save", "encode session", err)
	}
	if err := m.store.Set(ctx, keyPrefix+rec.ID, data, m.ttl); err != nil {
		return utils.NewAppError("session.save", "persist session", err)
	}
	return nil
}

// IsOutOfOrder reports whether err is a refused stage transition.
func IsOutOfOrder(err error) bool {
	var ooo *workflow.OutOfOrderStageError
	return errors.As(err, &ooo)
}
