package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/vcwatch/internal/eventlog"
	"github.com/rcliao/vcwatch/internal/metrics"
	"github.com/rcliao/vcwatch/internal/model"
	"github.com/rcliao/vcwatch/internal/notify"
	"github.com/rcliao/vcwatch/internal/occupancy"
	"github.com/rcliao/vcwatch/internal/pairalert"
	"github.com/rcliao/vcwatch/internal/registry"
	"github.com/rcliao/vcwatch/internal/store"
)

// DefaultNamespace is the store namespace used when Options.Namespace is empty.
const DefaultNamespace = "StatusVCMonitorContext"

// ErrMissingCollaborator is returned by New when a required dependency is nil.
var ErrMissingCollaborator = errors.New("missing collaborator")

// ResetPolicy controls when open pair alert keys are released.
type ResetPolicy string

const (
	ResetSession ResetPolicy = "session"
	ResetNever   ResetPolicy = "never"
)

// ParseResetPolicy validates s. An empty string yields ResetSession.
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch ResetPolicy(s) {
	case "", ResetSession:
		return ResetSession, nil
	case ResetNever:
		return ResetNever, nil
	}
	return "", fmt.Errorf("invalid reset policy %q (valid: session, never)", s)
}

// Deps are the collaborators an Engine is built from. Identities, Presence,
// Voice and Store are required; the rest fall back to no-op defaults.
type Deps struct {
	Identities IdentitySource
	Presence   PresenceSource
	Voice      VoiceSource
	Channels   ChannelSource
	Store      store.Store
	Notifier   notify.Notifier
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// Options configures an Engine.
type Options struct {
	Namespace    string
	LogCapacity  int
	ResetPolicy  ResetPolicy
	ToastTimeout time.Duration
}

// Engine is the correlation state machine. All state is owned by the
// instance; independent engines share nothing.
type Engine struct {
	logger     *zap.Logger
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	identities IdentitySource
	presence   PresenceSource
	voice      VoiceSource
	channels   ChannelSource
	policy     ResetPolicy
	store      store.Store
	ns         string

	registry  *registry.Registry
	log       *eventlog.Log
	occupancy *occupancy.Tracker
	alerts    *pairalert.Deduplicator

	lastStatus  map[string]model.Status
	lastChannel map[string]string
}

// New creates an Engine. It returns an error wrapping ErrMissingCollaborator
// when a required dependency is missing.
func New(deps Deps, opts Options) (*Engine, error) {
	switch {
	case deps.Identities == nil:
		return nil, fmt.Errorf("%w: identity source", ErrMissingCollaborator)
	case deps.Presence == nil:
		return nil, fmt.Errorf("%w: presence source", ErrMissingCollaborator)
	case deps.Voice == nil:
		return nil, fmt.Errorf("%w: voice source", ErrMissingCollaborator)
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: store", ErrMissingCollaborator)
	}

	policy, err := ParseResetPolicy(string(opts.ResetPolicy))
	if err != nil {
		return nil, err
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	logger := deps.Logger.Named("engine")

	var notifier notify.Notifier = notify.Nop{}
	if deps.Notifier != nil {
		notifier = safeNotifier{next: deps.Notifier, logger: logger}
	}

	e := &Engine{
		logger:      logger,
		notifier:    notifier,
		metrics:     deps.Metrics,
		identities:  deps.Identities,
		presence:    deps.Presence,
		voice:       deps.Voice,
		channels:    deps.Channels,
		policy:      policy,
		store:       deps.Store,
		ns:          opts.Namespace,
		registry:    registry.New(deps.Store, opts.Namespace),
		occupancy:   occupancy.New(),
		alerts:      pairalert.New(),
		lastStatus:  make(map[string]model.Status),
		lastChannel: make(map[string]string),
	}
	e.log = eventlog.New(deps.Store, opts.Namespace, eventlog.Options{
		Capacity:     opts.LogCapacity,
		Notifier:     notifier,
		Logger:       deps.Logger,
		Now:          deps.Now,
		ToastTimeout: opts.ToastTimeout,
	})
	e.registry.OnUntrack(e.forget)

	return e, nil
}

// Load restores tracked identities, selection and logs from the store.
func (e *Engine) Load(ctx context.Context) error {
	if err := e.registry.Load(ctx); err != nil {
		return err
	}
	if err := e.log.Load(ctx); err != nil {
		return err
	}
	e.updateGauges()
	return nil
}

// Registry returns the tracked identity registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Log returns the event log.
func (e *Engine) Log() *eventlog.Log { return e.log }

// Policy returns the alert reset policy in effect.
func (e *Engine) Policy() ResetPolicy { return e.policy }

// SetTracked tracks or untracks id; untracking forgets all derived state.
func (e *Engine) SetTracked(ctx context.Context, id string, tracked bool) error {
	defer e.updateGauges()
	return e.registry.SetTracked(ctx, id, tracked)
}

// Replace sets the tracked set to exactly ids.
func (e *Engine) Replace(ctx context.Context, ids []string) error {
	defer e.updateGauges()
	return e.registry.Replace(ctx, ids)
}

// ReloadTracked re-reads the persisted tracked set and selection, so changes
// made by another process take effect. Identities no longer tracked get the
// usual untrack cascade.
func (e *Engine) ReloadTracked(ctx context.Context) error {
	saved := registry.New(e.store, e.ns)
	if err := saved.Load(ctx); err != nil {
		return err
	}
	if err := e.Replace(ctx, saved.Tracked()); err != nil {
		return err
	}
	return e.registry.Select(ctx, saved.Selected())
}

// Select sets the identity selected for inspection.
func (e *Engine) Select(ctx context.Context, id string) error {
	return e.registry.Select(ctx, id)
}

// forget drops last-known state and the log of an untracked identity.
// Occupancy and alert keys are cleaned lazily on its next transition.
func (e *Engine) forget(ctx context.Context, id string) {
	delete(e.lastStatus, id)
	delete(e.lastChannel, id)
	if err := e.log.Delete(ctx, id); err != nil {
		e.logger.Error("Failed to persist log deletion", zap.String("identity", id), zap.Error(err))
	}
}

// Snapshot is a read-only view of engine state.
type Snapshot struct {
	Tracked     []string                `json:"tracked"`
	Selected    string                  `json:"selected"`
	ResetPolicy ResetPolicy             `json:"reset_policy"`
	Status      map[string]model.Status `json:"status"`
	Channels    map[string]string       `json:"channels"`
	Occupancy   map[string][]string     `json:"occupancy"`
	OpenAlerts  []string                `json:"open_alerts"`
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Tracked:     e.registry.Tracked(),
		Selected:    e.registry.Selected(),
		ResetPolicy: e.policy,
		Status:      make(map[string]model.Status, len(e.lastStatus)),
		Channels:    make(map[string]string, len(e.lastChannel)),
		Occupancy:   e.occupancy.Snapshot(),
		OpenAlerts:  []string{},
	}
	for id, st := range e.lastStatus {
		s.Status[id] = st
	}
	for id, ch := range e.lastChannel {
		s.Channels[id] = ch
	}
	for _, k := range e.alerts.Open() {
		s.OpenAlerts = append(s.OpenAlerts, k.String())
	}
	return s
}

// HandlePresence re-reads the presence of every tracked identity and logs
// each value that differs from the last one observed.
func (e *Engine) HandlePresence(ctx context.Context) {
	for _, id := range e.registry.Tracked() {
		if err := e.observeStatus(ctx, id); err != nil {
			e.metrics.Failure()
			e.logger.Error("Presence entry failed", zap.String("identity", id), zap.Error(err))
		}
	}
}

func (e *Engine) observeStatus(ctx context.Context, id string) (err error) {
	defer recoverInto(&err)

	status, _ := e.presence.Status(id)
	if prev, seen := e.lastStatus[id]; seen && prev == status {
		return nil
	}
	name := e.displayName(id)

	e.lastStatus[id] = status
	e.append(ctx, id, fmt.Sprintf("%s changed status to %s", name, status.Text()))
	e.metrics.Transition(metrics.KindStatus)
	return nil
}

// displayName falls back to the raw id when the identity is unknown.
func (e *Engine) displayName(id string) string {
	if ident, ok := e.identities.Identity(id); ok && ident.DisplayName != "" {
		return ident.DisplayName
	}
	return id
}

// channelName falls back to the raw id when the channel is unknown.
func (e *Engine) channelName(id string) string {
	if e.channels != nil {
		if ch, ok := e.channels.Channel(id); ok && ch.Name != "" {
			return ch.Name
		}
	}
	return id
}

// append logs a line for id with a toast. Persistence failures are logged and
// otherwise ignored.
func (e *Engine) append(ctx context.Context, id, line string) {
	if _, err := e.log.Append(ctx, id, line, true); err != nil {
		e.logger.Error("Failed to persist log entry", zap.String("identity", id), zap.Error(err))
	}
}

func (e *Engine) updateGauges() {
	e.metrics.SetGauges(len(e.registry.Tracked()), e.occupancy.Len())
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("recovered: %v", r)
	}
}

// safeNotifier keeps notifier panics from reaching engine state.
type safeNotifier struct {
	next   notify.Notifier
	logger *zap.Logger
}

func (s safeNotifier) Toast(ctx context.Context, t notify.Toast) {
	defer s.recover("toast")
	s.next.Toast(ctx, t)
}

func (s safeNotifier) Modal(ctx context.Context, m notify.Modal) {
	defer s.recover("modal")
	s.next.Modal(ctx, m)
}

func (s safeNotifier) recover(kind string) {
	if r := recover(); r != nil {
		s.logger.Warn("Notifier failed", zap.String("kind", kind), zap.Any("panic", r))
	}
}
