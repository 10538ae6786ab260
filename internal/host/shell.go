package host

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/rcliao/vcwatch/internal/engine"
	"github.com/rcliao/vcwatch/internal/notify"
)

// AppName prefixes lifecycle toasts.
const AppName = "vcwatch"

var (
	ErrStarted = errors.New("shell already started")
	ErrStopped = errors.New("shell stopped")
)

// Shell connects an Engine to a Bus for the lifetime of a run.
type Shell struct {
	engine   *engine.Engine
	bus      *Bus
	notifier notify.Notifier
	logger   *zap.Logger

	mu      sync.Mutex
	subs    []Subscription
	started bool
	stopped bool
}

// NewShell creates a Shell. notifier and logger may be nil.
func NewShell(e *engine.Engine, bus *Bus, notifier notify.Notifier, logger *zap.Logger) *Shell {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{engine: e, bus: bus, notifier: notifier, logger: logger.Named("shell")}
}

// Start subscribes the engine to presence and voice topics.
func (s *Shell) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return ErrStarted
	}

	s.subs = append(s.subs,
		s.bus.Subscribe(TopicPresence, s.onPresence),
		s.bus.Subscribe(TopicVoiceStates, s.onVoice),
		s.bus.Subscribe(TopicVoiceState, s.onVoice),
	)
	s.started = true

	s.logger.Info("Started", zap.Strings("tracked", s.engine.Registry().Tracked()))
	s.notifier.Toast(ctx, notify.Toast{Message: AppName + " started", Kind: notify.KindSuccess})
	return nil
}

// Stop removes every subscription and waits for an in-flight dispatch to
// finish. No handler touches engine state after Stop returns. Stop must not
// be called from a handler; calling it twice is a no-op.
func (s *Shell) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopped || !s.started {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for _, sub := range s.subs {
		s.bus.Unsubscribe(sub)
	}
	s.subs = nil
	s.mu.Unlock()

	s.bus.Do(func() {})

	s.logger.Info("Stopped")
	s.notifier.Toast(ctx, notify.Toast{Message: AppName + " stopped", Kind: notify.KindInfo})
}

// Do runs fn against the engine between event dispatches.
func (s *Shell) Do(fn func(e *engine.Engine) error) error {
	var err error
	s.bus.Do(func() { err = fn(s.engine) })
	return err
}

func (s *Shell) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.stopped
}

func (s *Shell) onPresence(ctx context.Context, _ Event) {
	if !s.active() {
		return
	}
	s.engine.HandlePresence(ctx)
}

func (s *Shell) onVoice(ctx context.Context, ev Event) {
	if !s.active() {
		return
	}
	s.engine.HandleVoice(ctx, ev.Voice)
}
