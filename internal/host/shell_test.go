package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rcliao/vcwatch/internal/engine"
	"github.com/rcliao/vcwatch/internal/notify"
	"github.com/rcliao/vcwatch/internal/store"
)

type shellHarness struct {
	shell  *Shell
	engine *engine.Engine
	feed   *Feed
	bus    *Bus
	rec    *notify.Recorder
}

func newShellHarness(t *testing.T) *shellHarness {
	t.Helper()
	dir := NewDirectory()
	bus := NewBus()
	rec := &notify.Recorder{}
	logger := zaptest.NewLogger(t)
	e, err := engine.New(engine.Deps{
		Identities: dir,
		Presence:   dir,
		Voice:      dir,
		Channels:   dir,
		Store:      store.NewMemStore(),
		Notifier:   rec,
		Logger:     logger,
	}, engine.Options{})
	require.NoError(t, err)
	return &shellHarness{
		shell:  NewShell(e, bus, rec, logger),
		engine: e,
		feed:   NewFeed(dir, bus, logger, nil),
		bus:    bus,
		rec:    rec,
	}
}

func (h *shellHarness) send(frames ...string) {
	for _, f := range frames {
		h.feed.Dispatch(context.Background(), []byte(f))
	}
}

func TestShell_StartStopToasts(t *testing.T) {
	h := newShellHarness(t)
	ctx := context.Background()

	require.NoError(t, h.shell.Start(ctx))
	assert.ErrorIs(t, h.shell.Start(ctx), ErrStarted)
	assert.Equal(t, 1, h.bus.Subscribers(TopicPresence))
	assert.Equal(t, 1, h.bus.Subscribers(TopicVoiceStates))
	assert.Equal(t, 1, h.bus.Subscribers(TopicVoiceState))

	h.shell.Stop(ctx)
	h.shell.Stop(ctx)

	toasts := h.rec.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, notify.Toast{Message: "vcwatch started", Kind: notify.KindSuccess}, toasts[0])
	assert.Equal(t, notify.Toast{Message: "vcwatch stopped", Kind: notify.KindInfo}, toasts[1])
	assert.Equal(t, 0, h.bus.Subscribers(TopicPresence))
	assert.Equal(t, 0, h.bus.Subscribers(TopicVoiceStates))
	assert.Equal(t, 0, h.bus.Subscribers(TopicVoiceState))
	assert.ErrorIs(t, h.shell.Start(ctx), ErrStopped)
}

func TestShell_FramesDriveEngine(t *testing.T) {
	h := newShellHarness(t)
	ctx := context.Background()
	require.NoError(t, h.shell.Do(func(e *engine.Engine) error {
		if err := e.SetTracked(ctx, "A", true); err != nil {
			return err
		}
		return e.SetTracked(ctx, "B", true)
	}))
	require.NoError(t, h.shell.Start(ctx))

	h.send(
		`{"t":"USER_UPDATE","d":{"id":"A","username":"alice"}}`,
		`{"t":"USER_UPDATE","d":{"id":"B","username":"bob"}}`,
		`{"t":"CHANNEL_UPDATE","d":{"id":"C1","name":"General"}}`,
		`{"t":"PRESENCE_UPDATE","d":{"user_id":"A","status":"online"}}`,
		`{"t":"VOICE_STATE_UPDATE","d":{"userId":"A","channelId":"C1"}}`,
		`{"t":"VOICE_STATE_UPDATES","d":[{"userId":"B","channelId":"C1"}]}`,
	)

	log := h.engine.Log()
	assert.Equal(t, 3, log.Len("A"), "status, join, pair")
	assert.Equal(t, 3, log.Len("B"), "status, join, pair")
	assert.Contains(t, log.Text("B"), "bob changed status to unknown")
	assert.Len(t, h.rec.Modals(), 1)
	assert.Contains(t, log.Text("A"), `alice joined VC "General"`)
	assert.Contains(t, log.Text("B"), `bob is in VC "General" with alice`)
}

func TestShell_LeaveWithNullChannel(t *testing.T) {
	h := newShellHarness(t)
	ctx := context.Background()
	require.NoError(t, h.shell.Do(func(e *engine.Engine) error { return e.SetTracked(ctx, "A", true) }))
	require.NoError(t, h.shell.Start(ctx))

	h.send(
		`{"t":"VOICE_STATE_UPDATE","d":{"userId":"A","channelId":"C1"}}`,
		`{"t":"VOICE_STATE_UPDATE","d":{"userId":"A","channelId":null}}`,
	)

	assert.Contains(t, h.engine.Log().Text("A"), `A left VC "C1"`)
}

func TestShell_NoEffectAfterStop(t *testing.T) {
	h := newShellHarness(t)
	ctx := context.Background()
	require.NoError(t, h.shell.Do(func(e *engine.Engine) error { return e.SetTracked(ctx, "A", true) }))
	require.NoError(t, h.shell.Start(ctx))
	h.shell.Stop(ctx)

	h.send(
		`{"t":"PRESENCE_UPDATE","d":{"user_id":"A","status":"online"}}`,
		`{"t":"VOICE_STATE_UPDATE","d":{"userId":"A","channelId":"C1"}}`,
	)

	assert.Equal(t, 0, h.engine.Log().Len("A"))
	assert.Empty(t, h.engine.Snapshot().Channels)
}
