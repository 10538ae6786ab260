package host

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/vcwatch/internal/metrics"
	"github.com/rcliao/vcwatch/internal/model"
)

func TestFeed_DispatchUpdatesDirectory(t *testing.T) {
	dir := NewDirectory()
	f := NewFeed(dir, NewBus(), nil, nil)
	ctx := context.Background()

	f.Dispatch(ctx, []byte(`{"t":"USER_UPDATE","d":{"id":"A","username":"alice"}}`))
	f.Dispatch(ctx, []byte(`{"t":"CHANNEL_UPDATE","d":{"id":"C1","name":"General"}}`))
	f.Dispatch(ctx, []byte(`{"t":"PRESENCE_UPDATE","d":{"user":{"id":"A"},"status":"idle"}}`))
	f.Dispatch(ctx, []byte(`{"t":"VOICE_STATE_UPDATE","d":{"userId":"A","channelId":"C1"}}`))

	ident, ok := dir.Identity("A")
	require.True(t, ok)
	assert.Equal(t, "alice", ident.DisplayName)
	ch, ok := dir.Channel("C1")
	require.True(t, ok)
	assert.Equal(t, "General", ch.Name)
	st, ok := dir.Status("A")
	require.True(t, ok)
	assert.Equal(t, model.Status("idle"), st)
	assert.Equal(t, "C1", dir.CurrentChannel("A"))

	f.Dispatch(ctx, []byte(`{"t":"VOICE_STATE_UPDATE","d":{"userId":"A","channelId":null}}`))
	assert.Equal(t, "", dir.CurrentChannel("A"))
}

func TestFeed_PublishesNormalizedEvents(t *testing.T) {
	bus := NewBus()
	m := metrics.New()
	f := NewFeed(NewDirectory(), bus, nil, m)
	var got []Event
	record := func(_ context.Context, ev Event) { got = append(got, ev) }
	bus.Subscribe(TopicPresence, record)
	bus.Subscribe(TopicVoiceStates, record)
	bus.Subscribe(TopicVoiceState, record)
	ctx := context.Background()

	f.Dispatch(ctx, []byte(`{"t":"PRESENCE_UPDATE","d":{"userId":"A","status":"online"}}`))
	f.Dispatch(ctx, []byte(`{"t":"VOICE_STATE_UPDATES","d":{"voiceStates":[{"userId":"A","channelId":"C1"}]}}`))

	require.Len(t, got, 2)
	assert.Equal(t, TopicPresence, got[0].Topic)
	assert.Equal(t, TopicVoiceStates, got[1].Topic)
	assert.Equal(t, []model.VoiceTransition{{IdentityID: "A", ChannelID: "C1", HasChannel: true}}, got[1].Voice)
}

func TestFeed_IgnoresMalformedAndUnknown(t *testing.T) {
	bus := NewBus()
	dir := NewDirectory()
	f := NewFeed(dir, bus, nil, nil)
	calls := 0
	bus.Subscribe(TopicPresence, func(context.Context, Event) { calls++ })
	ctx := context.Background()

	f.Dispatch(ctx, []byte(`not json`))
	f.Dispatch(ctx, []byte(`{"t":"TYPING_START","d":{}}`))
	f.Dispatch(ctx, []byte(`{"t":"PRESENCE_UPDATE","d":{"status":"online"}}`))
	f.Dispatch(ctx, []byte(`{"t":"USER_UPDATE","d":{"username":"ghost"}}`))

	assert.Equal(t, 0, calls)
	_, ok := dir.Identity("")
	assert.False(t, ok)
}

func TestFeed_Replay(t *testing.T) {
	dir := NewDirectory()
	f := NewFeed(dir, NewBus(), nil, nil)
	input := strings.Join([]string{
		`{"t":"USER_UPDATE","d":{"id":"A","username":"alice"}}`,
		``,
		`{"t":"USER_UPDATE","d":{"id":"B","username":"bob"}}`,
	}, "\n")

	require.NoError(t, f.Replay(context.Background(), strings.NewReader(input)))

	_, okA := dir.Identity("A")
	_, okB := dir.Identity("B")
	assert.True(t, okA)
	assert.True(t, okB)
}

func TestFeed_ReplayStopsOnCancelWhileIdle(t *testing.T) {
	dir := NewDirectory()
	f := NewFeed(dir, NewBus(), nil, nil)
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- f.Replay(ctx, pr) }()

	_, err := pw.Write([]byte(`{"t":"USER_UPDATE","d":{"id":"A","username":"alice"}}` + "\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok := dir.Identity("A")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// Nothing more arrives; the reader stays blocked.
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Replay still blocked after cancel")
	}
}

func TestFeed_ReplayReadError(t *testing.T) {
	f := NewFeed(NewDirectory(), NewBus(), nil, nil)
	pr, pw := io.Pipe()
	pw.CloseWithError(assert.AnError)

	err := f.Replay(context.Background(), pr)
	assert.ErrorIs(t, err, assert.AnError)
}
