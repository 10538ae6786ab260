package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishInSubscriptionOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(TopicPresence, func(context.Context, Event) { got = append(got, "first") })
	b.Subscribe(TopicPresence, func(context.Context, Event) { got = append(got, "second") })
	b.Subscribe(TopicVoiceState, func(context.Context, Event) { got = append(got, "voice") })

	n := b.Publish(context.Background(), Event{Topic: TopicPresence})

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	sub := b.Subscribe(TopicVoiceStates, func(context.Context, Event) { calls++ })

	b.Unsubscribe(sub)
	b.Unsubscribe(sub)

	assert.Equal(t, 0, b.Publish(context.Background(), Event{Topic: TopicVoiceStates}))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, b.Subscribers(TopicVoiceStates))
}

func TestBus_UnsubscribeFromHandler(t *testing.T) {
	b := NewBus()
	calls := 0
	var sub Subscription
	sub = b.Subscribe(TopicPresence, func(context.Context, Event) {
		calls++
		b.Unsubscribe(sub)
	})

	b.Publish(context.Background(), Event{Topic: TopicPresence})
	b.Publish(context.Background(), Event{Topic: TopicPresence})

	assert.Equal(t, 1, calls)
}

func TestBus_NoSubscribers(t *testing.T) {
	b := NewBus()
	assert.Equal(t, 0, b.Publish(context.Background(), Event{Topic: "NOPE"}))

	ran := false
	b.Do(func() { ran = true })
	assert.True(t, ran)
}
