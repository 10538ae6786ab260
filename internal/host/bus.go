package host

import (
	"context"
	"sort"
	"sync"

	"github.com/rcliao/vcwatch/internal/model"
)

// Topics published by the feed.
const (
	TopicPresence    = "PRESENCE_UPDATES"
	TopicVoiceStates = "VOICE_STATE_UPDATES"
	TopicVoiceState  = "VOICE_STATE_UPDATE"
)

// Event is a normalized bus message.
type Event struct {
	Topic string
	Voice []model.VoiceTransition
}

// Handler receives events for a topic.
type Handler func(ctx context.Context, ev Event)

// Subscription identifies a registered handler.
type Subscription struct {
	topic string
	id    uint64
}

// Bus delivers events to subscribers one at a time. Publish and Do share a
// lock, so handlers and operator commands never interleave.
type Bus struct {
	dispatch sync.Mutex

	mu   sync.RWMutex
	next uint64
	subs map[string]map[uint64]Handler
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[uint64]Handler)}
}

// Subscribe registers h for topic.
func (b *Bus) Subscribe(topic string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]Handler)
	}
	b.subs[topic][b.next] = h
	return Subscription{topic: topic, id: b.next}
}

// Unsubscribe removes a handler. It is safe to call from inside a handler
// and to call more than once.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs[s.topic], s.id)
	if len(b.subs[s.topic]) == 0 {
		delete(b.subs, s.topic)
	}
}

// Subscribers returns how many handlers are registered for topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Publish calls every handler of ev.Topic in subscription order and returns
// how many ran.
func (b *Bus) Publish(ctx context.Context, ev Event) int {
	b.dispatch.Lock()
	defer b.dispatch.Unlock()

	b.mu.RLock()
	ids := make([]uint64, 0, len(b.subs[ev.Topic]))
	for id := range b.subs[ev.Topic] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[ev.Topic][id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
	return len(handlers)
}

// Do runs fn while no event is being dispatched. It must not be called from
// a handler.
func (b *Bus) Do(fn func()) {
	b.dispatch.Lock()
	defer b.dispatch.Unlock()
	fn()
}
