// Package pairalert deduplicates co-presence alerts per channel and unordered
// identity pair.
package pairalert

import "sort"

// Key identifies an alert: a channel plus a pair of identities in sorted order.
type Key struct {
	Channel string
	A       string
	B       string
}

// NewKey canonicalizes (a, b) so that NewKey(ch, a, b) == NewKey(ch, b, a).
func NewKey(channel, a, b string) Key {
	if b < a {
		a, b = b, a
	}
	return Key{Channel: channel, A: a, B: b}
}

// String renders the key as "channel:a:b".
func (k Key) String() string {
	return k.Channel + ":" + k.A + ":" + k.B
}

// Involves reports whether id is one of the pair.
func (k Key) Involves(id string) bool {
	return k.A == id || k.B == id
}

// Deduplicator holds the set of open alert keys. Not safe for concurrent use.
type Deduplicator struct {
	open map[Key]struct{}
}

// New creates an empty Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{open: make(map[Key]struct{})}
}

// ShouldAlert checks and marks the key for (channel, a, b). It returns true
// only the first time a key is seen while open. An identity never pairs with
// itself.
func (d *Deduplicator) ShouldAlert(channel, a, b string) bool {
	if a == b {
		return false
	}
	key := NewKey(channel, a, b)
	if _, exists := d.open[key]; exists {
		return false
	}
	d.open[key] = struct{}{}
	return true
}

// Release closes every open key in channel that involves id and returns how
// many were closed.
func (d *Deduplicator) Release(channel, id string) int {
	n := 0
	for key := range d.open {
		if key.Channel == channel && key.Involves(id) {
			delete(d.open, key)
			n++
		}
	}
	return n
}

// ReleaseIdentity closes every open key involving id in any channel.
func (d *Deduplicator) ReleaseIdentity(id string) int {
	n := 0
	for key := range d.open {
		if key.Involves(id) {
			delete(d.open, key)
			n++
		}
	}
	return n
}

// Open returns the open keys sorted by their string form.
func (d *Deduplicator) Open() []Key {
	keys := make([]Key, 0, len(d.open))
	for key := range d.open {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// Len returns the number of open keys.
func (d *Deduplicator) Len() int {
	return len(d.open)
}
