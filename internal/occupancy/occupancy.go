// Package occupancy tracks which tracked identities are currently present in
// each voice channel.
package occupancy

import "sort"

// Tracker maps channel ID to the set of identities in it. An identity is in
// at most one channel, and empty channels are pruned. The empty channel ID
// means "not in voice". Not safe for concurrent use.
type Tracker struct {
	channels map[string]map[string]struct{}
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{channels: make(map[string]map[string]struct{})}
}

// Move records that id left oldChannel and entered newChannel. Either side may
// be empty. Callers must not call Move when the channel did not change.
func (t *Tracker) Move(id, oldChannel, newChannel string) {
	if oldChannel != "" {
		t.remove(id, oldChannel)
	}
	if newChannel != "" {
		set, ok := t.channels[newChannel]
		if !ok {
			set = make(map[string]struct{})
			t.channels[newChannel] = set
		}
		set[id] = struct{}{}
	}
}

func (t *Tracker) remove(id, channel string) bool {
	set, ok := t.channels[channel]
	if !ok {
		return false
	}
	if _, ok := set[id]; !ok {
		return false
	}
	delete(set, id)
	if len(set) == 0 {
		delete(t.channels, channel)
	}
	return true
}

// Evict removes id from every channel and returns the channels it was found
// in, sorted. Used to clear stale membership left behind by an untracked
// identity.
func (t *Tracker) Evict(id string) []string {
	var removed []string
	for ch := range t.channels {
		if t.remove(id, ch) {
			removed = append(removed, ch)
		}
	}
	sort.Strings(removed)
	return removed
}

// Occupants returns the identities in channel, sorted.
func (t *Tracker) Occupants(channel string) []string {
	set := t.channels[channel]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of occupied channels.
func (t *Tracker) Len() int {
	return len(t.channels)
}

// Snapshot returns a copy of the occupancy map with sorted member lists.
func (t *Tracker) Snapshot() map[string][]string {
	out := make(map[string][]string, len(t.channels))
	for ch := range t.channels {
		out[ch] = t.Occupants(ch)
	}
	return out
}
