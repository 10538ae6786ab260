package host

import (
	"sync"

	"github.com/rcliao/vcwatch/internal/model"
)

// Directory is the client-side view of identities, channels, presence and
// voice state. It implements every engine source.
type Directory struct {
	mu       sync.RWMutex
	users    map[string]model.Identity
	channels map[string]model.Channel
	status   map[string]model.Status
	voice    map[string]string
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		users:    make(map[string]model.Identity),
		channels: make(map[string]model.Channel),
		status:   make(map[string]model.Status),
		voice:    make(map[string]string),
	}
}

func (d *Directory) PutIdentity(ident model.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[ident.ID] = ident
}

func (d *Directory) PutChannel(ch model.Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[ch.ID] = ch
}

// SetStatus records a presence value. An empty status removes it.
func (d *Directory) SetStatus(id string, st model.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st == "" {
		delete(d.status, id)
		return
	}
	d.status[id] = st
}

// SetVoice records id's current voice channel; "" means not connected.
func (d *Directory) SetVoice(id, channel string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if channel == "" {
		delete(d.voice, id)
		return
	}
	d.voice[id] = channel
}

func (d *Directory) Identity(id string) (model.Identity, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ident, ok := d.users[id]
	return ident, ok
}

func (d *Directory) Status(id string) (model.Status, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st, ok := d.status[id]
	return st, ok
}

func (d *Directory) CurrentChannel(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.voice[id]
}

func (d *Directory) Channel(id string) (model.Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ch, ok := d.channels[id]
	return ch, ok
}
