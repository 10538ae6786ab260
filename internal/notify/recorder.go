package notify

import (
	"context"
	"sync"
	"sync/atomic"
)

// Recorder keeps every notification it receives. Used as a test double.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
	modals []Modal
}

func (r *Recorder) Toast(_ context.Context, t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *Recorder) Modal(_ context.Context, m Modal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modals = append(r.modals, m)
}

// Toasts returns a copy of the recorded toasts.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Modals returns a copy of the recorded modals.
func (r *Recorder) Modals() []Modal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Modal(nil), r.modals...)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = nil
	r.modals = nil
}

// Counter counts notifications without keeping them.
type Counter struct {
	toasts atomic.Int64
	modals atomic.Int64
}

func (c *Counter) Toast(context.Context, Toast) { c.toasts.Add(1) }
func (c *Counter) Modal(context.Context, Modal) { c.modals.Add(1) }

// Toasts returns how many toasts were seen.
func (c *Counter) Toasts() int { return int(c.toasts.Load()) }

// Modals returns how many modals were seen.
func (c *Counter) Modals() int { return int(c.modals.Load()) }
