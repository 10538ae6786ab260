// Package eventlog keeps a bounded, append-only, timestamped line log per
// tracked identity.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rcliao/vcwatch/internal/model"
	"github.com/rcliao/vcwatch/internal/notify"
	"github.com/rcliao/vcwatch/internal/store"
)

const (
	// DefaultCapacity is the number of entries kept per identity.
	DefaultCapacity = 2000

	// LogKey is the store key holding the per-identity log map.
	LogKey = "logData"

	NoSelectionText = "No user selected."
	NoEventsText    = "No events logged yet for this user."
)

// Options configures a Log.
type Options struct {
	Capacity     int
	Notifier     notify.Notifier
	Logger       *zap.Logger
	Now          func() time.Time
	ToastTimeout time.Duration
}

// Log is the per-identity event log. Not safe for concurrent use.
type Log struct {
	store    store.Store
	ns       string
	capacity int
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
	timeout  time.Duration
	entropy  *ulid.MonotonicEntropy
	entries  map[string][]model.LogEntry
}

// New creates an empty Log persisting under namespace ns.
func New(s store.Store, ns string, opts Options) *Log {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ToastTimeout <= 0 {
		opts.ToastTimeout = notify.DefaultToastTimeout
	}
	return &Log{
		store:    s,
		ns:       ns,
		capacity: opts.Capacity,
		notifier: opts.Notifier,
		logger:   opts.Logger.Named("eventlog"),
		now:      opts.Now,
		timeout:  opts.ToastTimeout,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		entries:  make(map[string][]model.LogEntry),
	}
}

// Load restores the log map from the store.
func (l *Log) Load(ctx context.Context) error {
	data := map[string][]model.LogEntry{}
	if _, err := l.store.Load(ctx, l.ns, LogKey, &data); err != nil {
		return fmt.Errorf("load logs: %w", err)
	}
	for id, entries := range data {
		if len(entries) > l.capacity {
			entries = entries[len(entries)-l.capacity:]
		}
		data[id] = entries
	}
	l.entries = data
	return nil
}

// Append stores a timestamped line for id, truncating the oldest entries past
// capacity, and persists. When toast is set the bare line is also shown as a
// toast. The entry is kept in memory even if persisting fails.
func (l *Log) Append(ctx context.Context, id, line string, toast bool) (model.LogEntry, error) {
	at := l.now()
	entry := model.LogEntry{
		ID:   ulid.MustNew(ulid.Timestamp(at), l.entropy).String(),
		At:   at,
		Line: line,
	}

	entries := append(l.entries[id], entry)
	if over := len(entries) - l.capacity; over > 0 {
		// Copy so the dropped prefix can be collected.
		entries = append([]model.LogEntry(nil), entries[over:]...)
	}
	l.entries[id] = entries

	l.logger.Debug(entry.String(), zap.String("identity", id))

	if toast {
		l.notifier.Toast(ctx, notify.Toast{Message: line, Kind: notify.KindInfo, Timeout: l.timeout})
	}

	if err := l.save(ctx); err != nil {
		return entry, err
	}
	return entry, nil
}

// Text returns the rendered entries for id joined by newlines, or a
// placeholder when id is empty or has no entries.
func (l *Log) Text(id string) string {
	if id == "" {
		return NoSelectionText
	}
	entries := l.entries[id]
	if len(entries) == 0 {
		return NoEventsText
	}
	return strings.Join(render(entries), "\n")
}

// Entries returns a copy of id's entries, oldest first.
func (l *Log) Entries(id string) []model.LogEntry {
	return append([]model.LogEntry(nil), l.entries[id]...)
}

// Len returns the number of entries for id.
func (l *Log) Len(id string) int {
	return len(l.entries[id])
}

// Clear empties id's log. An empty id is a no-op.
func (l *Log) Clear(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	l.entries[id] = []model.LogEntry{}
	return l.save(ctx)
}

// Delete removes id's log entirely.
func (l *Log) Delete(ctx context.Context, id string) error {
	if _, ok := l.entries[id]; !ok {
		return nil
	}
	delete(l.entries, id)
	return l.save(ctx)
}

// Export returns every identity's rendered lines.
func (l *Log) Export() map[string][]string {
	out := make(map[string][]string, len(l.entries))
	for id, entries := range l.entries {
		out[id] = render(entries)
	}
	return out
}

// ExportJSON returns Export as indented JSON.
func (l *Log) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(l.Export(), "", "  ")
}

// ExportIdentityJSON returns one identity's rendered lines as indented JSON.
// An unknown identity yields an empty array.
func (l *Log) ExportIdentityJSON(id string) ([]byte, error) {
	lines := render(l.entries[id])
	return json.MarshalIndent(lines, "", "  ")
}

func (l *Log) save(ctx context.Context) error {
	if err := l.store.Save(ctx, l.ns, LogKey, l.entries); err != nil {
		return fmt.Errorf("save logs: %w", err)
	}
	return nil
}

func render(entries []model.LogEntry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}
