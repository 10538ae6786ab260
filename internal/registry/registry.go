// Package registry holds the set of tracked identities and the identity
// currently selected for inspection.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rcliao/vcwatch/internal/model"
	"github.com/rcliao/vcwatch/internal/store"
)

// SettingsKey is the store key holding model.Settings.
const SettingsKey = "settings"

// UntrackFunc is called for every identity removed from the tracked set.
type UntrackFunc func(ctx context.Context, id string)

// Registry is the tracked identity set. Membership gates all logging and
// alerting. Not safe for concurrent use.
type Registry struct {
	store    store.Store
	ns       string
	settings model.Settings
	hooks    []UntrackFunc
}

// New creates an empty Registry persisting under namespace ns.
func New(s store.Store, ns string) *Registry {
	return &Registry{
		store:    s,
		ns:       ns,
		settings: model.Settings{TrackedUsers: map[string]bool{}},
	}
}

// Load restores settings from the store. A missing document leaves the
// registry empty.
func (r *Registry) Load(ctx context.Context) error {
	var st model.Settings
	ok, err := r.store.Load(ctx, r.ns, SettingsKey, &st)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !ok {
		return nil
	}
	if st.TrackedUsers == nil {
		st.TrackedUsers = map[string]bool{}
	}
	// Entries explicitly set to false are not tracked.
	for id, on := range st.TrackedUsers {
		if !on {
			delete(st.TrackedUsers, id)
		}
	}
	r.settings = st
	return nil
}

// OnUntrack registers a cascade hook run when an identity stops being tracked.
func (r *Registry) OnUntrack(fn UntrackFunc) {
	r.hooks = append(r.hooks, fn)
}

// IsTracked reports whether id is tracked.
func (r *Registry) IsTracked(id string) bool {
	return r.settings.TrackedUsers[id]
}

// SetTracked adds or removes id. Removing cascades to every OnUntrack hook and
// clears the selection if it pointed at id. Both directions are idempotent;
// settings are persisted either way.
func (r *Registry) SetTracked(ctx context.Context, id string, tracked bool) error {
	if tracked {
		r.settings.TrackedUsers[id] = true
	} else {
		r.untrack(ctx, id)
	}
	return r.save(ctx)
}

func (r *Registry) untrack(ctx context.Context, id string) {
	delete(r.settings.TrackedUsers, id)
	for _, fn := range r.hooks {
		fn(ctx, id)
	}
	if r.settings.SelectedUser == id {
		r.settings.SelectedUser = ""
	}
}

// Replace sets the tracked set to exactly ids (blank entries ignored). Every
// identity dropped by the replacement is untracked with the usual cascade.
func (r *Registry) Replace(ctx context.Context, ids []string) error {
	next := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			next[id] = true
		}
	}
	for _, id := range r.Tracked() {
		if !next[id] {
			r.untrack(ctx, id)
		}
	}
	r.settings.TrackedUsers = next
	return r.save(ctx)
}

// Tracked returns the tracked identities, sorted.
func (r *Registry) Tracked() []string {
	ids := make([]string, 0, len(r.settings.TrackedUsers))
	for id := range r.settings.TrackedUsers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Selected returns the selected identity, or "" if none.
func (r *Registry) Selected() string {
	return r.settings.SelectedUser
}

// Select sets the selected identity. An empty id clears the selection.
func (r *Registry) Select(ctx context.Context, id string) error {
	r.settings.SelectedUser = id
	return r.save(ctx)
}

func (r *Registry) save(ctx context.Context) error {
	if err := r.store.Save(ctx, r.ns, SettingsKey, r.settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
