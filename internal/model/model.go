// Package model defines the core status/voice tracking data types.
package model

import "time"

// Status is a presence value as reported by the host ("online", "idle", "dnd", ...).
type Status string

// StatusUnknown is rendered when the host reports no presence value.
const StatusUnknown Status = "unknown"

// Text returns the status for display, falling back to StatusUnknown.
func (s Status) Text() string {
	if s == "" {
		return string(StatusUnknown)
	}
	return string(s)
}

// Identity is a user known to the host.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"username"`
}

// Channel is a voice channel known to the host.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VoiceTransition is a single normalized voice-state entry. ChannelID is only
// meaningful when HasChannel is set; otherwise the current channel has to be
// looked up from the voice source.
type VoiceTransition struct {
	IdentityID string `json:"user_id"`
	ChannelID  string `json:"channel_id,omitempty"`
	HasChannel bool   `json:"-"`
}

// Settings is the persisted operator state.
type Settings struct {
	TrackedUsers map[string]bool `json:"trackedUsers"`
	SelectedUser string          `json:"selectedUser"`
}

// LogEntry is one line in an identity's event log.
type LogEntry struct {
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
	Line string    `json:"line"`
}

// isoMillis matches the ISO-8601 form with millisecond precision, always UTC.
const isoMillis = "2006-01-02T15:04:05.000Z"

// String renders the entry as "[timestamp] line".
func (e LogEntry) String() string {
	return "[" + e.At.UTC().Format(isoMillis) + "] " + e.Line
}

// Alert is a raised co-presence alert for two tracked identities.
type Alert struct {
	Channel Channel  `json:"channel"`
	A       Identity `json:"a"`
	B       Identity `json:"b"`
}
