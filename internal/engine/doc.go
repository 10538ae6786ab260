// Package engine correlates presence and voice-state events for tracked
// identities.
//
// # Contract
//
// The Engine:
//  1. Re-scans every tracked identity's presence on each presence event and
//     logs values that differ from the last one seen (including the first).
//  2. Classifies each voice-state entry against the identity's last known
//     channel as join, leave, move, or nothing, and logs it.
//  3. Keeps per-channel occupancy of tracked identities and raises one alert
//     per (channel, unordered pair) while that pair's key is open.
//
// # Alert reset
//
// With ResetSession (the default) a pair's key is released when either member
// leaves the channel, so the pair alerts again if it regroups there later.
// ResetNever keeps keys for the engine's lifetime.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. The host must deliver events one
// at a time; see host.Bus.
package engine
