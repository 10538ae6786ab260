// Package host adapts raw client frames to the engine: it keeps the
// directory the engine reads from, normalizes event shapes, and delivers
// events over an in-process bus.
package host

import (
	"github.com/tidwall/gjson"

	"github.com/rcliao/vcwatch/internal/model"
)

// ParseVoiceEvent normalizes a voice-state payload into transitions.
// Accepted shapes, in order: an array of entries, an object with a
// voiceStates array, an object with a voice_state or voiceState object, or
// a bare entry carrying userId/user_id. Anything else yields nil.
func ParseVoiceEvent(raw []byte) []model.VoiceTransition {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	return parseVoice(gjson.ParseBytes(raw))
}

func parseVoice(v gjson.Result) []model.VoiceTransition {
	if v.IsArray() {
		return voiceEntries(v.Array())
	}
	if !v.IsObject() {
		return nil
	}
	if list := v.Get("voiceStates"); list.IsArray() {
		return voiceEntries(list.Array())
	}
	for _, key := range []string{"voice_state", "voiceState"} {
		if one := v.Get(key); one.IsObject() {
			return voiceEntries([]gjson.Result{one})
		}
	}
	if firstOf(v, "userId", "user_id").Exists() {
		return voiceEntries([]gjson.Result{v})
	}
	return nil
}

// voiceEntries drops entries without an identity.
func voiceEntries(list []gjson.Result) []model.VoiceTransition {
	var out []model.VoiceTransition
	for _, e := range list {
		if !e.IsObject() {
			continue
		}
		id := firstOf(e, "userId", "user_id").String()
		if id == "" {
			continue
		}
		tr := model.VoiceTransition{IdentityID: id}
		if ch := firstOf(e, "channelId", "channel_id"); ch.Type != gjson.Null && ch.String() != "" {
			tr.ChannelID = ch.String()
			tr.HasChannel = true
		}
		out = append(out, tr)
	}
	return out
}

// firstOf returns the first path of v holding a non-empty value.
func firstOf(v gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() && r.Type != gjson.Null && r.String() != "" {
			return r
		}
	}
	return gjson.Result{}
}
