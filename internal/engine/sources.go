package engine

import "github.com/rcliao/vcwatch/internal/model"

// IdentitySource resolves identity display data.
type IdentitySource interface {
	Identity(id string) (model.Identity, bool)
}

// PresenceSource reports the current presence of an identity.
type PresenceSource interface {
	Status(id string) (model.Status, bool)
}

// VoiceSource reports the voice channel an identity is currently in, or "".
type VoiceSource interface {
	CurrentChannel(id string) string
}

// ChannelSource resolves channel display data.
type ChannelSource interface {
	Channel(id string) (model.Channel, bool)
}
