package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/vcwatch/internal/metrics"
	"github.com/rcliao/vcwatch/internal/model"
	"github.com/rcliao/vcwatch/internal/notify"
)

// AlertTitle is the title of the co-presence modal.
const AlertTitle = "Tracked users together in VC"

// HandleVoice processes a batch of voice-state entries in order and returns
// the alerts raised. A failing entry is logged and skipped; the rest of the
// batch still runs.
func (e *Engine) HandleVoice(ctx context.Context, entries []model.VoiceTransition) []model.Alert {
	var raised []model.Alert
	for _, tr := range entries {
		alerts, err := e.handleTransition(ctx, tr)
		if err != nil {
			e.metrics.Failure()
			e.logger.Error("Voice entry failed", zap.String("identity", tr.IdentityID), zap.Error(err))
			continue
		}
		raised = append(raised, alerts...)
	}
	e.updateGauges()
	return raised
}

// handleTransition does every collaborator lookup before it mutates state,
// so a failing lookup leaves the entry's state as it was. The log append
// comes last.
func (e *Engine) handleTransition(ctx context.Context, tr model.VoiceTransition) (alerts []model.Alert, err error) {
	defer recoverInto(&err)

	id := tr.IdentityID
	if id == "" || !e.registry.IsTracked(id) {
		return nil, nil
	}

	newCh := tr.ChannelID
	if !tr.HasChannel {
		newCh = e.voice.CurrentChannel(id)
	}
	oldCh, known := e.lastChannel[id]
	if newCh == oldCh {
		if !known {
			// First observation is "not in a channel": nothing to log, but
			// state from an earlier tracking period still has to go.
			e.sweep(id)
			e.lastChannel[id] = ""
		}
		return nil, nil
	}

	name := e.displayName(id)
	var line, kind string
	switch {
	case oldCh == "":
		kind = metrics.KindJoin
		line = fmt.Sprintf("%s joined VC \"%s\"", name, e.channelName(newCh))
	case newCh == "":
		kind = metrics.KindLeave
		line = fmt.Sprintf("%s left VC \"%s\"", name, e.channelName(oldCh))
	default:
		kind = metrics.KindMove
		line = fmt.Sprintf("%s moved VC \"%s\" -> \"%s\"", name, e.channelName(oldCh), e.channelName(newCh))
	}

	if !known {
		e.sweep(id)
	}
	e.lastChannel[id] = newCh
	if oldCh != "" && e.policy == ResetSession {
		e.alerts.Release(oldCh, id)
	}
	e.occupancy.Move(id, oldCh, newCh)

	e.append(ctx, id, line)
	e.metrics.Transition(kind)

	if newCh == "" {
		return nil, nil
	}
	return e.detectPairs(ctx, newCh), nil
}

// sweep drops occupancy and alert keys left over from an earlier tracking
// period of id.
func (e *Engine) sweep(id string) {
	if stale := e.occupancy.Evict(id); len(stale) > 0 {
		e.logger.Debug("Evicted stale occupancy", zap.String("identity", id), zap.Strings("channels", stale))
	}
	e.alerts.ReleaseIdentity(id)
}

// detectPairs raises an alert for every open-able pair of tracked identities
// in channel.
func (e *Engine) detectPairs(ctx context.Context, channel string) []model.Alert {
	occupants := e.occupancy.Occupants(channel)
	if len(occupants) < 2 {
		return nil
	}

	ch := model.Channel{ID: channel, Name: e.channelName(channel)}
	idents := make(map[string]model.Identity, len(occupants))
	for _, id := range occupants {
		if e.registry.IsTracked(id) {
			idents[id] = model.Identity{ID: id, DisplayName: e.displayName(id)}
		}
	}

	var raised []model.Alert
	for i := 0; i < len(occupants); i++ {
		for j := i + 1; j < len(occupants); j++ {
			a, aok := idents[occupants[i]]
			b, bok := idents[occupants[j]]
			if !aok || !bok {
				continue
			}
			if !e.alerts.ShouldAlert(channel, a.ID, b.ID) {
				continue
			}

			e.append(ctx, a.ID, fmt.Sprintf("%s is in VC \"%s\" with %s", a.DisplayName, ch.Name, b.DisplayName))
			e.append(ctx, b.ID, fmt.Sprintf("%s is in VC \"%s\" with %s", b.DisplayName, ch.Name, a.DisplayName))

			e.notifier.Modal(ctx, notify.Modal{
				Title: AlertTitle,
				Lines: []string{
					"Alert: tracked users are in the same voice channel.",
					fmt.Sprintf("%s and %s are in VC \"%s\".", a.DisplayName, b.DisplayName, ch.Name),
					"A log entry was added for both users.",
				},
				Danger: true,
			})
			e.metrics.Alert()
			e.logger.Info("Tracked identities share a voice channel",
				zap.String("channel", channel),
				zap.String("a", a.ID),
				zap.String("b", b.ID),
			)

			raised = append(raised, model.Alert{Channel: ch, A: a, B: b})
		}
	}
	return raised
}
