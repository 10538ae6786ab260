package host

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/rcliao/vcwatch/internal/metrics"
	"github.com/rcliao/vcwatch/internal/model"
)

// Frame types understood by the feed.
const (
	FrameUser     = "USER_UPDATE"
	FrameChannel  = "CHANNEL_UPDATE"
	FramePresence = "PRESENCE_UPDATE"
)

// maxFrameSize bounds a single replayed line.
const maxFrameSize = 1 << 20

// Feed decodes client frames of the form {"t": TYPE, "d": payload}, keeps
// the directory current and publishes normalized events on the bus.
type Feed struct {
	dir     *Directory
	bus     *Bus
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewFeed creates a Feed. logger and m may be nil.
func NewFeed(dir *Directory, bus *Bus, logger *zap.Logger, m *metrics.Metrics) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{dir: dir, bus: bus, logger: logger.Named("feed"), metrics: m}
}

// Dispatch handles one frame. Malformed and unknown frames are ignored.
func (f *Feed) Dispatch(ctx context.Context, frame []byte) {
	if !gjson.ValidBytes(frame) {
		f.logger.Debug("Ignoring malformed frame", zap.ByteString("frame", frame))
		return
	}
	env := gjson.ParseBytes(frame)
	typ := env.Get("t").String()
	d := env.Get("d")

	switch typ {
	case FrameUser:
		id := d.Get("id").String()
		if id == "" {
			return
		}
		f.dir.PutIdentity(model.Identity{ID: id, DisplayName: d.Get("username").String()})
	case FrameChannel:
		id := d.Get("id").String()
		if id == "" {
			return
		}
		f.dir.PutChannel(model.Channel{ID: id, Name: d.Get("name").String()})
	case FramePresence:
		id := firstOf(d, "user_id", "userId", "user.id").String()
		if id == "" {
			return
		}
		f.dir.SetStatus(id, model.Status(d.Get("status").String()))
		f.publish(ctx, Event{Topic: TopicPresence})
	case TopicVoiceState, TopicVoiceStates:
		trs := parseVoice(d)
		for _, tr := range trs {
			f.dir.SetVoice(tr.IdentityID, tr.ChannelID)
		}
		f.publish(ctx, Event{Topic: typ, Voice: trs})
	default:
		f.logger.Debug("Ignoring frame", zap.String("type", typ))
	}
}

func (f *Feed) publish(ctx context.Context, ev Event) {
	f.metrics.Event(ev.Topic)
	f.bus.Publish(ctx, ev)
}

// Replay dispatches newline-delimited frames from r until EOF or ctx is done.
// Blank lines are skipped. Reading happens on its own goroutine so an idle
// reader cannot hold Replay past cancellation; that goroutine exits once r
// returns.
func (f *Feed) Replay(ctx context.Context, r io.Reader) error {
	lines := make(chan []byte)
	done := make(chan struct{})
	defer close(done)

	var scanErr error
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		scanErr = sc.Err()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if scanErr != nil {
					return fmt.Errorf("read feed: %w", scanErr)
				}
				return nil
			}
			if len(line) == 0 {
				continue
			}
			f.Dispatch(ctx, line)
		}
	}
}
