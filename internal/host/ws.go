package host

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultHandshakeTimeout is used by Stream when no timeout is given.
const DefaultHandshakeTimeout = 10 * time.Second

// Stream dials a websocket feed at url and dispatches every text message as
// a frame until the connection closes or ctx is done. A normal close or a
// cancelled context returns nil.
func (f *Feed) Stream(ctx context.Context, url string, handshake time.Duration) error {
	if handshake <= 0 {
		handshake = DefaultHandshakeTimeout
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: handshake,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to connect to feed: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	f.logger.Info("Connected to feed", zap.String("url", url))
	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("websocket read error: %w", err)
		}
		if typ != websocket.TextMessage {
			continue
		}
		f.Dispatch(ctx, msg)
	}
}
