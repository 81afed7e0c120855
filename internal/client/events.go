package client

import (
	"context"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// websocketURL rewrites an HTTP base URL into the ws scheme for the
// events endpoint.
func websocketURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/events"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/events"
	default:
		return "ws://" + baseURL + "/events"
	}
}

// WatchEvents connects to the service event stream and invokes handler
// for every event until ctx is done or the connection closes. A clean
// close from the service side returns nil.
func (c *Client) WatchEvents(ctx context.Context, handler func(Event)) error {
	target := websocketURL(c.BaseURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return classifyTransport("DIAL /events", target, err)
	}
	defer conn.Close()

	c.logger.Debug("Event stream connected", zap.String("url", target))

	// Closing the connection is the only way to unblock a pending read
	// when the context is cancelled.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-watchDone:
		}
	}()

	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return classifyTransport("READ /events", target, err)
		}
		handler(event)
	}
}
