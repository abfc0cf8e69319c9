package ws

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// Conn is the minimal surface of a live socket the manager needs. The
// real implementation wraps a gorilla connection; tests inject fakes.
type Conn interface {
	// ReadMessage blocks for the next frame payload.
	ReadMessage() ([]byte, error)

	// WriteJSON marshals v and sends it as a text frame.
	WriteJSON(v interface{}) error

	// Close tears the socket down. Safe to call more than once.
	Close() error
}

// Dialer opens socket connections. Injected so the reconnect machinery
// is testable without a network.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// GorillaDialer is the production Dialer backed by gorilla/websocket.
type GorillaDialer struct{}

// Dial opens a WebSocket connection to url.
func (GorillaDialer) Dial(ctx context.Context, url string) (Conn, error) {
	c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return gorillaConn{c: c}, nil
}

type gorillaConn struct {
	c *websocket.Conn
}

func (g gorillaConn) ReadMessage() ([]byte, error) {
	_, data, err := g.c.ReadMessage()
	return data, err
}

func (g gorillaConn) WriteJSON(v interface{}) error {
	return g.c.WriteJSON(v)
}

func (g gorillaConn) Close() error {
	return g.c.Close()
}
