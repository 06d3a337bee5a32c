package websocket

import (
	"context"
	"encoding/json"
	"time"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one open tab listening for refresh notifications.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	id     string
	userID int64
}

// NewClient creates a client for the signed-in user's tab.
func NewClient(hub *Hub, conn *ws.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		id:     uuid.NewString(),
		userID: userID,
	}
}

// Run registers the client, greets the tab, and pumps until the connection
// closes, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.queue(NewMessage(EntitySession, "ready", c.userID, map[string]any{"client_id": c.id}))

	go c.writePump(ctx)
	c.readPump(ctx)
}

// queue enqueues msg for this tab only. It must not be called after Run
// returns.
func (c *Client) queue(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump answers app-level pings; tabs otherwise only listen.
func (c *Client) readPump(ctx context.Context) {
	for {
		var in struct {
			Type string `json:"type"`
		}
		if err := wsjson.Read(ctx, c.conn, &in); err != nil {
			if ws.CloseStatus(err) == -1 && ctx.Err() == nil {
				c.hub.logger.Debug("websocket read", "client", c.id, "error", err)
			}
			return
		}
		if in.Type == "ping" {
			c.queue(Message{Type: "pong"})
		}
	}
}

// writePump drains the send channel and pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, ws.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
