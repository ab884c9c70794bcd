package socket

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/basespeak/basespeak-backend/internal/logger"
)

type InboundMessage struct {
	Action  string `json:"action,omitempty"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel,omitempty"`
}

const (
	OutboundChanBuffer = 256

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Client struct {
	ID       uuid.UUID
	Conn     *websocket.Conn
	Hub      *Hub
	Log      *logger.Logger
	Outbound chan Message

	cancel context.CancelFunc
}

func NewClient(conn *websocket.Conn, hub *Hub, log *logger.Logger) *Client {
	return &Client{
		ID:       uuid.New(),
		Conn:     conn,
		Hub:      hub,
		Log:      log,
		Outbound: make(chan Message, OutboundChanBuffer),
	}
}

// Run drives both pump loops; returns once either side closes. The loops run
// on a connection-scoped context so the HTTP request context can finish while
// the WS lives on.
func (c *Client) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

func (c *Client) readLoop(ctx context.Context) {
	defer c.close()

	c.Conn.SetReadLimit(1 << 20) // 1 MiB
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return

		default:
			_, data, err := c.Conn.ReadMessage()
			if err != nil {
				if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
					c.Log.Debug("websocket read error → closing client", "error", err)
					return
				}
				continue
			}

			var inbound InboundMessage
			if err := json.Unmarshal(data, &inbound); err != nil {
				c.Log.Debug("failed to unmarshal inbound message",
					"error", err, "raw", string(data))
				continue
			}

			switch inbound.Action {
			case "subscribe":
				if inbound.Channel != "" {
					c.Hub.Subscribe(c, []string{inbound.Channel})
					c.Log.Debug("client subscribed",
						"channel", inbound.Channel, "client", c.ID)
				}
			case "unsubscribe":
				if inbound.Channel != "" {
					c.Hub.UnsubscribeFromChannel(c, inbound.Channel)
					c.Log.Debug("client unsubscribed",
						"channel", inbound.Channel, "client", c.ID)
				}
			default:
				c.Log.Debug("inbound WS message unhandled",
					"client", c.ID, "message", inbound)
			}
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.Log.Debug("writeLoop ctx done → shutdown", "client", c.ID)
			return

		case msg, ok := <-c.Outbound:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Log.Debug("outbound channel closed → shutdown", "client", c.ID)
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeJSON(msg); err != nil {
				c.Log.Warn("failed writing JSON", "client", c.ID, "error", err)
				return
			}

		case <-ticker.C: // keep-alive ping
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Log.Debug("ping error → shutdown", "client", c.ID, "error", err)
				return
			}
		}
	}
}

func (c *Client) writeJSON(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) close() {
	if c.cancel != nil {
		c.cancel()
	}
	c.Hub.Unsubscribe(c)
	_ = c.Conn.Close()
}
