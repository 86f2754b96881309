package websocket

import (
	"sync"
	"time"

	"datasense-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

// Client is a middleman between the websocket connection and the registry.
type Client struct {
	conn     *websocket.Conn
	clientID string
	logger   logger.ILogger

	// Buffered channel of outbound messages.
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, clientID string, log logger.ILogger) *Client {
	return &Client{
		conn:     conn,
		clientID: clientID,
		logger:   log,
		send:     make(chan []byte, sendBufferSize),
	}
}

func (c *Client) ClientID() string {
	return c.clientID
}

// Send queues one message for delivery. Each message becomes its own frame.
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops accepting messages and lets writePump drain and exit.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Run pumps the connection until the peer goes away. It blocks, and returns
// only after the write side has stopped.
func (c *Client) Run() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	c.readPump()
	c.Close()
	<-done
}

// readPump only serves keepalive; inbound payloads are discarded.
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("ChannelClient", "Unexpected close", map[string]interface{}{
					"client_id": c.clientID,
					"error":     err.Error(),
				})
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("ChannelClient", "Write failed, closing channel", map[string]interface{}{
					"client_id": c.clientID,
					"error":     err.Error(),
				})
				c.Close()
				c.conn.Close()
				return
			}
		case <-ticker.C:
			if c.isClosed() {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				c.conn.Close()
				return
			}
		}
	}
}
