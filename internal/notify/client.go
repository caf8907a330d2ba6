package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	maxReadBytes = 4096
)

// client is one authenticated WebSocket session.
type client struct {
	id           string
	userID       string
	role         string
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(*client)
}

func (c *client) start() {
	go c.writePump()
	c.readPump()
}

// readPump only drains control frames; clients never send commands.
func (c *client) readPump() {
	defer c.close()
	c.ws.SetReadLimit(maxReadBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("ws read closed", zap.String("user_id", c.userID), zap.Error(err))
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.write(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

// enqueue never blocks; a slow client loses frames instead of stalling the sender.
func (c *client) enqueue(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping ws event, buffer full", zap.String("user_id", c.userID))
	}
}

func (c *client) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}
