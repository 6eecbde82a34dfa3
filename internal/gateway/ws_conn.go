package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eleven-am/interview-backend/internal/transport"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSConnection adapts a browser websocket to the transport contract. Binary
// frames are candidate audio, text frames are control messages. Pong replies
// feed the liveness callback.
type WSConnection struct {
	ws       *websocket.Conn
	logger   *slog.Logger
	send     chan transport.ServerEvent
	messages chan transport.ClientEnvelope
	audio    chan []byte
	onPong   func()
	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
}

func NewWSConnection(ws *websocket.Conn, sessionID string, onPong func(), logger *slog.Logger) *WSConnection {
	return &WSConnection{
		ws:       ws,
		logger:   logger.With("session_id", sessionID),
		send:     make(chan transport.ServerEvent, 128),
		messages: make(chan transport.ClientEnvelope, 32),
		audio:    make(chan []byte, 256),
		onPong:   onPong,
		done:     make(chan struct{}),
	}
}

func (c *WSConnection) Send(_ context.Context, evt transport.ServerEvent) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	select {
	case c.send <- evt:
		return nil
	default:
		c.logger.Warn("send buffer full, dropping event", "type", evt.Type)
		return nil
	}
}

func (c *WSConnection) Messages() <-chan transport.ClientEnvelope {
	return c.messages
}

func (c *WSConnection) AudioIn() <-chan []byte {
	return c.audio
}

func (c *WSConnection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

func (c *WSConnection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	close(c.send)
	return c.ws.Close()
}

func (c *WSConnection) readPump(ctx context.Context) {
	defer func() {
		c.Close()
		close(c.audio)
		close(c.messages)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		if c.onPong != nil {
			c.onPong()
		}
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		msgType, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			frame := make([]byte, len(message))
			copy(frame, message)
			select {
			case c.audio <- frame:
			case <-ctx.Done():
				return
			default:
				// Audio is real-time; a stalled consumer drops frames
				// rather than delaying newer ones.
			}

		case websocket.TextMessage:
			envelope, err := transport.ParseControl(message)
			if err != nil {
				c.logger.Warn("unparseable control message", "error", err)
				continue
			}
			select {
			case c.messages <- envelope:
			case <-ctx.Done():
				return
			default:
				c.logger.Warn("control buffer full, dropping message", "type", envelope.Type)
			}
		}
	}
}

func (c *WSConnection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(evt)
			if err != nil {
				c.logger.Error("failed to marshal event", "error", err)
				continue
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
