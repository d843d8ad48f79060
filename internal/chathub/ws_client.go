package chathub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

// WebSocketClient is the gorilla/websocket Transport. Frames are JSON
// objects: {"event": ..., "data": ..., "ack": ...}.
type WebSocketClient struct {
	AnonID string
	Conn   *websocket.Conn
	Hub    *ManagerService

	send      chan Frame
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, anonID string, logger *zap.Logger) *WebSocketClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketClient{
		AnonID: anonID,
		Conn:   conn,
		Hub:    hub,
		send:   make(chan Frame, sendBuffer),
		done:   make(chan struct{}),
		logger: logger.With(zap.String("session", anonID)),
	}
}

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *WebSocketClient) Emit(event string, data any) {
	c.enqueue(Frame{Event: event, Data: data})
}

// Close stops the write pump, which closes the connection. The read pump
// then fails and reports the disconnect.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *WebSocketClient) enqueue(f Frame) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- f:
	case <-c.done:
	default:
		c.logger.Warn("send buffer full, closing connection", zap.String("event", f.Event))
		c.Close()
	}
}

func (c *WebSocketClient) replyFunc(ack *int64) func(any) {
	if ack == nil {
		return nil
	}
	id := *ack
	return func(data any) {
		c.enqueue(Frame{Event: EventAck, Data: data, Ack: &id})
	}
}

func (c *WebSocketClient) readPump() {
	reason := "transport close"
	defer func() {
		c.Hub.Disconnect(c.AnonID, c, reason)
		c.Close()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			reason = closeReason(err)
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.logger.Warn("invalid frame", zap.Error(err))
			continue
		}
		c.Hub.HandleEvent(c.AnonID, c, env, c.replyFunc(env.Ack))
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteJSON(frame); err != nil {
				c.logger.Debug("websocket write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func closeReason(err error) string {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		if ce.Text != "" {
			return fmt.Sprintf("close %d: %s", ce.Code, ce.Text)
		}
		return fmt.Sprintf("close %d", ce.Code)
	}
	return err.Error()
}
