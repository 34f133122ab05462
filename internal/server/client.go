package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/orbwalk/internal/core/observability/log"
)

const maxMessageSize = 4096

// client is one websocket viewer. Frames are queued on send and written by
// writeLoop; a client that falls behind loses frames rather than stalling the
// tick loop.
type client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	writeMu sync.Mutex
	timeout time.Duration
	closed  int32
	done    chan struct{}
	logger  log.Log
}

func newClient(conn *websocket.Conn, buffer int, timeout time.Duration, logger log.Log) *client {
	if buffer < 1 {
		buffer = 1
	}
	id := uuid.New().String()
	return &client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, buffer),
		timeout: timeout,
		done:    make(chan struct{}),
		logger:  logger.With(log.String("client_id", id)),
	}
}

// enqueue offers a payload without blocking. It reports false when the
// buffer is full or the client is gone.
func (c *client) enqueue(payload []byte) bool {
	if atomic.LoadInt32(&c.closed) == 1 {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *client) sendMessage(msg ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to encode message")
	}
	if !c.enqueue(payload) {
		return ErrClientClosed
	}
	return nil
}

func (c *client) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return errors.Wrap(err, "failed to set write deadline")
		}
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return errors.Wrap(err, "failed to write message")
	}
	return nil
}

func (c *client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			if err := c.write(payload); err != nil {
				c.logger.Debug("Write failed", log.Error(err))
				c.close()
				return
			}
		}
	}
}

// readLoop decodes client messages and hands them to dispatch until the
// connection fails.
func (c *client) readLoop(dispatch func(*client, ClientMessage)) {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("Read failed", log.Error(err))
			}
			return
		}
		msg, err := decodeClientMessage(raw)
		if err != nil {
			_ = c.sendMessage(ServerMessage{Type: MessageError, Error: err.Error()})
			continue
		}
		dispatch(c, msg)
	}
}

func (c *client) close() {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}
	close(c.done)
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	_ = c.conn.Close()
}
