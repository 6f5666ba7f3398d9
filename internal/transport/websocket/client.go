package websocket

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

const (
	writeWait = 10 * time.Second

	// queued messages per connection before the client counts as stalled
	sendBufferSize = 256
)

// ErrSlowClient is returned when a connection's send queue is full. The
// connection is closed; its read loop then tears the session down.
var ErrSlowClient = errors.New("client is not keeping up; connection closed")

// client owns the outbound side of one socket. Only writePump writes data
// frames, so session listeners never wait on the network.
type client struct {
	conn *websocket.Conn
	send chan domain.ServerMessage
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn, buffer int) *client {
	return &client{
		conn: conn,
		send: make(chan domain.ServerMessage, buffer),
		done: make(chan struct{}),
	}
}

// stop ends writePump and closes the socket. Safe to call more than once.
func (c *client) stop() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *client) writePump(connID string) {
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[WS] Write to %s failed: %v", connID, err)
				c.stop()
				return
			}
		case <-c.done:
			return
		}
	}
}

// ConnectionManager handles active WebSocket connections thread-safely
type ConnectionManager struct {
	connections map[string]*client
	mu          sync.RWMutex // Protects the map itself
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*client),
	}
}

func (cm *ConnectionManager) AddConnection(connID string, conn *websocket.Conn) {
	c := newClient(conn, sendBufferSize)

	cm.mu.Lock()
	if old, exists := cm.connections[connID]; exists {
		old.stop()
	}
	cm.connections[connID] = c
	cm.mu.Unlock()

	go c.writePump(connID)
}

// RemoveConnectionIfMatching avoids closing a newer connection registered
// under the same id.
func (cm *ConnectionManager) RemoveConnectionIfMatching(connID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if current, exists := cm.connections[connID]; exists && current.conn == conn {
		current.stop()
		delete(cm.connections, connID)
	}
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// SendMessage queues one JSON message without blocking. A closed or unknown
// connection is not an error; a full queue drops the connection.
func (cm *ConnectionManager) SendMessage(connID string, message domain.ServerMessage) error {
	cm.mu.RLock()
	c, exists := cm.connections[connID]
	cm.mu.RUnlock()

	if !exists {
		return nil
	}

	select {
	case <-c.done:
		return nil
	default:
	}

	select {
	case c.send <- message:
		return nil
	default:
		log.Printf("[WS] Send queue full for %s, dropping %s and closing", connID, message.Type)
		c.stop()
		return ErrSlowClient
	}
}

func (cm *ConnectionManager) SendError(connID string, message string) error {
	return cm.SendMessage(connID, domain.ServerMessage{Type: "error", Message: message})
}

// CloseAll tells every client the server is going away and closes the sockets.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for connID, c := range cm.connections {
		c.conn.WriteControl(websocket.CloseMessage, closeMsg, deadline)
		c.stop()
		delete(cm.connections, connID)
	}
}
