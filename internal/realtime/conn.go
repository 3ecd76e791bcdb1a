package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one live client connection. The registry owns its lifetime; a Room
// only holds a membership reference and never closes or constructs one.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu       sync.Mutex
	userID   string
	room     *Room
	lastSeen time.Time
}

func newConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ws:       ws,
		send:     make(chan []byte, 32),
		lastSeen: time.Now(),
	}
}

func (c *Conn) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Conn) Room() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Conn) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *Conn) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

// Registry tracks live connections and their identity bindings. All mutation
// of a Conn's identity or room association goes through here or through the
// Room that owns the membership.
type Registry struct {
	mu    sync.Mutex
	conns map[*Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: map[*Conn]struct{}{}}
}

func (r *Registry) Register(c *Conn) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	r.mu.Unlock()
}

// Identify binds a user identity to a connection. The first binding wins;
// later attempts are reported as false and leave the original binding intact.
func (r *Registry) Identify(c *Conn, userID string) bool {
	if userID == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID != "" {
		return false
	}
	c.userID = userID
	return true
}

// Deregister removes the connection and drops its room membership. Idempotent:
// network-close events race with explicit cleanup, so calling this twice is
// expected.
func (r *Registry) Deregister(c *Conn) {
	r.mu.Lock()
	if _, ok := r.conns[c]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, c)
	r.mu.Unlock()

	c.mu.Lock()
	room := c.room
	c.room = nil
	c.mu.Unlock()
	if room != nil {
		room.DropMember(c)
	}
	safeClose(c.send)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

// safeSend queues a frame for one connection without ever blocking the caller.
// A backed-up peer loses frames rather than stalling the room.
func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case ch <- msg:
	default:
	}
}
