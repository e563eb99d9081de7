package hub

import (
	"log"
	"sync"

	"festivelo/pkg/event"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the subset of the websocket connection the hub uses. An interface
// keeps the broadcast paths testable without a network socket.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type clientConn struct {
	conn   Conn
	userID int
	email  string
	mu     sync.Mutex
}

// send serializes writes on this connection. A failed write is logged and
// left alone: the connection's own read loop will notice the dead socket and
// run the disconnect path.
func (cc *clientConn) send(data []byte) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if err := cc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[HUB] send error user=%d: %v", cc.userID, err)
	}
}

// Hub tracks the set of open realtime connections and fans change events out
// to them. It holds no persisted state; after a restart clients reconnect and
// reconcile through the ordinary CRUD read path.
type Hub struct {
	mu      sync.RWMutex
	clients map[Conn]*clientConn
}

func New() *Hub {
	return &Hub{
		clients: make(map[Conn]*clientConn),
	}
}

// HandleClientConn registers the connection and runs its read loop until the
// peer goes away. Client frames carrying a recognized mutation type are
// re-broadcast verbatim to every other client; anything else is logged and
// dropped without a reply, and never takes the hub down.
func (h *Hub) HandleClientConn(c Conn, userID int, email string) {
	cc := &clientConn{conn: c, userID: userID, email: email}

	h.mu.Lock()
	h.clients[c] = cc
	h.mu.Unlock()

	log.Printf("[HUB] client connected user_id=%d total=%d", userID, h.ClientCount())

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.Close()
		log.Printf("[HUB] client disconnected user_id=%d total=%d", userID, h.ClientCount())
	}()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}

		evt, err := event.Unmarshal(raw)
		if err != nil {
			log.Printf("[HUB] dropping malformed frame from user=%d: %v", userID, err)
			continue
		}

		if evt.Type == "ping" {
			cc.send([]byte(`{"type":"pong"}`))
			continue
		}

		if !event.Mutation(evt.Type) {
			log.Printf("[HUB] dropping frame with unrecognized type %q from user=%d", evt.Type, userID)
			continue
		}

		h.broadcastRaw(raw, cc)
	}
}

// Broadcast delivers a store-originated change event to every connected
// client, the originator of the underlying mutation included.
func (h *Hub) Broadcast(evt event.Event) {
	raw, err := evt.Marshal()
	if err != nil {
		log.Printf("[HUB] broadcast marshal: %v", err)
		return
	}
	h.broadcastRaw(raw, nil)
}

// broadcastRaw sends a frame to every client except the sender (nil means no
// exclusion). Delivery is best-effort per client; one dead socket never
// aborts delivery to the rest.
func (h *Hub) broadcastRaw(raw []byte, sender *clientConn) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, cc := range h.clients {
		if cc != sender {
			cc.send(raw)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
