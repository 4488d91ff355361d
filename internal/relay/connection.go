package relay

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nostr-rly/relay/internal/bus"
	"github.com/nostr-rly/relay/internal/wire"
)

// Connection multiplexes one WebSocket against the broadcast bus: a reader
// goroutine pumps inbound frames into a channel, and a single loop selects
// over that channel and the bus subscription and performs every write
// itself, so writes never interleave and no lock is held across sends.
type Connection struct {
	conn    *websocket.Conn
	handler *Handler
	subs    *SubscriptionManager
	sub     *bus.Subscriber
	log     zerolog.Logger
}

// NewConnection wires a freshly upgraded WebSocket to the shared handler
// and bus.
func NewConnection(conn *websocket.Conn, handler *Handler, b *bus.Bus, log zerolog.Logger) *Connection {
	return &Connection{
		conn:    conn,
		handler: handler,
		subs:    NewSubscriptionManager(),
		sub:     b.Subscribe(),
		log:     log,
	}
}

// Run drives the connection until the client disconnects, the WebSocket
// errors, or the bus closes. It never returns an error: all failures just
// end this connection's loop without affecting any other connection.
func (c *Connection) Run() {
	defer c.handler.Bus.Unsubscribe(c.sub)
	defer c.conn.Close()

	inbound := make(chan []byte)
	done := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go c.readLoop(inbound, done, stop)

	for {
		select {
		case msg, ok := <-inbound:
			if !ok {
				return
			}
			for _, response := range c.handler.HandleMessage(msg, c.subs) {
				if err := c.write(response); err != nil {
					return
				}
			}

		case event, ok := <-c.sub.Events():
			if !ok {
				// Bus closed or we were unsubscribed.
				return
			}
			if lagged := c.sub.TakeLagged(); lagged > 0 {
				c.log.Warn().Int64("skipped", lagged).Msg("broadcast receiver lagged")
			}
			for _, subID := range c.subs.Matching(event) {
				if err := c.write(wire.Event(subID, event)); err != nil {
					return
				}
			}

		case <-done:
			return
		}
	}
}

// readLoop pumps WebSocket text frames into inbound until the connection
// closes or errors, then closes done. It runs on its own goroutine because
// gorilla/websocket's ReadMessage blocks and must not stall the bus branch
// of the select above.
func (c *Connection) readLoop(inbound chan<- []byte, done chan<- struct{}, stop <-chan struct{}) {
	defer close(done)
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		select {
		case inbound <- data:
		case <-stop:
			return
		}
	}
}

func (c *Connection) write(payload string) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(payload))
}
