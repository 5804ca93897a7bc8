package server

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

// Broker is the pub/sub side of the websocket transport: it tracks live
// connections and which named destinations each one is subscribed to,
// and fans published frames out to subscribers. Writes to a single
// socket are serialized; subscriber order per destination is subscribe
// order.
type Broker struct {
	mu    sync.RWMutex
	conns map[string]*brokerConn
	subs  map[string][]*brokerConn // destination -> subscribers
}

type brokerConn struct {
	id      string
	sock    *websocket.Conn
	writeMu sync.Mutex
}

func NewBroker() *Broker {
	return &Broker{
		conns: make(map[string]*brokerConn),
		subs:  make(map[string][]*brokerConn),
	}
}

func (b *Broker) AddConn(connID string, sock *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[connID] = &brokerConn{id: connID, sock: sock}
}

// RemoveConn drops the connection and every subscription it holds.
// Unknown ids are a no-op.
func (b *Broker) RemoveConn(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conns, connID)
	for dest, subs := range b.subs {
		for i, c := range subs {
			if c.id == connID {
				b.subs[dest] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subs[dest]) == 0 {
			delete(b.subs, dest)
		}
	}
}

// Subscribe attaches the connection to a destination. It reports whether
// the subscription is new: duplicates and unknown connections return
// false so the caller does not re-deliver subscription side effects.
func (b *Broker) Subscribe(connID, destination string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	conn, ok := b.conns[connID]
	if !ok {
		return false
	}
	for _, c := range b.subs[destination] {
		if c.id == connID {
			return false
		}
	}
	b.subs[destination] = append(b.subs[destination], conn)
	return true
}

// Publish writes the frame to every subscriber of the destination. No
// subscribers means nothing happens. A failed write only logs; the
// reader loop notices the dead socket and tears the connection down.
func (b *Broker) Publish(destination string, frame []byte) {
	b.mu.RLock()
	subs := append([]*brokerConn(nil), b.subs[destination]...)
	b.mu.RUnlock()

	for _, c := range subs {
		if err := c.write(frame); err != nil {
			log.Debug().Str("conn_id", c.id).Str("destination", destination).
				Err(err).Msg("publish write failed")
		}
	}
}

// SendTo writes a frame to one connection regardless of subscriptions,
// used for direct error replies.
func (b *Broker) SendTo(connID string, frame []byte) {
	b.mu.RLock()
	conn, ok := b.conns[connID]
	b.mu.RUnlock()
	if !ok {
		return
	}
	if err := conn.write(frame); err != nil {
		log.Debug().Str("conn_id", connID).Err(err).Msg("direct write failed")
	}
}

// CloseConn closes the socket of a connection, if still present. The
// reader loop of that connection handles the resulting read error and
// runs the normal close path.
func (b *Broker) CloseConn(connID string, reason string) {
	b.mu.RLock()
	conn, ok := b.conns[connID]
	b.mu.RUnlock()
	if !ok {
		return
	}
	_ = conn.sock.Close(websocket.StatusNormalClosure, reason)
}

// CloseAll closes every live connection, used on shutdown.
func (b *Broker) CloseAll(reason string) {
	b.mu.RLock()
	conns := make([]*brokerConn, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.RUnlock()

	for _, c := range conns {
		_ = c.sock.Close(websocket.StatusGoingAway, reason)
	}
}

func (c *brokerConn) write(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return c.sock.Write(ctx, websocket.MessageText, frame)
}
