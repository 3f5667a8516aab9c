package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/pkg/filter"
	"nostrd.dev/pkg/membership"
	"nostrd.dev/pkg/reconcile"
)

// writeTimeout bounds a single outbound frame write, so a stalled peer
// cannot wedge the connection's goroutine indefinitely.
const writeTimeout = 10 * time.Second

// Subscription is the per-connection record of spec.md §3: an ordered
// sequence of filters, an optional probabilistic prefilter, and the
// cancellation token bounding historical streaming.
type Subscription struct {
	ID         string
	Filters    filter.S
	Membership *membership.Filter
	cancel     context.CancelFunc
}

// negSession pairs a reconciliation codec session with its cancellation
// token, per spec.md §3.
type negSession struct {
	session *reconcile.Session
	cancel  context.CancelFunc
}

// Connection is the per-connection state of spec.md §3/§4.6.
type Connection struct {
	id     string
	server *Server
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	remote string
	req    *http.Request

	writeMu sync.Mutex

	challenge    string
	relayURL     string
	authedPubkey atomic.String

	subsMu sync.Mutex
	subs   map[string]*Subscription

	negMu sync.Mutex
	negs  map[string]*negSession
}

// Write sends a single outbound text frame, serializing concurrent writers
// from the message loop and the broadcast engine.
func (c *Connection) Write(p []byte) (n int, err error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err = c.conn.Write(ctx, websocket.MessageText, p); chk.E(err) {
		return 0, err
	}
	return len(p), nil
}

// IsAuthenticated reports whether the connection has a successfully
// AUTH'd pubkey, and returns it.
func (c *Connection) IsAuthenticated() (pubkey string, ok bool) {
	pubkey = c.authedPubkey.Load()
	return pubkey, pubkey != ""
}

// addSubscription installs sub, cancelling and replacing any existing
// subscription sharing its id, per spec.md §8's boundary behavior.
func (c *Connection) addSubscription(sub *Subscription) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if old, ok := c.subs[sub.ID]; ok {
		old.cancel()
	}
	c.subs[sub.ID] = sub
}

func (c *Connection) removeSubscription(id string) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if sub, ok := c.subs[id]; ok {
		sub.cancel()
		delete(c.subs, id)
	}
}

func (c *Connection) hasSubscription(id string) bool {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	_, ok := c.subs[id]
	return ok
}

func (c *Connection) subscriptionCount() int {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	return len(c.subs)
}

// snapshotSubscriptions returns a copy of the live subscription set, safe
// to range over without holding the lock during delivery.
func (c *Connection) snapshotSubscriptions() []*Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	out := make([]*Subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		out = append(out, sub)
	}
	return out
}

func (c *Connection) closeAllSubscriptions() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for id, sub := range c.subs {
		sub.cancel()
		delete(c.subs, id)
	}
}

func (c *Connection) setNegSession(id string, ns *negSession) {
	c.negMu.Lock()
	defer c.negMu.Unlock()
	if old, ok := c.negs[id]; ok {
		old.cancel()
	}
	c.negs[id] = ns
}

func (c *Connection) getNegSession(id string) (*negSession, bool) {
	c.negMu.Lock()
	defer c.negMu.Unlock()
	ns, ok := c.negs[id]
	return ns, ok
}

func (c *Connection) removeNegSession(id string) {
	c.negMu.Lock()
	defer c.negMu.Unlock()
	if ns, ok := c.negs[id]; ok {
		ns.cancel()
		delete(c.negs, id)
	}
}

func (c *Connection) closeAllNegSessions() {
	c.negMu.Lock()
	defer c.negMu.Unlock()
	for id, ns := range c.negs {
		ns.cancel()
		delete(c.negs, id)
	}
}

// teardown cancels every streaming operation, subscription and
// reconciliation session before the connection record is dropped, per
// spec.md §3's connection-state lifecycle.
func (c *Connection) teardown() {
	c.closeAllSubscriptions()
	c.closeAllNegSessions()
	c.cancel()
	c.server.unregister(c)
	log.D.F("%s: connection %s closed", c.remote, c.id)
}

// newConnectionID mints a unique per-connection identifier used in log
// lines to correlate events from the same socket without leaking the
// remote address across log aggregation boundaries.
func newConnectionID() string {
	return uuid.New().String()
}
