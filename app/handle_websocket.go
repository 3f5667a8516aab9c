package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/pkg/auth"
	"nostrd.dev/pkg/envelopes"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait / 2
)

// HandleWebsocket upgrades the connection and runs its read loop, per
// spec.md §4.6: a fresh challenge is issued immediately, then inbound frames
// are read one at a time, each handled in its own goroutine, until the peer
// disconnects.
func (s *Server) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	remote := remoteAddr(r)
	log.T.F("%s: opening websocket connection", remote)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if chk.E(err) {
		return
	}
	conn.SetReadLimit(int64(s.Config.MaxMessageLength) * 4)
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(s.Ctx)
	challenge, err := auth.NewChallenge()
	if chk.E(err) {
		cancel()
		return
	}

	c := &Connection{
		id:        newConnectionID(),
		server:    s,
		conn:      conn,
		ctx:       ctx,
		cancel:    cancel,
		remote:    remote,
		req:       r,
		challenge: challenge,
		relayURL:  relayURLFromRequest(r),
		subs:      make(map[string]*Subscription),
		negs:      make(map[string]*negSession),
	}
	log.T.F("%s: connection %s assigned", remote, c.id)
	s.register(c)
	defer c.teardown()

	if err = (&envelopes.Auth{Challenge: challenge}).Write(c); chk.E(err) {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	go c.pingLoop(ticker)

	for {
		typ, msg, err := conn.Read(ctx)
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway,
				websocket.StatusNoStatusRcvd, websocket.StatusAbnormalClosure:
			default:
				log.D.F("%s: read error: %v", remote, err)
			}
			return
		}
		if typ != websocket.MessageText && typ != websocket.MessageBinary {
			continue
		}
		if len(msg) > s.Config.MaxMessageLength {
			chk.E((&envelopes.Notice{Message: "error: message too large"}).Write(c))
			continue
		}
		go s.handleMessage(c, msg)
	}
}

func (c *Connection) pingLoop(ticker *time.Ticker) {
	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if chk.E(err) {
				c.cancel()
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// relayURLFromRequest derives the advertised relay URL from the inbound
// request, used as the NIP-42 "relay" tag comparand.
func relayURLFromRequest(r *http.Request) string {
	scheme := "wss"
	if r.TLS == nil {
		scheme = "ws"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		if proto == "http" {
			scheme = "ws"
		} else if proto == "https" {
			scheme = "wss"
		}
	}
	host := r.Host
	if h := r.Header.Get("X-Forwarded-Host"); h != "" {
		host = h
	}
	return scheme + "://" + host + "/"
}
