// Package app wires the protocol layer, storage engine and broadcast engine
// of spec.md §4.6/§4.7 into an HTTP/WebSocket relay façade (spec.md §2.8).
package app

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/app/config"
	"nostrd.dev/pkg/relayinfo"
	"nostrd.dev/pkg/store"
)

// Server is the relay façade of spec.md §2.8: the HTTP/WebSocket endpoint,
// the live connection registry the broadcast engine iterates, and the
// storage engine every connection shares.
type Server struct {
	Config *config.C
	Store  *store.Store
	Info   *relayinfo.T
	Ctx    context.Context

	connsMu sync.RWMutex
	conns   map[*Connection]struct{}

	// countGroup coalesces concurrent COUNT requests carrying identical
	// filters into a single store query, per spec.md §4.6's COUNT handler.
	countGroup singleflight.Group
}

// New builds a Server ready to accept connections.
func New(ctx context.Context, cfg *config.C, st *store.Store, info *relayinfo.T) *Server {
	return &Server{
		Config: cfg,
		Store:  st,
		Info:   info,
		Ctx:    ctx,
		conns:  make(map[*Connection]struct{}),
	}
}

// register adds a connection to the registry the broadcast engine iterates,
// mutated only on open/close per spec.md §5.
func (s *Server) register(c *Connection) {
	s.connsMu.Lock()
	s.conns[c] = struct{}{}
	s.connsMu.Unlock()
}

func (s *Server) unregister(c *Connection) {
	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
}

// connections returns a snapshot of the live connection set, safe to
// iterate without holding the registry lock.
func (s *Server) connections() []*Connection {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	out := make([]*Connection, 0, len(s.conns))
	for c := range s.conns {
		out = append(out, c)
	}
	return out
}

// ServeHTTP implements spec.md §6's transport contract: a WebSocket upgrade
// on the root path, the NIP-11 info document on
// Accept: application/nostr+json, a plain health check, and everything else
// out of core scope.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/health":
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	case r.Header.Get("Upgrade") == "websocket":
		s.HandleWebsocket(w, r)
	case r.Header.Get("Accept") == "application/nostr+json":
		s.HandleRelayInfo(w, r)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(s.Info.Name + "\n"))
	}
}

// HandleRelayInfo answers a NIP-11 request with the relay's info document,
// permissive CORS per spec.md §6.
func (s *Server) HandleRelayInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, s.Info); chk.E(err) {
		log.E.F("relayinfo: write failed: %v", err)
	}
}
