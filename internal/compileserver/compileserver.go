// Package compileserver broadcasts compilation diagnostics to connected
// websocket clients for weakc's --watch mode (SPEC_FULL.md §2). Grounded on
// the teacher's internal/network/websocket_server.go WebSocketBroadcast
// pattern (a registry of live connections fanned out to on every
// broadcast), adapted from a general-purpose network-scanning broadcast to
// a single-purpose diagnostics feed for an editor plugin.
package compileserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"weakc/internal/diag"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Editor plugins connect from a local dev origin; weakc is a local
	// build tool, not a public service, so the origin check is permissive.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Report is one compilation's outcome, marshaled as a JSON frame to every
// connected client.
type Report struct {
	Source      string           `json:"source"`
	Diagnostics []*diag.Diagnostic `json:"diagnostics"`
	OK          bool             `json:"ok"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan *Report
}

// Server holds the registry of connected websocket clients and fans out
// Broadcast calls to all of them.
type Server struct {
	addr string

	mu      sync.Mutex
	clients map[string]*client
}

// New returns a Server that will listen on addr once Serve is called.
func New(addr string) *Server {
	return &Server{addr: addr, clients: map[string]*client{}}
}

// Serve blocks, serving the websocket upgrade endpoint at "/" until the
// process exits or the listener errors.
func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)
	return http.ListenAndServe(s.addr, mux)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("compileserver: upgrade: %v", err)
		return
	}

	c := &client{id: uuid.New().String(), conn: conn, send: make(chan *Report, 8)}
	s.register(c)
	defer s.unregister(c)

	go c.writeLoop()
	c.readLoop()
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.send)
	}
}

// Broadcast fans report out to every connected client. A client whose send
// buffer is full misses this report rather than blocking the broadcaster;
// the client itself stays registered.
func (s *Server) Broadcast(report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		select {
		case c.send <- report:
		default:
			log.Printf("compileserver: client %s send buffer full, dropping", id)
		}
	}
}

func (c *client) writeLoop() {
	for report := range c.send {
		payload, err := json.Marshal(report)
		if err != nil {
			log.Printf("compileserver: marshal report: %v", err)
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *client) readLoop() {
	// Clients never send anything meaningful; this loop only exists to
	// detect disconnects (a read error ends the connection) and to drain
	// control frames gorilla/websocket requires a reader goroutine for.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.conn.Close()
			return
		}
	}
}
