package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"heic-readyd/internal/config"
)

// CommandServer exposes the controller over a loopback HTTP+WebSocket
// transport for the external tray UI described in §6: get_config,
// update_config, get_recent_logs, and toggle_pause as HTTP endpoints, plus a
// /ws stream of Notification pushes. Modeled directly on the turso
// dashboard's WebSocket server, with task/dep messages replaced by the
// daemon's own notification types.
type CommandServer struct {
	controller *Controller
	addr       string
	listener   net.Listener
	server     *http.Server

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]bool

	broadcast chan Notification

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCommandServer builds a server bound to addr, e.g. "127.0.0.1:8787".
// Passing a port of 0 (e.g. "127.0.0.1:0") picks an ephemeral port, useful
// for tests.
func NewCommandServer(controller *Controller, addr string) *CommandServer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &CommandServer{
		controller: controller,
		addr:       addr,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Notification, 100),
		ctx:        ctx,
		cancel:     cancel,
	}
	controller.SetNotifier(s.Broadcast)
	return s
}

// Start begins listening and serving. Addr() is only meaningful after Start
// returns successfully.
func (s *CommandServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("daemon: listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/config", s.handleConfig)
	mux.HandleFunc("/logs", s.handleLogs)
	mux.HandleFunc("/pause", s.handlePause)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			controllerLog(s.controller, "command server error", err)
		}
	}()

	return nil
}

// Addr returns the address the server is listening on.
func (s *CommandServer) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down, closing every open WebSocket
// connection first.
func (s *CommandServer) Stop() error {
	s.cancel()

	s.clientsMu.Lock()
	for conn := range s.clients {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("daemon: command server shutdown: %w", err)
	}
	s.wg.Wait()
	return nil
}

// Broadcast pushes a notification to every connected client, dropping it if
// the broadcast channel is full rather than blocking the caller.
func (s *CommandServer) Broadcast(n Notification) {
	select {
	case s.broadcast <- n:
	case <-s.ctx.Done():
	default:
	}
}

func (s *CommandServer) broadcastLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case n := <-s.broadcast:
			data, err := json.Marshal(n)
			if err != nil {
				continue
			}
			s.clientsMu.RLock()
			conns := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				conns = append(conns, conn)
			}
			s.clientsMu.RUnlock()

			for _, conn := range conns {
				writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(writeCtx, websocket.MessageText, data)
				cancel()
				if err != nil {
					s.removeClient(conn)
				}
			}
		}
	}
}

func (s *CommandServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()

	go s.readLoop(conn)
}

func (s *CommandServer) readLoop(conn *websocket.Conn) {
	defer s.removeClient(conn)
	for {
		if _, _, err := conn.Read(s.ctx); err != nil {
			return
		}
	}
}

func (s *CommandServer) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	_, exists := s.clients[conn]
	delete(s.clients, conn)
	s.clientsMu.Unlock()
	if exists {
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

func (s *CommandServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"state":      string(s.controller.State()),
		"queue_size": s.controller.Queue().Len(),
	})
}

func (s *CommandServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.controller.Store().Snapshot())
	case http.MethodPut, http.MethodPost:
		var cfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		applied, warning, err := s.controller.Store().Replace(cfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, map[string]any{"config": applied, "warning": warning})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *CommandServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.controller.Log().Recent())
}

func (s *CommandServer) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg := s.controller.Store().Snapshot()
	cfg.Paused = !cfg.Paused
	applied, _, err := s.controller.Store().Replace(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, applied)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func controllerLog(c *Controller, msg string, err error) {
	if c == nil || c.logger == nil {
		return
	}
	c.logger.Warn(msg, "error", err)
}
