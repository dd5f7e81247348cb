// Package api pkg/api/ws.go

package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single websocket write. Broadcasts run on the
// coordinator's refresh path, so a client that stops reading must not be
// able to stall the poll loop; it gets dropped instead.
var writeWait = 10 * time.Second

func writeStatus(conn *websocket.Conn, payload statusResponse) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(payload)
}

// handleWS upgrades the connection and streams the composite status to the
// client after every coordinator refresh.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	s.connsMu.Lock()
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()

	// Send the current state right away so the client does not wait a
	// full poll interval for its first frame.
	if status, ok := s.status.Status(); ok {
		payload := statusResponse{Status: status, Available: s.status.Healthy()}

		s.connsMu.Lock()
		if err := writeStatus(conn, payload); err != nil {
			log.Printf("Websocket initial write failed: %v", err)
		}
		s.connsMu.Unlock()
	}

	// Drain reads to detect the peer going away.
	go func() {
		defer s.dropConn(conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcastStatus runs as a coordinator listener.
func (s *Server) broadcastStatus() {
	status, ok := s.status.Status()
	if !ok {
		return
	}

	payload := statusResponse{Status: status, Available: s.status.Healthy()}

	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	for conn := range s.conns {
		if err := writeStatus(conn, payload); err != nil {
			log.Printf("Websocket write failed, dropping client: %v", err)
			delete(s.conns, conn)

			if err := conn.Close(); err != nil {
				log.Printf("Error closing websocket: %v", err)
			}
		}
	}
}

func (s *Server) dropConn(conn *websocket.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	if _, ok := s.conns[conn]; ok {
		delete(s.conns, conn)

		if err := conn.Close(); err != nil {
			log.Printf("Error closing websocket: %v", err)
		}
	}
}
