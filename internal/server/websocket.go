package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oduya/paygo/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The service is back-office only; cross-origin browsers are not a
	// supported client.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStream serves GET /v1/stream. Each JSON message on the socket is one
// issue request, answered in order on the same socket.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr
	logging.LogHTTPRequest(remoteAddr, r.Method, r.URL.Path, 0)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}
	logging.LogWebSocketEvent(remoteAddr, "upgraded", "")

	s.trackConn(remoteAddr, conn)
	defer func() {
		s.untrackConn(remoteAddr)
		_ = conn.Close()
		logging.LogWebSocketEvent(remoteAddr, "closed", "")
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Gorilla permits one concurrent writer per connection; the ping loop
	// and the response loop share this lock.
	var writeMu sync.Mutex

	// Ping loop keeps idle batch sessions alive
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				writeMu.Lock()
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	issued := 0
	for {
		var req issueRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Warn("WebSocket read error",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		resp, err := issue(req)

		writeMu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err != nil {
			writeErr := conn.WriteJSON(errorResponse{Error: err.Error()})
			writeMu.Unlock()
			if writeErr != nil {
				break
			}
			continue
		}
		writeErr := conn.WriteJSON(resp)
		writeMu.Unlock()
		if writeErr != nil {
			break
		}
		issued++
	}

	logging.LogWebSocketEvent(remoteAddr, "session_ended",
		fmt.Sprintf("issued=%d", issued))
}
