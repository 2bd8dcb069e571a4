// ABOUTME: WebSocket push of chart data on connect and after every refresh.
// ABOUTME: One writer goroutine per connection fed by a Syncer watch channel.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/sync"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what the feed pushes to clients.
type Message struct {
	Type    string           `json:"type"`
	Loading bool             `json:"loading"`
	Error   string           `json:"error,omitempty"`
	Data    models.ChartData `json:"data"`
}

func newMessage(state sync.State) Message {
	msg := Message{
		Type:    "snapshot",
		Loading: state.Loading,
		Data:    state.ChartData(),
	}
	if state.Err != nil {
		msg.Error = state.Err.Error()
	}
	return msg
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := s.syncer.Watch()
	defer cancel()

	s.log.Debug("websocket connected", "remote", c.Request.RemoteAddr)

	// The reader only drains control frames and notices disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.write(conn, newMessage(s.syncer.State())); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case state, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if err := s.write(conn, newMessage(state)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			s.log.Debug("websocket disconnected", "remote", c.Request.RemoteAddr)
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Debug("websocket write failed", "err", err)
		return err
	}
	return nil
}
