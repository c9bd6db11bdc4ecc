package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeTimeout   = 10 * time.Second
	pongTimeout    = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
)

// SessionFactory builds a session for an upgraded connection. Handlers
// supply it so transport wiring stays here and domain wiring stays in
// the composition root.
type SessionFactory func(t Transport, r *http.Request) *Session

// WebsocketHandler upgrades HTTP requests to websocket sessions.
type WebsocketHandler struct {
	hub      *Hub
	factory  SessionFactory
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWebsocketHandler creates a websocket handler backed by the hub.
func NewWebsocketHandler(hub *Hub, factory SessionFactory, logger zerolog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		hub:     hub,
		factory: factory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from a separately-served frontend.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection, starts the session loop and pumps
// inbound commands until the client goes away.
func (h *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	transport := newWSTransport(conn)
	session := h.factory(transport, r)

	if !h.hub.Add(session) {
		conn.Close()
		return
	}

	go func() {
		session.Run()
		conn.Close()
	}()
	go transport.pingLoop(session.Done())

	h.readPump(conn, session)
}

func (h *WebsocketHandler) readPump(conn *websocket.Conn, session *Session) {
	defer h.hub.Remove(session.ID())

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Str("session_id", session.ID()).Msg("websocket read failed")
			}
			return
		}
		session.HandleCommand(cmd)
	}
}

// wsTransport adapts a websocket connection to the Transport interface.
// Writes are serialized; the session loop and the ping loop both write.
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	return &wsTransport{conn: conn}
}

// Send writes one event envelope as a JSON text message.
func (t *wsTransport) Send(event string, data interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return t.conn.WriteJSON(Envelope{Event: event, Data: data})
}

// pingLoop keeps the connection alive until the session ends.
func (t *wsTransport) pingLoop(done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.mu.Lock()
			t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := t.conn.WriteMessage(websocket.PingMessage, nil)
			t.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
