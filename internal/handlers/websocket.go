package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"onchain-teller-backend/internal/models"
	"onchain-teller-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler pushes every republished DisplayState to the subscribed
// clients of the owning account.
type WebSocketHandler struct {
	state *services.DisplayStore
	hub   *WebSocketHub
}

type WebSocketHub struct {
	clients    map[string]map[*websocket.Conn]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *StateMessage
}

type Client struct {
	Account string
	Conn    *websocket.Conn
}

type StateMessage struct {
	Type    string              `json:"type"`
	Account string              `json:"account,omitempty"`
	State   models.DisplayState `json:"state"`
}

func NewWebSocketHandler() *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]map[*websocket.Conn]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *StateMessage, 100),
	}

	go hub.run()

	return &WebSocketHandler{hub: hub}
}

// SetDisplayStore wires the store the handler snapshots for fresh
// subscribers. Set once at startup; the store itself broadcasts through
// this handler.
func (h *WebSocketHandler) SetDisplayStore(state *services.DisplayStore) {
	h.state = state
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	account := c.GetString("account")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		Account: account,
		Conn:    conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendState(account)

	for {
		var msg StateMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// sendState pushes the current snapshot so a fresh subscriber is not blank
// until the next operation.
func (h *WebSocketHandler) sendState(account string) {
	if h.state == nil {
		return
	}
	h.hub.broadcast <- &StateMessage{
		Type:    "STATE",
		Account: account,
		State:   h.state.Snapshot(),
	}
}

// BroadcastDisplayState implements services.Broadcaster.
func (h *WebSocketHandler) BroadcastDisplayState(account string, state models.DisplayState) {
	select {
	case h.hub.broadcast <- &StateMessage{Type: "STATE", Account: account, State: state}:
	default:
		log.Printf("WebSocket broadcast queue full, dropping update for %s", account)
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			if hub.clients[client.Account] == nil {
				hub.clients[client.Account] = make(map[*websocket.Conn]bool)
			}
			hub.clients[client.Account][client.Conn] = true

		case client := <-hub.unregister:
			if conns, ok := hub.clients[client.Account]; ok {
				delete(conns, client.Conn)
				if len(conns) == 0 {
					delete(hub.clients, client.Account)
				}
			}

		case msg := <-hub.broadcast:
			for conn := range hub.clients[msg.Account] {
				if err := conn.WriteJSON(msg); err != nil {
					conn.Close()
					delete(hub.clients[msg.Account], conn)
				}
			}
		}
	}
}
