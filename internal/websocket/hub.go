package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type chatService interface {
	Send(ctx context.Context, userID uuid.UUID, req models.ChatRequest) (*models.ChatResponse, error)
}

// Hub upgrades authenticated connections and runs the chat request/reply
// loop over each one: an inbound {message, model} frame produces the same
// generate-and-persist flow as POST /api/chat.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
	chatService chatService
	jwt         *middleware.JWTAuth
}

func NewHub(chat chatService, jwt *middleware.JWTAuth) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*websocket.Conn),
		chatService: chat,
		jwt:         jwt,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, _, err := h.jwt.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(userID, conn)

	go h.readLoop(userID, conn)
}

// readLoop handles one connection. The loop is the only writer for its
// connection, so frames go out in request order.
func (h *Hub) readLoop(userID uuid.UUID, conn *websocket.Conn) {
	defer h.unregisterConnection(userID, conn)

	for {
		var msg models.WSChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.Message == "" {
			conn.WriteJSON(models.WSError{Error: "Message is required"})
			continue
		}

		resp, err := h.chatService.Send(context.Background(), userID, models.ChatRequest{
			Message: msg.Message,
			Model:   msg.Model,
		})
		if err != nil {
			log.Printf("WebSocket chat failed for user %s: %v", userID, err)
			conn.WriteJSON(models.WSError{Error: "Failed to get AI response"})
			continue
		}

		if err := conn.WriteJSON(models.WSChatResponse{
			Response:  resp.Response,
			Model:     resp.Model,
			Timestamp: resp.Timestamp,
		}); err != nil {
			return
		}
	}
}

func (h *Hub) registerConnection(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[userID] = append(h.connections[userID], conn)
	log.Printf("WebSocket connected: user %s (total: %d)", userID, len(h.connections[userID]))
}

func (h *Hub) unregisterConnection(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[userID]
	for i, c := range conns {
		if c == conn {
			h.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[userID]) == 0 {
		delete(h.connections, userID)
	}

	log.Printf("WebSocket disconnected: user %s", userID)
}
