// ============================================================================
// WEBSOCKET HUB - live-доставка уведомлений
// ============================================================================
//
// Клиент подключается к /ws и в течение authTimeout присылает {"token": "<JWT>"}.
// После аутентификации Hub держит соединение и доставляет уведомления
// конкретному пользователю (SendToUserJSON) или всем админам (SendToRoleJSON).
//
//   Client ──handshake──► ServeWS ──add──► clients map
//                                             │
//   NotificationSink ──SendToUserJSON──► client.send ──writePump──► Client
//
// Hub не хранит историю: если пользователь оффлайн, уведомление остается
// только в таблице notifications.
// ============================================================================

package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	authTimeout    = 5 * time.Second
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AuthFunc проверяет токен и возвращает userID и роль
type AuthFunc func(token string) (userID, role string, err error)

type Client struct {
	ID     string
	UserID string
	Role   string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

type Hub struct {
	clients  map[string]*Client
	mu       sync.RWMutex
	authFunc AuthFunc
	log      *logger.Logger
}

func NewHub(authFunc AuthFunc, log *logger.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		authFunc: authFunc,
		log:      log,
	}
}

// Run держит hub до отмены ctx, затем закрывает все соединения
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
	h.mu.Unlock()
	h.log.Info(logger.Entry{Action: "hub_stopped", Message: "websocket hub stopped"})
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	h.log.Debug(logger.Entry{
		Action:  "client_registered",
		Message: client.ID,
		Additional: map[string]any{
			"user_id": client.UserID,
			"role":    client.Role,
		},
	})
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.send)
		h.log.Debug(logger.Entry{Action: "client_unregistered", Message: client.ID})
	}
}

// deliver кладет сообщение в буфер клиентов, прошедших фильтр; возвращает число получателей
func (h *Hub) deliver(match func(*Client) bool, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.send <- message:
			n++
		default:
			h.log.Warn(logger.Entry{
				Action:  "ws_send_buffer_full",
				Message: client.ID,
				Additional: map[string]any{
					"user_id": client.UserID,
				},
			})
		}
	}
	return n
}

// SendToUserJSON отправляет JSON всем соединениям пользователя
func (h *Hub) SendToUserJSON(userID string, data any) (int, error) {
	msg, err := json.Marshal(data)
	if err != nil {
		return 0, err
	}
	return h.deliver(func(c *Client) bool { return c.UserID == userID }, msg), nil
}

// SendToRoleJSON отправляет JSON всем соединениям с ролью
func (h *Hub) SendToRoleJSON(role string, data any) (int, error) {
	msg, err := json.Marshal(data)
	if err != nil {
		return 0, err
	}
	return h.deliver(func(c *Client) bool { return c.Role == role }, msg), nil
}

// IsUserConnected — есть ли у пользователя активное соединение
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// ServeWS — HTTP → WebSocket upgrade + аутентификация первым сообщением
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(logger.Entry{
			Action:  "ws_upgrade_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(authTimeout))

	var authMsg struct {
		Token string `json:"token"`
	}
	if err := conn.ReadJSON(&authMsg); err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseProtocolError, "auth timeout"))
		_ = conn.Close()
		h.log.Warn(logger.Entry{Action: "ws_auth_failed", Message: "no auth message received"})
		return
	}

	userID, role, err := h.authFunc(authMsg.Token)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"error": "invalid token"})
		_ = conn.Close()
		h.log.Warn(logger.Entry{Action: "ws_auth_invalid_token", Message: err.Error()})
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Role:   role,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	_ = conn.WriteJSON(map[string]string{"status": "authenticated", "user_id": userID})

	h.add(client)
	go client.writePump()
	go client.readPump()
}

// readPump нужен только для pong и детекта закрытия; входящие сообщения игнорируются
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn(logger.Entry{
					Action:  "ws_read_error",
					Message: c.ID,
					Error:   &logger.ErrObj{Msg: err.Error()},
				})
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
