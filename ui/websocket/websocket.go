package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/mervel/storefront/infrastructure/valkey"
	orders "github.com/mervel/storefront/orders/domain"
)

const (
	CodeFetchRecent = "FETCH_RECENT_ORDERS"
	CodeRecent      = "RECENT_ORDERS"

	broadcastChannel = "ws_orders"
)

type BroadcastMessage struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Result   any    `json:"result"`
	SenderID string `json:"sender_id,omitempty"`
}

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// RecentOrders answers FETCH_RECENT_ORDERS requests.
type RecentOrders interface {
	Recent(ctx context.Context) ([]*orders.Order, error)
}

type direct struct {
	conn    Conn
	message BroadcastMessage
}

// Hub owns the admin feed connections. Every write happens on the Run goroutine.
type Hub struct {
	clients    map[Conn]struct{}
	register   chan Conn
	unregister chan Conn
	broadcast  chan BroadcastMessage
	direct     chan direct
	done       chan struct{}
	connected  atomic.Int64

	vkClient *valkey.Client
	localID  string
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Conn]struct{}),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		broadcast:  make(chan BroadcastMessage),
		direct:     make(chan direct),
		done:       make(chan struct{}),
		localID:    uuid.NewString(),
	}
}

// SetValkeyClient initializes the distributed broadcast system
func (h *Hub) SetValkeyClient(client *valkey.Client, serverID string) {
	h.vkClient = client
	if serverID != "" {
		h.localID = serverID
	}
}

// Connected reports how many local admin connections are open.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

func (h *Hub) Register(conn Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// PublishOrderEvent forwards an order change to every admin connection.
func (h *Hub) PublishOrderEvent(ctx context.Context, evt orders.Event) error {
	msg := BroadcastMessage{
		Code:    "ORDER_" + string(evt.Type),
		Message: "Order " + string(evt.Type),
		Result:  evt.Order,
	}
	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) handleRegister(conn Conn) {
	h.clients[conn] = struct{}{}
	h.connected.Store(int64(len(h.clients)))
	logrus.Debug("[WS] Connection registered")
}

func (h *Hub) handleUnregister(conn Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	h.connected.Store(int64(len(h.clients)))
	logrus.Debug("[WS] Connection unregistered")
}

func (h *Hub) write(conn Conn, message BroadcastMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logrus.Errorf("[WS] Write error: %v", err)
		h.closeConnection(conn)
	}
}

func (h *Hub) broadcastToLocal(message BroadcastMessage) {
	message.SenderID = ""
	for conn := range h.clients {
		h.write(conn, message)
	}
}

func (h *Hub) publishToValkey(ctx context.Context, message BroadcastMessage) {
	// Attach local ID as sender
	message.SenderID = h.localID

	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	if err := h.vkClient.Publish(ctx, broadcastChannel, string(data)); err != nil {
		logrus.Errorf("[WS] Failed to publish to Valkey: %v", err)
	}
}

func (h *Hub) startValkeySubscriber(ctx context.Context) {
	logrus.Info("[WS] Starting Valkey Pub/Sub subscriber for distributed events")
	go func() {
		err := h.vkClient.Subscribe(ctx, broadcastChannel, func(raw string) {
			var msg BroadcastMessage
			if err := json.Unmarshal([]byte(raw), &msg); err != nil {
				return
			}
			// Avoid loops: ignore messages sent by this same instance
			if msg.SenderID == h.localID {
				return
			}
			select {
			case h.broadcast <- msg:
			case <-ctx.Done():
			}
		})
		if err != nil && ctx.Err() == nil {
			logrus.Errorf("[WS] Valkey subscriber failed: %v", err)
		}
	}()
}

func (h *Hub) closeConnection(conn Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	h.handleUnregister(conn)
}

// Run processes hub events until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	if h.vkClient != nil {
		h.startValkeySubscriber(ctx)
	}

	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				h.closeConnection(conn)
			}
			return

		case conn := <-h.register:
			h.handleRegister(conn)

		case conn := <-h.unregister:
			h.handleUnregister(conn)

		case d := <-h.direct:
			if _, ok := h.clients[d.conn]; ok {
				h.write(d.conn, d.message)
			}

		case message := <-h.broadcast:
			local := message.SenderID == ""
			// 1. Send to local clients immediately
			h.broadcastToLocal(message)

			// 2. Propagate local events to other servers
			if local && h.vkClient != nil {
				h.publishToValkey(ctx, message)
			}
		}
	}
}

// handleMessage answers a client request on the connection that sent it.
func (h *Hub) handleMessage(ctx context.Context, conn Conn, raw []byte, recent RecentOrders) {
	var messageData BroadcastMessage
	if err := json.Unmarshal(raw, &messageData); err != nil {
		logrus.Debugf("[WS] Unmarshal error: %v", err)
		return
	}
	if messageData.Code != CodeFetchRecent || recent == nil {
		return
	}

	list, err := recent.Recent(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[WS] Failed to load recent orders")
		return
	}
	select {
	case h.direct <- direct{conn: conn, message: BroadcastMessage{Code: CodeRecent, Message: "Recent orders", Result: list}}:
	case <-h.done:
	case <-ctx.Done():
	}
}

// RegisterRoutes mounts the feed at /ws on an already authenticated router.
func (h *Hub) RegisterRoutes(app fiber.Router, recent RecentOrders) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		defer func() {
			h.Unregister(conn)
			_ = conn.Close()
		}()

		h.Register(conn)

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Debugf("[WS] Read error: %v", err)
				}
				return
			}
			if messageType != websocket.TextMessage {
				logrus.Debugf("[WS] Unsupported message type: %d", messageType)
				continue
			}
			h.handleMessage(context.Background(), conn, message, recent)
		}
	}))
}
