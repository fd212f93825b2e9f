package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"phluowise-billing-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// GateMessage is pushed to a company's open dashboard tabs when its access
// state changes, so the overlay appears/disappears without a page reload.
type GateMessage struct {
	State     string   `json:"state"` // "open" or "blocked"
	Reason    string   `json:"reason,omitempty"`
	Title     string   `json:"title,omitempty"`
	Message   string   `json:"message,omitempty"`
	AmountDue *float64 `json:"amount_due,omitempty"`
}

type Hub struct {
	// Registered clients map: CompanyID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients. The Run loop is the sole owner of
	// closing a client's Send channel; senders only ever push here.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.CompanyID] = append(h.clients[client.CompanyID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"company_id": client.CompanyID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.CompanyID]; ok {
				for i, c := range clients {
					if c == client {
						// Found means not yet removed, so Send is still open.
						// A client dropped twice (slow tab, then disconnect)
						// misses this branch the second time and is never
						// double-closed.
						h.clients[client.CompanyID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.CompanyID]) == 0 {
					delete(h.clients, client.CompanyID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"company_id": client.CompanyID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendGate pushes a gate transition to one company's connected tabs, locally
// and via Redis for tabs held by other instances.
func (h *Hub) SendGate(companyID string, gate GateMessage) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "gate",
		"data": gate,
	})

	h.sendLocal(companyID, data)

	// Always publish so tabs on sibling instances transition too.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_company_id": companyID,
			"message":           json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// Broadcast sends a message to ALL connected clients, e.g. maintenance notices.
func (h *Hub) Broadcast(msgType string, data interface{}) {
	raw, _ := json.Marshal(map[string]interface{}{
		"type": msgType,
		"data": data,
	})

	h.sendAll(raw)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_company_id": "*", // Wildcard for broadcast
			"message":           json.RawMessage(raw),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// sendLocal delivers to one company's local tabs. Slow clients are collected
// under the read lock and dropped after it is released: pushing to unregister
// while holding the lock would deadlock against Run, and closing Send here
// would race Run's close.
func (h *Hub) sendLocal(companyID string, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients[companyID] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	h.dropSlow(slow)
}

// sendAll delivers to every local tab, same slow-client handling as sendLocal.
func (h *Hub) sendAll(data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	h.dropSlow(slow)
}

func (h *Hub) dropSlow(slow []*Client) {
	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"company_id": client.CompanyID})
		h.unregister <- client
	}
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to "cluster_events". When a message arrives,
	// deliver it to the target company's local tabs if we hold any.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetCompanyID string          `json:"target_company_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetCompanyID == "*" {
			h.sendAll(payload.Message)
			continue
		}
		h.sendLocal(payload.TargetCompanyID, payload.Message)
	}
}
