package websocket

import (
	"encoding/json"
	"sync"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/pkg/logger"
)

// Client is one connected order board session. A business can have any
// number of boards and tills connected at once.
type Client struct {
	Hub        *Hub
	Conn       *Conn
	UserID     uint
	BusinessID uint
	Send       chan []byte
}

// Hub fans sale lifecycle events out to every connected client of the
// sale's business.
type Hub struct {
	// businessID -> connected clients
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *outboundEvent

	mu sync.RWMutex
}

type outboundEvent struct {
	BusinessID uint
	Payload    []byte
}

// SaleEvent is the wire format pushed to order boards.
type SaleEvent struct {
	Type string      `json:"type"` // sale.created, sale.completed, sale.cancelled
	Sale *model.Sale `json:"sale"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *outboundEvent, 1024),
	}
}

// Run processes register/unregister/broadcast events. Call once from main.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.BusinessID] = append(h.clients[client.BusinessID], client)
			h.mu.Unlock()
			logger.Info("Order board client connected", map[string]interface{}{
				"user_id":     client.UserID,
				"business_id": client.BusinessID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.BusinessID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}
				if len(newList) == 0 {
					delete(h.clients, client.BusinessID)
				} else {
					h.clients[client.BusinessID] = newList
				}
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("Order board client disconnected", map[string]interface{}{
				"user_id":     client.UserID,
				"business_id": client.BusinessID,
			})

		case event := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[event.BusinessID] {
				select {
				case client.Send <- event.Payload:
				default:
					// Send buffer full - drop the client asynchronously
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": client.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastSaleEvent pushes a sale lifecycle event to every client of the
// business. Delivery is best effort; a full broadcast queue drops the event
// rather than blocking checkout.
func (h *Hub) BroadcastSaleEvent(businessID uint, event string, sale *model.Sale) {
	payload, err := json.Marshal(SaleEvent{Type: event, Sale: sale})
	if err != nil {
		logger.Error("Failed to marshal sale event", err, nil)
		return
	}

	select {
	case h.broadcast <- &outboundEvent{BusinessID: businessID, Payload: payload}:
	default:
		logger.Warn("Broadcast channel full, sale event dropped", map[string]interface{}{
			"business_id": businessID,
			"event":       event,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ConnectedCount returns the number of clients for one business.
func (h *Hub) ConnectedCount(businessID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[businessID])
}
