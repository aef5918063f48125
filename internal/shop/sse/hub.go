package sse

import (
	"fmt"
	"log"
	"sync"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub manages the admin dashboard's SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// PublishOrderCreated notifies dashboard clients of a new order
func (h *Hub) PublishOrderCreated(orderID, customerID, total string) {
	data := fmt.Sprintf(`{"order_id":"%s","customer_id":"%s","total":"%s"}`, orderID, customerID, total)
	h.Broadcast(Event{
		EventType: "order_created",
		Data:      data,
	})
}

// PublishOrderStatus notifies dashboard clients of an order status change
func (h *Hub) PublishOrderStatus(orderID, status string) {
	data := fmt.Sprintf(`{"order_id":"%s","status":"%s"}`, orderID, status)
	h.Broadcast(Event{
		EventType: "order_status",
		Data:      data,
	})
}
