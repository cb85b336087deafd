package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/nats-io/nats.go"
)

// EventHub manages table-scoped change subscriptions and the WebSocket
// connections of dashboard clients. One NATS subscription is opened per
// table while at least one client is viewing it, and closed when the
// last viewer unsubscribes.
type EventHub struct {
	bus Bus

	// WebSocket connections
	clients   map[*EventClient]bool
	clientsMu sync.RWMutex

	// Table subscriptions (table name -> subscription)
	subscriptions   map[string]*tableSubscription
	subscriptionsMu sync.RWMutex

	// Registration channels
	register   chan *EventClient
	unregister chan *EventClient

	// Events fanned out since start
	eventsSent   uint64
	eventsSentMu sync.Mutex
}

// tableSubscription tracks one table's change-feed subscription
type tableSubscription struct {
	table     string
	natsSub   *nats.Subscription
	viewers   map[*EventClient]bool
	viewersMu sync.RWMutex
}

// subscribableTables limits what clients may listen to
var subscribableTables = map[string]bool{
	"patients":       true,
	"patient_events": true,
	"alerts":         true,
	"cameras":        true,
	"detections":     true,
	"vitals_records": true,
	"medications":    true,
	"consultations":  true,
	"reports":        true,
	// Pseudo-table for monitor heartbeats and service status pushes
	"system": true,
}

// NewEventHub creates a new event hub
func NewEventHub(bus Bus) *EventHub {
	return &EventHub{
		bus:           bus,
		clients:       make(map[*EventClient]bool),
		subscriptions: make(map[string]*tableSubscription),
		register:      make(chan *EventClient),
		unregister:    make(chan *EventClient),
	}
}

// Register adds a client to the hub
func (h *EventHub) Register(client *EventClient) {
	h.register <- client
}

// Run starts the hub's main loop
func (h *EventHub) Run() {
	log.Println("📡 Event hub started")

	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.clientsMu.Unlock()
			log.Printf("📡 Client connected: %s", client.remoteAddr)

		case client := <-h.unregister:
			h.clientsMu.Lock()
			_, known := h.clients[client]
			delete(h.clients, client)
			h.clientsMu.Unlock()
			if !known {
				continue
			}

			// Snapshot the client's tables, then drop each one;
			// unsubscribeClient takes its own locks
			client.tablesMu.Lock()
			tables := make([]string, 0, len(client.tables))
			for table := range client.tables {
				tables = append(tables, table)
			}
			client.tablesMu.Unlock()
			for _, table := range tables {
				h.unsubscribeClient(client, table)
			}

			// Safe to close once no viewer set references the client;
			// broadcastChange sends under the same viewersMu
			close(client.send)
			log.Printf("📡 Client disconnected: %s", client.remoteAddr)
		}
	}
}

// Subscribe subscribes a client to a table's change feed
func (h *EventHub) Subscribe(client *EventClient, table string) error {
	if !subscribableTables[table] {
		return fmt.Errorf("unknown table: %s", table)
	}

	h.subscriptionsMu.Lock()
	defer h.subscriptionsMu.Unlock()

	sub, exists := h.subscriptions[table]
	if !exists {
		sub = &tableSubscription{
			table:   table,
			viewers: make(map[*EventClient]bool),
		}

		natsSub, err := h.bus.Subscribe(changeSubject(table), func(msg *nats.Msg) {
			h.broadcastChange(table, msg.Data)
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s changes: %w", table, err)
		}
		sub.natsSub = natsSub

		h.subscriptions[table] = sub
		log.Printf("📡 Created change subscription for table %s", table)
	}

	sub.viewersMu.Lock()
	sub.viewers[client] = true
	sub.viewersMu.Unlock()

	client.tablesMu.Lock()
	client.tables[table] = true
	client.tablesMu.Unlock()

	log.Printf("📡 Client %s subscribed to %s", client.remoteAddr, table)
	return nil
}

// Unsubscribe removes a client from a table's change feed
func (h *EventHub) Unsubscribe(client *EventClient, table string) {
	h.unsubscribeClient(client, table)
}

// unsubscribeClient takes subscriptionsMu and the client's tablesMu
// itself; callers must hold neither.
func (h *EventHub) unsubscribeClient(client *EventClient, table string) {
	h.subscriptionsMu.Lock()
	defer h.subscriptionsMu.Unlock()

	client.tablesMu.Lock()
	delete(client.tables, table)
	client.tablesMu.Unlock()

	sub, exists := h.subscriptions[table]
	if !exists {
		return
	}

	sub.viewersMu.Lock()
	delete(sub.viewers, client)
	viewerCount := len(sub.viewers)
	sub.viewersMu.Unlock()

	// Last viewer gone, drop the NATS subscription
	if viewerCount == 0 {
		if sub.natsSub != nil {
			sub.natsSub.Unsubscribe()
		}
		delete(h.subscriptions, table)
		log.Printf("📡 Removed change subscription for table %s (no viewers)", table)
	}
}

// broadcastChange fans one change event out to every viewer of a table.
// The payload is forwarded as-is; no diffing happens here.
func (h *EventHub) broadcastChange(table string, eventData []byte) {
	h.subscriptionsMu.RLock()
	sub, exists := h.subscriptions[table]
	h.subscriptionsMu.RUnlock()

	if !exists {
		return
	}

	sub.viewersMu.RLock()
	for client := range sub.viewers {
		select {
		case client.send <- eventData:
		default:
			// Client buffer full, drop; the client resyncs on its next
			// refetch anyway
		}
	}
	viewerCount := len(sub.viewers)
	sub.viewersMu.RUnlock()

	if viewerCount > 0 {
		h.eventsSentMu.Lock()
		h.eventsSent += uint64(viewerCount)
		h.eventsSentMu.Unlock()
	}
}

// HubStats holds hub statistics
type HubStats struct {
	Clients    int      `json:"clients"`
	Tables     []string `json:"tables"`
	EventsSent uint64   `json:"eventsSent"`
}

func (h *EventHub) Stats() HubStats {
	h.clientsMu.RLock()
	clientCount := len(h.clients)
	h.clientsMu.RUnlock()

	h.subscriptionsMu.RLock()
	tables := make([]string, 0, len(h.subscriptions))
	for table := range h.subscriptions {
		tables = append(tables, table)
	}
	h.subscriptionsMu.RUnlock()

	h.eventsSentMu.Lock()
	sent := h.eventsSent
	h.eventsSentMu.Unlock()

	return HubStats{
		Clients:    clientCount,
		Tables:     tables,
		EventsSent: sent,
	}
}
