// Package handlers contains the HTTP API handlers
package handlers

import (
	"github.com/Hexoro/Hexward-sub000/natsserver"
	"github.com/Hexoro/Hexward-sub000/services"
)

var (
	changeFeed *services.ChangeFeed
	eventHub   *services.EventHub
	monitor    *services.Monitor
	gptClient  *services.GPTClient
	scanner    *services.CameraScanner
	natsBus    *natsserver.EmbeddedNATS
)

// SetChangeFeed injects the change feed publisher
func SetChangeFeed(f *services.ChangeFeed) {
	changeFeed = f
}

// SetEventHub injects the WebSocket event hub
func SetEventHub(h *services.EventHub) {
	eventHub = h
}

// SetMonitor injects the monitor service
func SetMonitor(m *services.Monitor) {
	monitor = m
}

// SetGPTClient injects the GPT client
func SetGPTClient(g *services.GPTClient) {
	gptClient = g
}

// SetScanner injects the camera network scanner
func SetScanner(s *services.CameraScanner) {
	scanner = s
}

// SetNATSBus injects the embedded bus for the status page
func SetNATSBus(b *natsserver.EmbeddedNATS) {
	natsBus = b
}

// publishChange emits a change event when the feed is wired; tests run
// handlers without one
func publishChange(table, action string, row interface{}) {
	if changeFeed != nil {
		changeFeed.Publish(table, action, row)
	}
}
