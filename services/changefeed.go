// Package services provides business logic services
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// ChangeEvent is a row-level change notification. Row always carries the
// full changed record; subscribers are expected to refetch, not patch.
type ChangeEvent struct {
	Table     string      `json:"table"`
	Action    string      `json:"action"` // insert, update, delete
	Row       interface{} `json:"row"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Bus is the slice of the embedded NATS wrapper the feed and hub use.
// Going through it keeps the bus publish/drop counters honest.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error)
}

// ChangeFeed publishes change events onto the internal NATS bus under
// changes.<table> subjects. The event hub fans them out to WebSocket
// subscribers.
type ChangeFeed struct {
	bus Bus
}

// NewChangeFeed creates a change feed publisher
func NewChangeFeed(bus Bus) *ChangeFeed {
	return &ChangeFeed{bus: bus}
}

// Publish emits a change event for one table. Failures are logged and
// dropped; a missed notification only delays the next client refetch.
func (f *ChangeFeed) Publish(table, action string, row interface{}) {
	event := ChangeEvent{
		Table:     table,
		Action:    action,
		Row:       row,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ Failed to encode change event for %s: %v", table, err)
		return
	}

	if err := f.bus.Publish(changeSubject(table), data); err != nil {
		log.Printf("⚠️ Failed to publish change event for %s: %v", table, err)
	}
}

func changeSubject(table string) string {
	return fmt.Sprintf("changes.%s", table)
}
