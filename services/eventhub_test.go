package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Hexoro/Hexward-sub000/natsserver"
)

func startTestBus(t *testing.T) *natsserver.EmbeddedNATS {
	t.Helper()
	ns, err := natsserver.New(natsserver.Config{Port: -1})
	if err != nil {
		t.Fatalf("Failed to start embedded NATS: %v", err)
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestChangeEventReachesSubscriber(t *testing.T) {
	ns := startTestBus(t)

	hub := NewEventHub(ns)
	go hub.Run()

	client := NewEventClient(hub, nil, "user-1", "test")
	hub.Register(client)

	if err := hub.Subscribe(client, "alerts"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	feed := NewChangeFeed(ns)
	feed.Publish("alerts", ActionInsert, map[string]string{"id": "a1", "title": "Test"})

	select {
	case data := <-client.send:
		var event ChangeEvent
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("Invalid event payload: %v", err)
		}
		if event.Table != "alerts" || event.Action != ActionInsert {
			t.Errorf("Unexpected event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for change event")
	}
}

func TestSubscribeUnknownTable(t *testing.T) {
	ns := startTestBus(t)

	hub := NewEventHub(ns)
	go hub.Run()

	client := NewEventClient(hub, nil, "user-1", "test")
	hub.Register(client)

	if err := hub.Subscribe(client, "secrets"); err == nil {
		t.Error("Expected error for unknown table")
	}
}

func TestSubscriptionTornDownAtZeroViewers(t *testing.T) {
	ns := startTestBus(t)

	hub := NewEventHub(ns)
	go hub.Run()

	client := NewEventClient(hub, nil, "user-1", "test")
	hub.Register(client)

	if err := hub.Subscribe(client, "patients"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if tables := hub.Stats().Tables; len(tables) != 1 || tables[0] != "patients" {
		t.Fatalf("Expected one patients subscription, got %v", tables)
	}

	hub.Unsubscribe(client, "patients")
	if tables := hub.Stats().Tables; len(tables) != 0 {
		t.Errorf("Expected subscription teardown, still have %v", tables)
	}
}

func TestDisconnectDuringSubscribeChurn(t *testing.T) {
	ns := startTestBus(t)

	hub := NewEventHub(ns)
	go hub.Run()

	subscriber := NewEventClient(hub, nil, "subscriber", "test")
	hub.Register(subscriber)

	// One goroutine toggles a subscription while the main goroutine
	// churns clients through register/unregister on the same table
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if err := hub.Subscribe(subscriber, "alerts"); err != nil {
				t.Errorf("Subscribe failed: %v", err)
				return
			}
			hub.Unsubscribe(subscriber, "alerts")
		}
	}()

	for i := 0; i < 200; i++ {
		churn := NewEventClient(hub, nil, "churn", "test")
		hub.Register(churn)
		if err := hub.Subscribe(churn, "alerts"); err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
		hub.unregister <- churn
	}

	<-done
	hub.unregister <- subscriber

	deadline := time.After(2 * time.Second)
	for {
		stats := hub.Stats()
		if stats.Clients == 0 && len(stats.Tables) == 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("Hub not drained after churn: %+v", stats)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBusCountsChangeFeedPublishes(t *testing.T) {
	ns := startTestBus(t)

	feed := NewChangeFeed(ns)
	before := ns.GetStats().EventsPublished

	feed.Publish("alerts", ActionInsert, map[string]string{"id": "a1"})
	feed.Publish("alerts", ActionUpdate, map[string]string{"id": "a1"})

	if got := ns.GetStats().EventsPublished - before; got != 2 {
		t.Errorf("Expected 2 published events counted, got %d", got)
	}
}

func TestEventsNotDeliveredToNonViewers(t *testing.T) {
	ns := startTestBus(t)

	hub := NewEventHub(ns)
	go hub.Run()

	viewer := NewEventClient(hub, nil, "viewer", "test")
	other := NewEventClient(hub, nil, "other", "test")
	hub.Register(viewer)
	hub.Register(other)

	if err := hub.Subscribe(viewer, "cameras"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := hub.Subscribe(other, "reports"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	feed := NewChangeFeed(ns)
	feed.Publish("cameras", ActionUpdate, map[string]string{"id": "c1"})

	select {
	case <-viewer.send:
	case <-time.After(2 * time.Second):
		t.Fatal("Viewer never received the camera event")
	}

	select {
	case data := <-other.send:
		t.Errorf("Non-viewer received event: %s", data)
	case <-time.After(200 * time.Millisecond):
	}
}
