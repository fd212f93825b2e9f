package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }

func waitForClients(t *testing.T, hub *Hub, companyID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		got := len(hub.clients[companyID])
		hub.mu.RUnlock()
		if got == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count for %s never reached %d", companyID, want)
}

// A tab that never drains its Send channel must be dropped without taking the
// hub's Run loop down with it.
func TestSlowClientDroppedHubSurvives(t *testing.T) {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()

	stuck := &Client{Hub: hub, CompanyID: "c1", Send: make(chan []byte)}
	hub.register <- stuck
	waitForClients(t, hub, "c1", 1)

	hub.SendGate("c1", GateMessage{State: "blocked", Title: "Payment Overdue"})

	select {
	case _, ok := <-stuck.Send:
		if ok {
			t.Fatalf("expected Send closed after drop, got a message")
		}
	case <-time.After(time.Second):
		t.Fatalf("slow client was never unregistered")
	}
	waitForClients(t, hub, "c1", 0)

	// The hub must keep serving the tenant's other tabs.
	healthy := &Client{Hub: hub, CompanyID: "c1", Send: make(chan []byte, 8)}
	hub.register <- healthy
	waitForClients(t, hub, "c1", 1)

	hub.SendGate("c1", GateMessage{State: "open"})

	select {
	case msg := <-healthy.Send:
		var envelope struct {
			Type string      `json:"type"`
			Data GateMessage `json:"data"`
		}
		if err := json.Unmarshal(msg, &envelope); err != nil {
			t.Fatalf("bad gate payload: %v", err)
		}
		if envelope.Type != "gate" || envelope.Data.State != "open" {
			t.Fatalf("unexpected payload: %+v", envelope)
		}
	case <-time.After(time.Second):
		t.Fatalf("hub stopped delivering after dropping the slow client")
	}
}

// A client can hit unregister twice: once as a slow drop, once when its
// readPump exits. The second pass must be a no-op, not a second close.
func TestUnregisterTwiceIsHarmless(t *testing.T) {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()

	c := &Client{Hub: hub, CompanyID: "c2", Send: make(chan []byte, 1)}
	hub.register <- c
	waitForClients(t, hub, "c2", 1)

	hub.unregister <- c
	hub.unregister <- c
	waitForClients(t, hub, "c2", 0)

	other := &Client{Hub: hub, CompanyID: "c2", Send: make(chan []byte, 1)}
	hub.register <- other
	waitForClients(t, hub, "c2", 1)

	hub.SendGate("c2", GateMessage{State: "open"})

	select {
	case <-other.Send:
	case <-time.After(time.Second):
		t.Fatalf("hub dead after repeated unregister")
	}
}

func TestBroadcastReachesEveryCompany(t *testing.T) {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()

	a := &Client{Hub: hub, CompanyID: "a", Send: make(chan []byte, 1)}
	b := &Client{Hub: hub, CompanyID: "b", Send: make(chan []byte, 1)}
	hub.register <- a
	hub.register <- b
	waitForClients(t, hub, "a", 1)
	waitForClients(t, hub, "b", 1)

	hub.Broadcast("maintenance", map[string]string{"message": "upgrade tonight at 02:00 UTC"})

	for _, client := range []*Client{a, b} {
		select {
		case msg := <-client.Send:
			var envelope struct {
				Type string            `json:"type"`
				Data map[string]string `json:"data"`
			}
			if err := json.Unmarshal(msg, &envelope); err != nil {
				t.Fatalf("bad broadcast payload: %v", err)
			}
			if envelope.Type != "maintenance" || envelope.Data["message"] == "" {
				t.Fatalf("unexpected payload: %+v", envelope)
			}
		case <-time.After(time.Second):
			t.Fatalf("broadcast never reached company %s", client.CompanyID)
		}
	}
}
