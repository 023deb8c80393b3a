package ws

import (
	"encoding/json"
	"testing"

	"clicker_backend/internal/redisboard"
)

func TestHubBroadcastReachesOnlySubscribedBattle(t *testing.T) {
	hub := NewHub()

	a := &Client{UserID: 1, BattleID: 10, hub: hub, send: make(chan []byte, 1)}
	b := &Client{UserID: 2, BattleID: 20, hub: hub, send: make(chan []byte, 1)}
	hub.register(a)
	hub.register(b)

	hub.BroadcastStandings(10, []redisboard.Entry{{CellID: 7, Score: 100}})

	select {
	case raw := <-a.send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != MsgStandings {
			t.Fatalf("type = %q, want %q", msg.Type, MsgStandings)
		}
	default:
		t.Fatal("subscriber of battle 10 got nothing")
	}

	select {
	case <-b.send:
		t.Fatal("subscriber of battle 20 received battle 10 snapshot")
	default:
	}
}

func TestHubUnregisterDropsEmptyBattle(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: 1, BattleID: 10, hub: hub, send: make(chan []byte, 1)}

	hub.register(c)
	if got := hub.Subscribers(10); got != 1 {
		t.Fatalf("subscribers = %d, want 1", got)
	}

	hub.unregister(c)
	if got := hub.Subscribers(10); got != 0 {
		t.Fatalf("subscribers after unregister = %d, want 0", got)
	}
}

func TestHubSkipsBackedUpClient(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: 1, BattleID: 10, hub: hub, send: make(chan []byte)} // unbuffered, never drained
	hub.register(c)

	// must not block
	hub.BroadcastStandings(10, []redisboard.Entry{{CellID: 1, Score: 1}})
}
