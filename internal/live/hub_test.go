package live

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	hub := NewHub(context.Background(), log)
	go hub.Run()
	t.Cleanup(hub.Close)

	return hub
}

func waitForMessage(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub := newTestHub(t)

	first := NewClient(hub, nil, "user-1", nil)
	second := NewClient(hub, nil, "user-2", nil)
	hub.Register(first)
	hub.Register(second)

	hub.Broadcast([]byte("payload"))

	if got := waitForMessage(t, first.send); string(got) != "payload" {
		t.Errorf("unexpected message %q", got)
	}
	if got := waitForMessage(t, second.send); string(got) != "payload" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestHub_PublishPostCreatedMarshalsEvent(t *testing.T) {
	hub := newTestHub(t)

	client := NewClient(hub, nil, "user-1", nil)
	hub.Register(client)

	post := domain.Post{
		ID:     9,
		Text:   "fresh",
		Author: domain.Author{ID: "user-2", Username: "bob"},
	}
	if err := hub.PublishPostCreated(context.Background(), post); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var payload struct {
		PostID int64  `json:"post_id"`
		Author string `json:"author"`
	}
	if err := json.Unmarshal(waitForMessage(t, client.send), &payload); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if payload.PostID != 9 || payload.Author != "bob" {
		t.Errorf("unexpected event %+v", payload)
	}
}

func TestHub_SlowClientDoesNotBlockBroadcast(t *testing.T) {
	hub := newTestHub(t)

	slow := NewClient(hub, nil, "user-1", nil)
	hub.Register(slow)

	// Overrun the send buffer. The hub must keep accepting broadcasts.
	for i := 0; i < cap(slow.send)+10; i++ {
		hub.Broadcast([]byte("flood"))
	}

	done := make(chan struct{})
	go func() {
		hub.Broadcast([]byte("after flood"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := newTestHub(t)

	client := NewClient(hub, nil, "user-1", nil)
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed channel, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
