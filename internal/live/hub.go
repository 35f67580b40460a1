// Package live pushes post-created events to connected websocket clients so
// a feed page can surface new posts without polling.
package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	"github.com/MarkovDN/pulseblog/internal/events"
	"github.com/MarkovDN/pulseblog/internal/observability/metrics"
)

type Hub struct {
	clients    sync.Map
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	log        *logger.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewHub(ctx context.Context, log *logger.Logger) *Hub {
	hubCtx, cancel := context.WithCancel(ctx)
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		log:        log,
		ctx:        hubCtx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.clients.Store(client, struct{}{})
			metrics.LiveClientsConnected.Inc()
			h.log.Debugf("live client connected user_id=%s", client.userID)

		case client := <-h.unregister:
			if _, ok := h.clients.LoadAndDelete(client); ok {
				close(client.send)
				metrics.LiveClientsConnected.Dec()
				h.log.Debugf("live client disconnected user_id=%s", client.userID)
			}

		case message := <-h.broadcast:
			h.clients.Range(func(key, _ any) bool {
				client := key.(*Client)
				select {
				case client.send <- message:
				default:
					// Slow consumers lose events rather than stalling the hub.
					metrics.LiveEventsDropped.Inc()
				}
				return true
			})
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Broadcast queues raw event bytes for every connected client. Used both by
// the local publisher path and by the NATS bridge.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		metrics.LiveEventsDropped.Inc()
	}
}

// PublishPostCreated makes the hub an event publisher, so locally created
// posts reach local clients without a broker round trip.
func (h *Hub) PublishPostCreated(ctx context.Context, post domain.Post) error {
	payload, err := json.Marshal(events.NewPostCreatedEvent(post))
	if err != nil {
		return err
	}
	h.Broadcast(payload)
	return nil
}

func (h *Hub) Close() {
	h.cancel()
}

func (h *Hub) shutdown() {
	h.clients.Range(func(key, _ any) bool {
		client := key.(*Client)
		h.clients.Delete(client)
		close(client.send)
		metrics.LiveClientsConnected.Dec()
		return true
	})
}
