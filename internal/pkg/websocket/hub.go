package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type subscription struct {
	client *Client
	topic  string
	add    bool

	// evict removes every socket of userID from topic
	evict  bool
	userID int64
}

// Hub keeps the topic subscriptions of connected clients and fans events out locally
type Hub struct {
	// topic -> subscribed clients
	topics map[string]map[*Client]bool

	// client -> its topics
	clients map[*Client]map[string]bool

	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	broadcast  chan *Event

	// closed when Run returns
	done chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		clients:    make(map[*Client]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription, 64),
		broadcast:  make(chan *Event, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case sub := <-h.subscribe:
			h.applySubscription(sub)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = make(map[string]bool)
	for _, topic := range client.initialTopics {
		h.addLocked(client, topic)
	}

	h.logger.Debug().Int64("userID", client.userID).Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops a client from every topic and closes its send channel
func (h *Hub) removeLocked(client *Client) {
	topics, ok := h.clients[client]
	if !ok {
		return
	}
	for topic := range topics {
		if subs, ok := h.topics[topic]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	delete(h.clients, client)
	client.closeSend()

	h.logger.Debug().Int64("userID", client.userID).Msg("Client unregistered")
}

func (h *Hub) addLocked(client *Client, topic string) {
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[*Client]bool)
	}
	h.topics[topic][client] = true
	h.clients[client][topic] = true
}

func (h *Hub) applySubscription(sub subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.evict {
		h.evictLocked(sub.userID, sub.topic)
		return
	}
	if _, ok := h.clients[sub.client]; !ok {
		return
	}
	if sub.add {
		h.addLocked(sub.client, sub.topic)
		return
	}
	delete(h.clients[sub.client], sub.topic)
	if subs, ok := h.topics[sub.topic]; ok {
		delete(subs, sub.client)
		if len(subs) == 0 {
			delete(h.topics, sub.topic)
		}
	}
}

func (h *Hub) evictLocked(userID int64, topic string) {
	subs := h.topics[topic]
	for client := range subs {
		if client.userID != userID {
			continue
		}
		delete(subs, client)
		delete(h.clients[client], topic)
		h.logger.Debug().Int64("userID", userID).Str("topic", topic).Msg("Client evicted from topic")
	}
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// deliver writes the event to every subscriber. Clients whose buffer is full are dropped.
func (h *Hub) deliver(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", event.Topic).Msg("Failed to marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	for client := range h.topics[event.Topic] {
		if !client.trySend(data) {
			slow = append(slow, client)
		}
	}
	for _, client := range slow {
		h.logger.Warn().Int64("userID", client.userID).Str("topic", event.Topic).Msg("Dropping slow client")
		h.removeLocked(client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// Publish queues an event for local delivery
func (h *Hub) Publish(ctx context.Context, topic, eventType string, data any) {
	h.Deliver(ctx, &Event{
		Type:      eventType,
		Topic:     topic,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// Deliver queues an already built event for local delivery
func (h *Hub) Deliver(ctx context.Context, event *Event) {
	select {
	case h.broadcast <- event:
	case <-ctx.Done():
	default:
		h.logger.Warn().Str("topic", event.Topic).Str("type", event.Type).Msg("Hub broadcast queue full, event dropped")
	}
}

// EvictTopic removes every local socket of userID from topic. Subscription
// changes are applied in order, so a later subscribe is checked again.
func (h *Hub) EvictTopic(ctx context.Context, userID int64, topic string) {
	h.enqueue(ctx, subscription{userID: userID, topic: topic, evict: true})
}

// Subscribe adds client to topic
func (h *Hub) Subscribe(client *Client, topic string) {
	h.enqueue(context.Background(), subscription{client: client, topic: topic, add: true})
}

// Unsubscribe removes client from topic
func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.enqueue(context.Background(), subscription{client: client, topic: topic})
}

func (h *Hub) enqueue(ctx context.Context, sub subscription) {
	select {
	case h.subscribe <- sub:
	case <-h.done:
	case <-ctx.Done():
	}
}

// attach registers client. It reports false when the hub is no longer running.
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// detach unregisters client, returning at once when the hub has stopped
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SubscriberCount returns the number of local subscribers of topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsSubscribed reports whether client currently receives topic
func (h *Hub) IsSubscribed(client *Client, topic string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[client][topic]
}
