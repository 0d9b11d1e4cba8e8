package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRelayChannel is the Redis pub/sub channel shared by all instances
const DefaultRelayChannel = "parivartan:realtime"

// RedisRelay publishes events through Redis so every API instance delivers
// them to its own sockets
type RedisRelay struct {
	hub     *Hub
	client  *redis.Client
	channel string
	logger  zerolog.Logger
}

// NewRedisRelay creates a RedisRelay
func NewRedisRelay(hub *Hub, client *redis.Client, channel string, logger zerolog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RedisRelay{hub: hub, client: client, channel: channel, logger: logger}
}

// controlEvict carries an EvictTopic call to every instance. It never reaches browsers.
const controlEvict = "control.evict"

type relayedEvent struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Data      json.RawMessage `json:"data,omitempty"`
	UserID    int64           `json:"userId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func encodeEvent(event *Event) ([]byte, error) {
	return json.Marshal(event)
}

func encodeEviction(userID int64, topic string) ([]byte, error) {
	return json.Marshal(&relayedEvent{Type: controlEvict, Topic: topic, UserID: userID, Timestamp: time.Now().UTC()})
}

func decodeRelayed(payload []byte) (*relayedEvent, error) {
	var re relayedEvent
	if err := json.Unmarshal(payload, &re); err != nil {
		return nil, err
	}
	return &re, nil
}

func (re *relayedEvent) event() *Event {
	ev := &Event{Type: re.Type, Topic: re.Topic, Timestamp: re.Timestamp}
	if len(re.Data) > 0 {
		ev.Data = re.Data
	}
	return ev
}

func decodeEvent(payload []byte) (*Event, error) {
	re, err := decodeRelayed(payload)
	if err != nil {
		return nil, err
	}
	return re.event(), nil
}

// Publish sends the event to Redis, delivering locally when Redis fails
func (r *RedisRelay) Publish(ctx context.Context, topic, eventType string, data any) {
	event := &Event{Type: eventType, Topic: topic, Data: data, Timestamp: time.Now().UTC()}

	payload, err := encodeEvent(event)
	if err != nil {
		r.logger.Error().Err(err).Str("topic", topic).Msg("Failed to encode event")
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Warn().Err(err).Str("topic", topic).Msg("Redis publish failed, delivering locally")
		r.hub.Deliver(ctx, event)
	}
}

// EvictTopic asks every instance to drop topic from userID's sockets. The local
// hub is evicted directly when Redis fails.
func (r *RedisRelay) EvictTopic(ctx context.Context, userID int64, topic string) {
	payload, err := encodeEviction(userID, topic)
	if err != nil {
		r.logger.Error().Err(err).Str("topic", topic).Msg("Failed to encode eviction")
		r.hub.EvictTopic(ctx, userID, topic)
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Warn().Err(err).Str("topic", topic).Msg("Redis publish failed, evicting locally")
		r.hub.EvictTopic(ctx, userID, topic)
	}
}

// dispatch applies one relayed payload to the local hub
func (r *RedisRelay) dispatch(ctx context.Context, payload []byte) {
	re, err := decodeRelayed(payload)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Ignoring malformed relayed event")
		return
	}
	if re.Type == controlEvict {
		r.hub.EvictTopic(ctx, re.UserID, re.Topic)
		return
	}
	r.hub.Deliver(ctx, re.event())
}

// Run forwards relayed events into the local hub until ctx is done
func (r *RedisRelay) Run(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	r.logger.Info().Str("channel", r.channel).Msg("Realtime relay subscribed")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.dispatch(ctx, []byte(msg.Payload))
		}
	}
}
