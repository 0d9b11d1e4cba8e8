package websocket

import (
	"context"
	"strconv"
	"time"
)

// Topic names
const (
	FeedTopic = "feed"
)

// Server event types
const (
	EventPostCreated         = "post.created"
	EventPostDeleted         = "post.deleted"
	EventMessageCreated      = "message.created"
	EventMessageUpdated      = "message.updated"
	EventMessageDeleted      = "message.deleted"
	EventReactionUpdated     = "reaction.updated"
	EventMessagePinned       = "message.pinned"
	EventReadUpdated         = "read.updated"
	EventTyping              = "typing"
	EventRoomUpdated         = "room.updated"
	EventNotificationCreated = "notification.created"
	EventSubscribed          = "subscribed"
	EventError               = "error"
)

// UserTopic is the private topic of a user
func UserTopic(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// RoomTopic is the topic of a chat room
func RoomTopic(roomID int64) string {
	return "room:" + strconv.FormatInt(roomID, 10)
}

// Event is a server frame
type Event struct {
	Type      string    `json:"type"`
	Topic     string    `json:"topic"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher fans an event out to every subscriber of a topic. Delivery is
// best effort; failures are logged, never returned.
type Publisher interface {
	Publish(ctx context.Context, topic, eventType string, data any)

	// EvictTopic stops delivering topic to every socket of userID
	EvictTopic(ctx context.Context, userID int64, topic string)
}

// clientFrame is what browsers send
type clientFrame struct {
	Type   string `json:"type"`
	RoomID int64  `json:"roomId"`
}
