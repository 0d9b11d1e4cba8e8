package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Client frames are tiny control messages
	maxMessageSize = 4 * 1024

	sendBuffer = 256
)

// RoomAuthorizer decides whether a user may follow a chat room
type RoomAuthorizer interface {
	IsRoomParticipant(ctx context.Context, roomID, userID int64) (bool, error)
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub       *Hub
	publisher Publisher
	rooms     RoomAuthorizer

	conn *websocket.Conn

	// Buffered channel of outbound frames. sendMu guards closing it.
	send   chan []byte
	sendMu sync.Mutex
	closed bool

	userID        int64
	initialTopics []string

	logger zerolog.Logger
}

func newClient(hub *Hub, publisher Publisher, rooms RoomAuthorizer, conn *websocket.Conn, userID int64, logger zerolog.Logger) *Client {
	return &Client{
		hub:           hub,
		publisher:     publisher,
		rooms:         rooms,
		conn:          conn,
		send:          make(chan []byte, sendBuffer),
		userID:        userID,
		initialTopics: []string{UserTopic(userID), FeedTopic},
		logger:        logger,
	}
}

// reply sends a frame to this client only
func (c *Client) reply(eventType, topic string, data any) {
	payload, err := json.Marshal(&Event{Type: eventType, Topic: topic, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}
	if !c.trySend(payload) {
		c.logger.Debug().Int64("userID", c.userID).Str("type", eventType).Msg("Reply dropped")
	}
}

// trySend queues payload without blocking. It reports false when the buffer
// is full or the hub has closed the channel.
func (c *Client) trySend(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// handleFrame applies one client frame
func (c *Client) handleFrame(ctx context.Context, raw []byte) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.reply(EventError, "", map[string]string{"message": "invalid frame"})
		return
	}

	switch frame.Type {
	case "subscribe":
		ok, err := c.rooms.IsRoomParticipant(ctx, frame.RoomID, c.userID)
		if err != nil {
			c.logger.Error().Err(err).Int64("roomID", frame.RoomID).Int64("userID", c.userID).Msg("Participant check failed")
			c.reply(EventError, RoomTopic(frame.RoomID), map[string]string{"message": "subscription failed"})
			return
		}
		if !ok {
			c.reply(EventError, RoomTopic(frame.RoomID), map[string]string{"message": "not a participant of this room"})
			return
		}
		c.hub.Subscribe(c, RoomTopic(frame.RoomID))
		c.reply(EventSubscribed, RoomTopic(frame.RoomID), map[string]int64{"roomId": frame.RoomID})

	case "unsubscribe":
		c.hub.Unsubscribe(c, RoomTopic(frame.RoomID))

	case "typing":
		topic := RoomTopic(frame.RoomID)
		if !c.hub.IsSubscribed(c, topic) {
			return
		}
		c.publisher.Publish(ctx, topic, EventTyping, map[string]int64{
			"roomId": frame.RoomID,
			"userId": c.userID,
		})

	case "ping":
		c.reply("pong", "", nil)

	default:
		c.reply(EventError, "", map[string]string{"message": "unknown frame type"})
	}
}

// readPump pumps frames from the websocket connection to the hub
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Int64("userID", c.userID).Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().Err(err).Int64("userID", c.userID).Msg("WebSocket closed")
			}
			return
		}
		c.handleFrame(ctx, message)
	}
}

// writePump pumps frames from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// one JSON frame per websocket message
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowAll || origin == "" || allowed[origin]
		},
	}
}
