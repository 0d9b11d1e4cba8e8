package dto

import "github.com/parivartan/platform-api/internal/app/models"

// CreateRoomRequest creates a group room
type CreateRoomRequest struct {
	Name           string  `json:"name" binding:"required,min=1,max=100"`
	ParticipantIDs []int64 `json:"participantIds" binding:"omitempty,max=500,dive,min=1"`
}

// UpdateRoomRequest renames a group room
type UpdateRoomRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// AddParticipantsRequest adds users to a group room
type AddParticipantsRequest struct {
	UserIDs []int64 `json:"userIds" binding:"required,min=1,max=500,dive,min=1"`
}

// SendMessageRequest posts a message
type SendMessageRequest struct {
	Content   string `json:"content" binding:"required,min=1,max=4000"`
	ReplyToID *int64 `json:"replyToId" binding:"omitempty,min=1"`
}

// EditMessageRequest replaces message content
type EditMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=4000"`
}

// ReactionRequest toggles an emoji reaction
type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required,max=32"`
}

// ReactionResponse is the message reaction state after a toggle
type ReactionResponse struct {
	MessageID int64                    `json:"messageId"`
	Added     bool                     `json:"added"`
	Reactions []models.ReactionSummary `json:"reactions"`
}

// ReadRequest moves the caller's read marker
type ReadRequest struct {
	MessageID int64 `json:"messageId" binding:"required,min=1"`
}

// MessagePage is a newest-first slice of room history
type MessagePage struct {
	Messages   []*models.Message `json:"messages"`
	HasMore    bool              `json:"hasMore"`
	NextBefore *int64            `json:"nextBefore,omitempty"`
}
