package models

import "time"

// RoomType distinguishes group rooms from one-to-one conversations
type RoomType string

const (
	RoomTypeGroup   RoomType = "group"
	RoomTypePrivate RoomType = "private"
)

// ParticipantRole is the role of a user inside a room
type ParticipantRole string

const (
	ParticipantOwner  ParticipantRole = "owner"
	ParticipantMember ParticipantRole = "member"
)

// ChatRoom is a conversation
type ChatRoom struct {
	ID        int64     `json:"id" db:"id"`
	Name      *string   `json:"name,omitempty" db:"name"`
	Type      RoomType  `json:"type" db:"type"`
	DirectKey *string   `json:"-" db:"direct_key"`
	CreatedBy *int64    `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	LastMessage *Message       `json:"lastMessage,omitempty"`
	UnreadCount int64          `json:"unreadCount"`
	Members     []*UserSummary `json:"members,omitempty"`
}

// ChatParticipant is membership of a user in a room
type ChatParticipant struct {
	RoomID   int64           `json:"roomId" db:"room_id"`
	UserID   int64           `json:"userId" db:"user_id"`
	Role     ParticipantRole `json:"role" db:"role"`
	JoinedAt time.Time       `json:"joinedAt" db:"joined_at"`
	User     *UserSummary    `json:"user,omitempty"`
}

// Message is a chat message. Deleted messages keep their row with empty content.
type Message struct {
	ID        int64      `json:"id" db:"id"`
	RoomID    int64      `json:"roomId" db:"room_id"`
	SenderID  *int64     `json:"senderId,omitempty" db:"sender_id"`
	Content   string     `json:"content" db:"content"`
	ReplyToID *int64     `json:"replyToId,omitempty" db:"reply_to_id"`
	IsPinned  bool       `json:"isPinned" db:"is_pinned"`
	PinnedBy  *int64     `json:"pinnedBy,omitempty" db:"pinned_by"`
	PinnedAt  *time.Time `json:"pinnedAt,omitempty" db:"pinned_at"`
	EditedAt  *time.Time `json:"editedAt,omitempty" db:"edited_at"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`

	Sender    *UserSummary      `json:"sender,omitempty"`
	Reactions []ReactionSummary `json:"reactions,omitempty"`
}

// IsDeleted reports a soft-deleted message
func (m *Message) IsDeleted() bool {
	return m.DeletedAt != nil
}

// ReactionSummary aggregates one emoji on a message
type ReactionSummary struct {
	Emoji   string  `json:"emoji"`
	Count   int64   `json:"count"`
	UserIDs []int64 `json:"userIds"`
}

// ReadStatus is the last message a user has read in a room
type ReadStatus struct {
	RoomID            int64     `json:"roomId" db:"room_id"`
	UserID            int64     `json:"userId" db:"user_id"`
	LastReadMessageID int64     `json:"lastReadMessageId" db:"last_read_message_id"`
	ReadAt            time.Time `json:"readAt" db:"read_at"`
}
