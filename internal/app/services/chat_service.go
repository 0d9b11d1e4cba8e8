package services

import (
	"context"
	"errors"
	"strings"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultMessagePageSize = 30
	maxMessagePageSize     = 100
)

var errNotParticipant = apperrors.NewForbiddenError("you are not a participant of this room")

// ChatService handles rooms, messages, reactions, pins and read receipts
type ChatService struct {
	chatRepo    repositories.IChatRepository
	messageRepo repositories.IMessageRepository
	userRepo    repositories.IUserRepository
	publisher   websocket.Publisher
	logger      zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	chatRepo repositories.IChatRepository,
	messageRepo repositories.IMessageRepository,
	userRepo repositories.IUserRepository,
	publisher websocket.Publisher,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// IsRoomParticipant reports membership; used by the socket layer before subscribing
func (s *ChatService) IsRoomParticipant(ctx context.Context, roomID, userID int64) (bool, error) {
	_, err := s.chatRepo.GetParticipant(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// requireParticipant loads the room and the caller's membership
func (s *ChatService) requireParticipant(ctx context.Context, roomID, userID int64) (*models.ChatRoom, *models.ChatParticipant, error) {
	room, err := s.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.chatRepo.GetParticipant(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, nil, errNotParticipant
		}
		return nil, nil, err
	}
	return room, p, nil
}

// requireManager allows the room owner and staff. Staff need not be participants.
func (s *ChatService) requireManager(ctx context.Context, actor appauth.Actor, roomID int64) (*models.ChatRoom, error) {
	room, p, err := s.requireParticipant(ctx, roomID, actor.UserID)
	if err != nil {
		if !actor.IsStaff() || !errors.Is(err, apperrors.ErrPermissionDenied) {
			return nil, err
		}
		return s.chatRepo.GetRoom(ctx, roomID)
	}
	if p.Role != models.ParticipantOwner && !actor.IsStaff() {
		return nil, apperrors.NewForbiddenError("only the room owner or an admin can do this")
	}
	return room, nil
}

func (s *ChatService) publishRoom(ctx context.Context, roomID int64, eventType string, data any) {
	s.publisher.Publish(ctx, websocket.RoomTopic(roomID), eventType, data)
}

func (s *ChatService) notifyRoomChanged(ctx context.Context, roomID int64, userIDs ...int64) {
	payload := map[string]int64{"roomId": roomID}
	s.publishRoom(ctx, roomID, websocket.EventRoomUpdated, payload)
	for _, id := range userIDs {
		s.publisher.Publish(ctx, websocket.UserTopic(id), websocket.EventRoomUpdated, payload)
	}
}

func uniqueIDs(ids []int64, exclude int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// CreateRoom creates a group room owned by the caller
func (s *ChatService) CreateRoom(ctx context.Context, actor appauth.Actor, req *dto.CreateRoomRequest) (*models.ChatRoom, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("room name is required")
	}
	members := uniqueIDs(req.ParticipantIDs, actor.UserID)

	room := &models.ChatRoom{Name: &name}
	if err := s.chatRepo.CreateGroupRoom(ctx, room, actor.UserID, members); err != nil {
		return nil, err
	}
	s.notifyRoomChanged(ctx, room.ID, members...)
	return s.withMembers(ctx, room)
}

// OpenDirect returns the private room between the caller and another user, creating it on first use
func (s *ChatService) OpenDirect(ctx context.Context, actor appauth.Actor, otherID int64) (*models.ChatRoom, error) {
	if otherID == actor.UserID {
		return nil, apperrors.NewBadRequestError("you cannot start a conversation with yourself")
	}
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if !other.IsActive {
		return nil, apperrors.ErrUserNotFound
	}

	room, created, err := s.chatRepo.GetOrCreateDirectRoom(ctx, actor.UserID, otherID)
	if err != nil {
		return nil, err
	}
	if created {
		s.publisher.Publish(ctx, websocket.UserTopic(otherID), websocket.EventRoomUpdated, map[string]int64{"roomId": room.ID})
		return s.withMembers(ctx, room)
	}

	// Either side may have left the room earlier
	if err := s.chatRepo.AddParticipants(ctx, room.ID, []int64{actor.UserID, otherID}); err != nil {
		return nil, err
	}
	return s.withMembers(ctx, room)
}

func (s *ChatService) withMembers(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, error) {
	participants, err := s.chatRepo.ListParticipants(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	room.Members = make([]*models.UserSummary, 0, len(participants))
	for _, p := range participants {
		room.Members = append(room.Members, p.User)
	}
	return room, nil
}

// ListRooms lists the caller's rooms with last message and unread count.
// Private rooms carry their members so clients can name them.
func (s *ChatService) ListRooms(ctx context.Context, actor appauth.Actor) ([]*models.ChatRoom, error) {
	rooms, err := s.chatRepo.ListRoomsForUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	for _, room := range rooms {
		if room.Type != models.RoomTypePrivate {
			continue
		}
		if _, err := s.withMembers(ctx, room); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// GetRoom returns one room with its members
func (s *ChatService) GetRoom(ctx context.Context, actor appauth.Actor, roomID int64) (*models.ChatRoom, error) {
	room, _, err := s.requireParticipant(ctx, roomID, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.withMembers(ctx, room)
}

// ListParticipants lists members of a room the caller belongs to
func (s *ChatService) ListParticipants(ctx context.Context, actor appauth.Actor, roomID int64) ([]*models.ChatParticipant, error) {
	if _, _, err := s.requireParticipant(ctx, roomID, actor.UserID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListParticipants(ctx, roomID)
}

// RenameRoom renames a group room
func (s *ChatService) RenameRoom(ctx context.Context, actor appauth.Actor, roomID int64, name string) (*models.ChatRoom, error) {
	room, err := s.requireManager(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if room.Type != models.RoomTypeGroup {
		return nil, apperrors.NewBadRequestError("private rooms cannot be renamed")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("room name is required")
	}
	if err := s.chatRepo.RenameRoom(ctx, roomID, name); err != nil {
		return nil, err
	}
	room.Name = &name
	s.notifyRoomChanged(ctx, roomID)
	return s.withMembers(ctx, room)
}

// AddParticipants adds users to a group room
func (s *ChatService) AddParticipants(ctx context.Context, actor appauth.Actor, roomID int64, userIDs []int64) ([]*models.ChatParticipant, error) {
	room, err := s.requireManager(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if room.Type != models.RoomTypeGroup {
		return nil, apperrors.NewBadRequestError("participants cannot be added to private rooms")
	}
	ids := uniqueIDs(userIDs, 0)
	if err := s.chatRepo.AddParticipants(ctx, roomID, ids); err != nil {
		return nil, err
	}
	s.notifyRoomChanged(ctx, roomID, ids...)
	return s.chatRepo.ListParticipants(ctx, roomID)
}

// RemoveParticipant removes a member. Any participant may remove themselves.
func (s *ChatService) RemoveParticipant(ctx context.Context, actor appauth.Actor, roomID, userID int64) error {
	if userID == actor.UserID {
		if _, _, err := s.requireParticipant(ctx, roomID, actor.UserID); err != nil {
			return err
		}
	} else {
		room, err := s.requireManager(ctx, actor, roomID)
		if err != nil {
			return err
		}
		if room.Type != models.RoomTypeGroup {
			return apperrors.NewBadRequestError("participants cannot be removed from private rooms")
		}
	}

	if err := s.chatRepo.RemoveParticipant(ctx, roomID, userID); err != nil {
		return err
	}
	s.publisher.EvictTopic(ctx, userID, websocket.RoomTopic(roomID))
	s.notifyRoomChanged(ctx, roomID, userID)
	return nil
}

func (s *ChatService) attachReactions(ctx context.Context, msgs []*models.Message) error {
	ids := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	summaries, err := s.messageRepo.ReactionSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		m.Reactions = summaries[m.ID]
	}
	return nil
}

// ListMessages returns room history newest first, paging backwards from before
func (s *ChatService) ListMessages(ctx context.Context, actor appauth.Actor, roomID int64, before *int64, limit int) (*dto.MessagePage, error) {
	if _, _, err := s.requireParticipant(ctx, roomID, actor.UserID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}

	msgs, err := s.messageRepo.ListByRoom(ctx, roomID, before, limit+1)
	if err != nil {
		return nil, err
	}
	page := &dto.MessagePage{}
	if len(msgs) > limit {
		msgs = msgs[:limit]
		page.HasMore = true
	}
	if err := s.attachReactions(ctx, msgs); err != nil {
		return nil, err
	}
	if page.HasMore {
		last := msgs[len(msgs)-1].ID
		page.NextBefore = &last
	}
	page.Messages = msgs
	return page, nil
}

// SendMessage posts a message and fans it out to the room
func (s *ChatService) SendMessage(ctx context.Context, actor appauth.Actor, roomID int64, req *dto.SendMessageRequest) (*models.Message, error) {
	if _, _, err := s.requireParticipant(ctx, roomID, actor.UserID); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewBadRequestError("message content is required")
	}

	msg := &models.Message{RoomID: roomID, SenderID: &actor.UserID, Content: content, ReplyToID: req.ReplyToID}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.chatRepo.TouchRoom(ctx, roomID); err != nil {
		s.logger.Warn().Err(err).Int64("roomID", roomID).Msg("Error touching room")
	}

	created, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	s.publishRoom(ctx, roomID, websocket.EventMessageCreated, created)
	return created, nil
}

// loadMessage fetches a message and the caller's membership in its room
func (s *ChatService) loadMessage(ctx context.Context, actor appauth.Actor, messageID int64) (*models.Message, *models.ChatParticipant, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.chatRepo.GetParticipant(ctx, msg.RoomID, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			if actor.IsStaff() {
				return msg, nil, nil
			}
			return nil, nil, errNotParticipant
		}
		return nil, nil, err
	}
	return msg, p, nil
}

// EditMessage replaces the content of the caller's own message
func (s *ChatService) EditMessage(ctx context.Context, actor appauth.Actor, messageID int64, content string) (*models.Message, error) {
	msg, p, err := s.loadMessage(ctx, actor, messageID)
	if err != nil {
		return nil, err
	}
	if p == nil || msg.SenderID == nil || *msg.SenderID != actor.UserID {
		return nil, apperrors.NewForbiddenError("you can only edit your own messages")
	}
	if msg.IsDeleted() {
		return nil, apperrors.NewBadRequestError("deleted messages cannot be edited")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequestError("message content is required")
	}

	editedAt, err := s.messageRepo.UpdateContent(ctx, messageID, content)
	if err != nil {
		return nil, err
	}
	msg.Content = content
	msg.EditedAt = editedAt
	s.publishRoom(ctx, msg.RoomID, websocket.EventMessageUpdated, msg)
	return msg, nil
}

func (s *ChatService) canModerate(actor appauth.Actor, p *models.ChatParticipant) bool {
	return actor.IsStaff() || p != nil && p.Role == models.ParticipantOwner
}

// DeleteMessage soft-deletes a message; sender, room owner or admin
func (s *ChatService) DeleteMessage(ctx context.Context, actor appauth.Actor, messageID int64) error {
	msg, p, err := s.loadMessage(ctx, actor, messageID)
	if err != nil {
		return err
	}
	isSender := p != nil && msg.SenderID != nil && *msg.SenderID == actor.UserID
	if !isSender && !s.canModerate(actor, p) {
		return apperrors.NewForbiddenError("you cannot delete this message")
	}

	deletedAt, err := s.messageRepo.SoftDelete(ctx, messageID)
	if err != nil {
		return err
	}
	s.publishRoom(ctx, msg.RoomID, websocket.EventMessageDeleted, map[string]interface{}{
		"id":        messageID,
		"roomId":    msg.RoomID,
		"deletedAt": deletedAt,
	})
	return nil
}

// ToggleReaction adds or removes the caller's emoji on a message
func (s *ChatService) ToggleReaction(ctx context.Context, actor appauth.Actor, messageID int64, emoji string) (*dto.ReactionResponse, error) {
	msg, p, err := s.loadMessage(ctx, actor, messageID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errNotParticipant
	}
	if msg.IsDeleted() {
		return nil, apperrors.NewBadRequestError("cannot react to a deleted message")
	}
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, apperrors.NewBadRequestError("emoji is required")
	}

	added, err := s.messageRepo.ToggleReaction(ctx, messageID, actor.UserID, emoji)
	if err != nil {
		return nil, err
	}
	summaries, err := s.messageRepo.ReactionSummaries(ctx, []int64{messageID})
	if err != nil {
		return nil, err
	}
	resp := &dto.ReactionResponse{MessageID: messageID, Added: added, Reactions: summaries[messageID]}
	if resp.Reactions == nil {
		resp.Reactions = []models.ReactionSummary{}
	}
	s.publishRoom(ctx, msg.RoomID, websocket.EventReactionUpdated, resp)
	return resp, nil
}

// SetPinned pins or unpins a message; room owner or admin
func (s *ChatService) SetPinned(ctx context.Context, actor appauth.Actor, messageID int64, pinned bool) error {
	msg, p, err := s.loadMessage(ctx, actor, messageID)
	if err != nil {
		return err
	}
	if !s.canModerate(actor, p) {
		return apperrors.NewForbiddenError("only the room owner or an admin can pin messages")
	}
	if pinned && msg.IsDeleted() {
		return apperrors.NewBadRequestError("deleted messages cannot be pinned")
	}
	if err := s.messageRepo.SetPinned(ctx, messageID, pinned, actor.UserID); err != nil {
		return err
	}
	s.publishRoom(ctx, msg.RoomID, websocket.EventMessagePinned, map[string]interface{}{
		"messageId": messageID,
		"roomId":    msg.RoomID,
		"pinned":    pinned,
		"pinnedBy":  actor.UserID,
	})
	return nil
}

// ListPinned lists the pinned messages of a room
func (s *ChatService) ListPinned(ctx context.Context, actor appauth.Actor, roomID int64) ([]*models.Message, error) {
	if _, _, err := s.requireParticipant(ctx, roomID, actor.UserID); err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ListPinned(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.attachReactions(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead advances the caller's read marker. It never moves backwards.
func (s *ChatService) MarkRead(ctx context.Context, actor appauth.Actor, roomID, messageID int64) (*models.ReadStatus, error) {
	if _, _, err := s.requireParticipant(ctx, roomID, actor.UserID); err != nil {
		return nil, err
	}
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.RoomID != roomID {
		return nil, apperrors.NewBadRequestError("message is not in this room")
	}

	status, err := s.messageRepo.AdvanceReadMarker(ctx, roomID, actor.UserID, messageID)
	if err != nil {
		return nil, err
	}
	s.publishRoom(ctx, roomID, websocket.EventReadUpdated, status)
	return status, nil
}
