package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

const defaultMessagePageSize = 30

// ChatController handles chat rooms and messages
type ChatController struct {
	chatService *services.ChatService
	logger      zerolog.Logger
}

// NewChatController creates a new ChatController
func NewChatController(chatService *services.ChatService, logger zerolog.Logger) *ChatController {
	return &ChatController{chatService: chatService, logger: logger}
}

// CreateRoom creates a group room
// @Summary Create a group room
// @Description The creator becomes the room owner
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRoomRequest true "Room"
// @Success 201 {object} dto.APIResponse{data=models.ChatRoom} "Room created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /chat/rooms [post]
func (c *ChatController) CreateRoom(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.CreateRoomRequest
	if !bindJSON(ctx, &req) {
		return
	}

	room, err := c.chatService.CreateRoom(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, room, "Room created successfully")
}

// OpenDirect returns or creates the private room with another user
// @Summary Open a direct conversation
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.APIResponse{data=models.ChatRoom} "Private room"
// @Failure 400 {object} dto.ErrorResponse "Cannot message yourself"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /chat/direct/{userId} [post]
func (c *ChatController) OpenDirect(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	otherID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	room, err := c.chatService.OpenDirect(ctx.Request.Context(), a, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, room, "Direct room ready")
}

// ListRooms lists the caller's rooms
// @Summary List my rooms
// @Description With last message and unread count, most recently active first
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ChatRoom} "Rooms"
// @Router /chat/rooms [get]
func (c *ChatController) ListRooms(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	rooms, err := c.chatService.ListRooms(ctx.Request.Context(), a)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rooms, "Rooms retrieved successfully")
}

// GetRoom returns one room
// @Summary Get a room
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} dto.APIResponse{data=models.ChatRoom} "Room"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Room not found"
// @Router /chat/rooms/{id} [get]
func (c *ChatController) GetRoom(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	room, err := c.chatService.GetRoom(ctx.Request.Context(), a, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, room, "Room retrieved successfully")
}

// RenameRoom renames a group room
// @Summary Rename a room
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body dto.UpdateRoomRequest true "Room name"
// @Success 200 {object} dto.APIResponse{data=models.ChatRoom} "Room renamed"
// @Failure 403 {object} dto.ErrorResponse "Owner or admin only"
// @Router /chat/rooms/{id} [put]
func (c *ChatController) RenameRoom(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoomRequest
	if !bindJSON(ctx, &req) {
		return
	}

	room, err := c.chatService.RenameRoom(ctx.Request.Context(), a, id, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, room, "Room renamed successfully")
}

// ListParticipants lists room members
// @Summary List participants
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ChatParticipant} "Participants"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /chat/rooms/{id}/participants [get]
func (c *ChatController) ListParticipants(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	participants, err := c.chatService.ListParticipants(ctx.Request.Context(), a, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, participants, "Participants retrieved successfully")
}

// AddParticipants adds users to a group room
// @Summary Add participants
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body dto.AddParticipantsRequest true "User ids"
// @Success 200 {object} dto.APIResponse{data=[]models.ChatParticipant} "Participants"
// @Failure 403 {object} dto.ErrorResponse "Owner or admin only"
// @Router /chat/rooms/{id}/participants [post]
func (c *ChatController) AddParticipants(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AddParticipantsRequest
	if !bindJSON(ctx, &req) {
		return
	}

	participants, err := c.chatService.AddParticipants(ctx.Request.Context(), a, id, req.UserIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, participants, "Participants added successfully")
}

// RemoveParticipant removes a user from a room. "me" leaves the room.
// @Summary Remove a participant or leave
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param userId path string true "User ID or me"
// @Success 200 {object} dto.APIResponse "Participant removed"
// @Failure 403 {object} dto.ErrorResponse "Owner or admin only"
// @Router /chat/rooms/{id}/participants/{userId} [delete]
func (c *ChatController) RemoveParticipant(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	roomID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	userID := a.UserID
	if ctx.Param("userId") != "me" {
		if userID, ok = pathID(ctx, "userId"); !ok {
			return
		}
	}

	if err := c.chatService.RemoveParticipant(ctx.Request.Context(), a, roomID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Participant removed successfully")
}

// ListMessages pages through a room's history
// @Summary List messages
// @Description Newest first. Pass nextBefore from the previous page as before.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param before query int false "Message ID cursor"
// @Param limit query int false "Page size (max 100)" default(30)
// @Success 200 {object} dto.APIResponse{data=dto.MessagePage} "Messages"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /chat/rooms/{id}/messages [get]
func (c *ChatController) ListMessages(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	limit := defaultMessagePageSize
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(ctx, "Invalid limit", "limit must be a positive number")
			return
		}
		limit = n
	}

	page, err := c.chatService.ListMessages(ctx.Request.Context(), a, id, helpers.ParseInt64Query(ctx, "before"), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, page, "Messages retrieved successfully")
}

// SendMessage posts a message to a room
// @Summary Send a message
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.Message} "Message sent"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /chat/rooms/{id}/messages [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	msg, err := c.chatService.SendMessage(ctx.Request.Context(), a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, msg, "Message sent")
}

// EditMessage edits the caller's message
// @Summary Edit a message
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param request body dto.EditMessageRequest true "New content"
// @Success 200 {object} dto.APIResponse{data=models.Message} "Message edited"
// @Failure 403 {object} dto.ErrorResponse "Sender only"
// @Router /chat/messages/{id} [put]
func (c *ChatController) EditMessage(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.EditMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	msg, err := c.chatService.EditMessage(ctx.Request.Context(), a, id, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, msg, "Message edited")
}

// DeleteMessage soft-deletes a message
// @Summary Delete a message
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse "Message deleted"
// @Failure 403 {object} dto.ErrorResponse "Sender, room owner or admin only"
// @Router /chat/messages/{id} [delete]
func (c *ChatController) DeleteMessage(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.chatService.DeleteMessage(ctx.Request.Context(), a, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Message deleted")
}

// ToggleReaction adds or removes an emoji reaction
// @Summary Toggle a reaction
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param request body dto.ReactionRequest true "Emoji"
// @Success 200 {object} dto.APIResponse{data=dto.ReactionResponse} "Reaction toggled"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /chat/messages/{id}/reactions [post]
func (c *ChatController) ToggleReaction(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReactionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.chatService.ToggleReaction(ctx.Request.Context(), a, id, req.Emoji)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Reaction updated")
}

// PinMessage pins a message
// @Summary Pin a message
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse "Message pinned"
// @Failure 403 {object} dto.ErrorResponse "Room owner or admin only"
// @Router /chat/messages/{id}/pin [post]
func (c *ChatController) PinMessage(ctx *gin.Context) {
	c.setPinned(ctx, true, "Message pinned")
}

// UnpinMessage unpins a message
// @Summary Unpin a message
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse "Message unpinned"
// @Failure 403 {object} dto.ErrorResponse "Room owner or admin only"
// @Router /chat/messages/{id}/pin [delete]
func (c *ChatController) UnpinMessage(ctx *gin.Context) {
	c.setPinned(ctx, false, "Message unpinned")
}

func (c *ChatController) setPinned(ctx *gin.Context, pinned bool, message string) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.chatService.SetPinned(ctx.Request.Context(), a, id, pinned); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, message)
}

// ListPinned lists pinned messages of a room
// @Summary List pinned messages
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Message} "Pinned messages"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /chat/rooms/{id}/pinned [get]
func (c *ChatController) ListPinned(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	msgs, err := c.chatService.ListPinned(ctx.Request.Context(), a, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, msgs, "Pinned messages retrieved successfully")
}

// MarkRead moves the caller's read marker forward
// @Summary Mark a room read
// @Description The marker never moves backwards
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body dto.ReadRequest true "Last read message"
// @Success 200 {object} dto.APIResponse{data=models.ReadStatus} "Read marker"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /chat/rooms/{id}/read [post]
func (c *ChatController) MarkRead(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReadRequest
	if !bindJSON(ctx, &req) {
		return
	}

	status, err := c.chatService.MarkRead(ctx.Request.Context(), a, id, req.MessageID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, status, "Read marker updated")
}
