package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// FeedController handles posts, comments, likes, announcements and moderation
type FeedController struct {
	feedService *services.FeedService
	logger      zerolog.Logger
}

// NewFeedController creates a new FeedController
func NewFeedController(feedService *services.FeedService, logger zerolog.Logger) *FeedController {
	return &FeedController{feedService: feedService, logger: logger}
}

// ListPosts lists the feed
// @Summary List posts
// @Description Newest first with like and comment counts. Only staff see hidden posts and may filter by status.
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param authorId query int false "Author filter"
// @Param status query string false "Status filter (staff only)" Enums(published, hidden)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Post}} "Posts"
// @Router /posts [get]
func (c *FeedController) ListPosts(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	var status *models.PostStatus
	if raw := ctx.Query("status"); raw != "" {
		s := models.PostStatus(raw)
		if s != models.PostStatusPublished && s != models.PostStatusHidden {
			badRequest(ctx, "Invalid status", "status must be published or hidden")
			return
		}
		status = &s
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.feedService.ListPosts(ctx.Request.Context(), a, helpers.ParseInt64Query(ctx, "authorId"), status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Posts retrieved successfully")
}

// GetPost returns one post
// @Summary Get a post
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=models.Post} "Post"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [get]
func (c *FeedController) GetPost(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	post, err := c.feedService.GetPost(ctx.Request.Context(), a, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, post, "Post retrieved successfully")
}

// CreatePost publishes a post
// @Summary Create a post
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PostRequest true "Post"
// @Success 201 {object} dto.APIResponse{data=models.Post} "Post created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Member role required"
// @Router /posts [post]
func (c *FeedController) CreatePost(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.PostRequest
	if !bindJSON(ctx, &req) {
		return
	}

	post, err := c.feedService.CreatePost(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, post, "Post created successfully")
}

// UpdatePost edits a post
// @Summary Update a post
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.PostRequest true "Post"
// @Success 200 {object} dto.APIResponse{data=models.Post} "Post updated"
// @Failure 403 {object} dto.ErrorResponse "Owner or admin only"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [put]
func (c *FeedController) UpdatePost(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.PostRequest
	if !bindJSON(ctx, &req) {
		return
	}

	post, err := c.feedService.UpdatePost(ctx.Request.Context(), a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, post, "Post updated successfully")
}

// UploadPostImage attaches an image to a post
// @Summary Upload a post image
// @Tags feed
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param image formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=models.Post} "Image attached"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid file"
// @Failure 403 {object} dto.ErrorResponse "Owner or admin only"
// @Router /posts/{id}/image [post]
func (c *FeedController) UploadPostImage(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	file, err := ctx.FormFile("image")
	if err != nil {
		badRequest(ctx, "Image file is required", err.Error())
		return
	}

	post, err := c.feedService.UploadPostImage(ctx.Request.Context(), a, id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, post, "Image uploaded successfully")
}

// DeletePost removes a post
// @Summary Delete a post
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse "Post deleted"
// @Failure 403 {object} dto.ErrorResponse "Owner or admin only"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [delete]
func (c *FeedController) DeletePost(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.feedService.DeletePost(ctx.Request.Context(), a, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Post deleted successfully")
}

// ToggleLike likes or unlikes a post
// @Summary Toggle like
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse} "Like toggled"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/like [post]
func (c *FeedController) ToggleLike(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	result, err := c.feedService.ToggleLike(ctx.Request.Context(), a, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Like updated")
}

// ListComments lists comments of a post
// @Summary List comments
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Comment}} "Comments"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/comments [get]
func (c *FeedController) ListComments(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.feedService.ListComments(ctx.Request.Context(), a, id, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Comments retrieved successfully")
}

// AddComment comments on a post
// @Summary Add a comment
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.CommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment} "Comment created"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/comments [post]
func (c *FeedController) AddComment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	comment, err := c.feedService.AddComment(ctx.Request.Context(), a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, comment, "Comment added successfully")
}

// DeleteComment removes a comment
// @Summary Delete a comment
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} dto.APIResponse "Comment deleted"
// @Failure 403 {object} dto.ErrorResponse "Owner or admin only"
// @Failure 404 {object} dto.ErrorResponse "Comment not found"
// @Router /comments/{id} [delete]
func (c *FeedController) DeleteComment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.feedService.DeleteComment(ctx.Request.Context(), a, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Comment deleted successfully")
}

// Moderate hides, publishes or deletes posts in bulk
// @Summary Moderate posts
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ModerationRequest true "Post ids and action"
// @Success 200 {object} dto.APIResponse{data=dto.ModerationResponse} "Posts moderated"
// @Failure 400 {object} dto.ErrorResponse "Invalid action"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Router /admin/posts/moderate [post]
func (c *FeedController) Moderate(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.ModerationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.feedService.Moderate(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Posts moderated successfully")
}

// ListAnnouncements lists live announcements
// @Summary List announcements
// @Description Active and unexpired, pinned first
// @Tags announcements
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Announcement} "Announcements"
// @Router /announcements [get]
func (c *FeedController) ListAnnouncements(ctx *gin.Context) {
	items, err := c.feedService.ListAnnouncements(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, items, "Announcements retrieved successfully")
}

// CreateAnnouncement creates an announcement
// @Summary Create an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AnnouncementRequest true "Announcement"
// @Success 201 {object} dto.APIResponse{data=models.Announcement} "Announcement created"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Router /announcements [post]
func (c *FeedController) CreateAnnouncement(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.AnnouncementRequest
	if !bindJSON(ctx, &req) {
		return
	}

	item, err := c.feedService.CreateAnnouncement(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, item, "Announcement created successfully")
}

// UpdateAnnouncement replaces an announcement
// @Summary Update an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Param request body dto.AnnouncementRequest true "Announcement"
// @Success 200 {object} dto.APIResponse{data=models.Announcement} "Announcement updated"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Router /announcements/{id} [put]
func (c *FeedController) UpdateAnnouncement(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AnnouncementRequest
	if !bindJSON(ctx, &req) {
		return
	}

	item, err := c.feedService.UpdateAnnouncement(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, item, "Announcement updated successfully")
}

// DeleteAnnouncement removes an announcement
// @Summary Delete an announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.APIResponse "Announcement deleted"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Router /announcements/{id} [delete]
func (c *FeedController) DeleteAnnouncement(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.feedService.DeleteAnnouncement(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Announcement deleted successfully")
}
