package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/filestorage"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/parivartan/platform-api/internal/pkg/websocket"
	"github.com/rs/zerolog"
)

// Moderation actions
const (
	ModerationHide    = "hide"
	ModerationPublish = "publish"
	ModerationDelete  = "delete"
)

// FeedService handles posts, comments, likes and announcements
type FeedService struct {
	postRepo         repositories.IPostRepository
	commentRepo      repositories.ICommentRepository
	announcementRepo repositories.IAnnouncementRepository
	storage          filestorage.FileStorage
	notifier         Notifier
	publisher        websocket.Publisher
	logger           zerolog.Logger
	now              func() time.Time
}

// NewFeedService creates a new FeedService
func NewFeedService(
	postRepo repositories.IPostRepository,
	commentRepo repositories.ICommentRepository,
	announcementRepo repositories.IAnnouncementRepository,
	storage filestorage.FileStorage,
	notifier Notifier,
	publisher websocket.Publisher,
	logger zerolog.Logger,
) *FeedService {
	return &FeedService{
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		announcementRepo: announcementRepo,
		storage:          storage,
		notifier:         notifier,
		publisher:        publisher,
		logger:           logger,
		now:              time.Now,
	}
}

// ListPosts lists the feed newest first. Only staff may see hidden posts.
func (s *FeedService) ListPosts(ctx context.Context, viewer appauth.Actor, authorID *int64, status *models.PostStatus, page, size int) (*dto.PaginatedResponse, error) {
	filter := models.PostFilter{AuthorID: authorID, Status: status, ViewerID: viewer.UserID}
	if !viewer.IsStaff() {
		published := models.PostStatusPublished
		filter.Status = &published
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	posts, total, err := s.postRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return paginate(posts, total, page, size), nil
}

// visiblePost loads a post the viewer is allowed to see
func (s *FeedService) visiblePost(ctx context.Context, viewer appauth.Actor, id int64) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewer.UserID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusPublished && !viewer.CanModify(post.AuthorID) {
		return nil, apperrors.NewResourceNotFoundError("post not found")
	}
	return post, nil
}

// GetPost returns one post
func (s *FeedService) GetPost(ctx context.Context, viewer appauth.Actor, id int64) (*models.Post, error) {
	return s.visiblePost(ctx, viewer, id)
}

// CreatePost publishes a post and announces it on the feed topic
func (s *FeedService) CreatePost(ctx context.Context, actor appauth.Actor, req *dto.PostRequest) (*models.Post, error) {
	post := &models.Post{
		AuthorID: actor.UserID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Status:   models.PostStatusPublished,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.postRepo.GetByID(ctx, post.ID, actor.UserID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, websocket.FeedTopic, websocket.EventPostCreated, created)
	return created, nil
}

// UpdatePost edits a post; owner or staff only
func (s *FeedService) UpdatePost(ctx context.Context, actor appauth.Actor, id int64, req *dto.PostRequest) (*models.Post, error) {
	post, err := s.visiblePost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(post.AuthorID) {
		return nil, apperrors.NewForbiddenError("you can only edit your own posts")
	}

	imageURL := req.ImageURL
	if imageURL == nil {
		imageURL = post.ImageURL
	}
	if err := s.postRepo.Update(ctx, id, req.Content, imageURL); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id, actor.UserID)
}

// UploadPostImage attaches an uploaded image to a post
func (s *FeedService) UploadPostImage(ctx context.Context, actor appauth.Actor, id int64, fileHeader *multipart.FileHeader) (*models.Post, error) {
	post, err := s.visiblePost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(post.AuthorID) {
		return nil, apperrors.NewForbiddenError("you can only edit your own posts")
	}

	info, err := s.storage.SaveImage(ctx, fileHeader, "posts")
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.SetImage(ctx, id, info.URL); err != nil {
		_ = s.storage.Delete(ctx, info.URL)
		return nil, err
	}
	s.deleteFile(ctx, post.ImageURL)

	post.ImageURL = &info.URL
	return post, nil
}

// DeletePost removes a post; owner or staff only
func (s *FeedService) DeletePost(ctx context.Context, actor appauth.Actor, id int64) error {
	post, err := s.visiblePost(ctx, actor, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(post.AuthorID) {
		return apperrors.NewForbiddenError("you can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.deleteFile(ctx, post.ImageURL)
	s.publisher.Publish(ctx, websocket.FeedTopic, websocket.EventPostDeleted, map[string]int64{"id": id})
	return nil
}

func (s *FeedService) deleteFile(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := s.storage.Delete(ctx, *url); err != nil {
		s.logger.Debug().Err(err).Str("url", *url).Msg("Post image not removed")
	}
}

// ToggleLike likes or unlikes a post. A new like notifies the author.
func (s *FeedService) ToggleLike(ctx context.Context, actor appauth.Actor, postID int64) (*dto.LikeResponse, error) {
	post, err := s.visiblePost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	liked, count, err := s.postRepo.ToggleLike(ctx, postID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if liked && post.AuthorID != actor.UserID {
		s.notifier.Notify(ctx, newNotification(post.AuthorID, models.NotificationPostLiked,
			"Someone liked your post", "", fmt.Sprintf("/posts/%d", postID)))
	}
	return &dto.LikeResponse{Liked: liked, LikeCount: count}, nil
}

// ListComments lists the comments of a visible post, oldest first
func (s *FeedService) ListComments(ctx context.Context, viewer appauth.Actor, postID int64, page, size int) (*dto.PaginatedResponse, error) {
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	comments, total, err := s.commentRepo.ListByPost(ctx, postID, offset, limit)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return paginate(comments, total, page, size), nil
}

// AddComment comments on a post and notifies its author
func (s *FeedService) AddComment(ctx context.Context, actor appauth.Actor, postID int64, req *dto.CommentRequest) (*models.Comment, error) {
	post, err := s.visiblePost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{PostID: postID, AuthorID: actor.UserID, Content: req.Content}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	if post.AuthorID != actor.UserID {
		s.notifier.Notify(ctx, newNotification(post.AuthorID, models.NotificationPostCommented,
			"New comment on your post", truncate(req.Content, 140), fmt.Sprintf("/posts/%d", postID)))
	}
	return comment, nil
}

// DeleteComment removes a comment; owner or staff only
func (s *FeedService) DeleteComment(ctx context.Context, actor appauth.Actor, id int64) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(comment.AuthorID) {
		return apperrors.NewForbiddenError("you can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, id)
}

// Moderate applies one moderation action to many posts
func (s *FeedService) Moderate(ctx context.Context, actor appauth.Actor, req *dto.ModerationRequest) (*dto.ModerationResponse, error) {
	var affected int64
	var err error
	switch req.Action {
	case ModerationHide:
		affected, err = s.postRepo.SetStatus(ctx, req.PostIDs, models.PostStatusHidden)
	case ModerationPublish:
		affected, err = s.postRepo.SetStatus(ctx, req.PostIDs, models.PostStatusPublished)
	case ModerationDelete:
		affected, err = s.postRepo.DeleteMany(ctx, req.PostIDs)
	default:
		return nil, apperrors.NewBadRequestError("unknown moderation action")
	}
	if err != nil {
		return nil, err
	}

	if req.Action != ModerationPublish {
		for _, id := range req.PostIDs {
			s.publisher.Publish(ctx, websocket.FeedTopic, websocket.EventPostDeleted, map[string]int64{"id": id})
		}
	}

	s.logger.Info().
		Int64("actorID", actor.UserID).
		Str("action", req.Action).
		Int("requested", len(req.PostIDs)).
		Int64("affected", affected).
		Msg("Posts moderated")
	return &dto.ModerationResponse{Action: req.Action, Affected: affected}, nil
}

// ListAnnouncements returns live announcements, pinned first
func (s *FeedService) ListAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	items, err := s.announcementRepo.ListActive(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Announcement{}
	}
	return items, nil
}

// CreateAnnouncement stores a new announcement
func (s *FeedService) CreateAnnouncement(ctx context.Context, actor appauth.Actor, req *dto.AnnouncementRequest) (*models.Announcement, error) {
	a := &models.Announcement{
		Title:     req.Title,
		Body:      req.Body,
		IsPinned:  req.IsPinned,
		IsActive:  boolOr(req.IsActive, true),
		ExpiresAt: req.ExpiresAt,
		CreatedBy: &actor.UserID,
	}
	if err := s.announcementRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAnnouncement replaces an announcement
func (s *FeedService) UpdateAnnouncement(ctx context.Context, id int64, req *dto.AnnouncementRequest) (*models.Announcement, error) {
	a, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Title = req.Title
	a.Body = req.Body
	a.IsPinned = req.IsPinned
	a.IsActive = boolOr(req.IsActive, a.IsActive)
	a.ExpiresAt = req.ExpiresAt
	if err := s.announcementRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAnnouncement removes an announcement
func (s *FeedService) DeleteAnnouncement(ctx context.Context, id int64) error {
	return s.announcementRepo.Delete(ctx, id)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
