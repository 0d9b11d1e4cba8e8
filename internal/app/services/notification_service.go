package services

import (
	"context"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/parivartan/platform-api/internal/pkg/websocket"
	"github.com/rs/zerolog"
)

// Notifier creates in-app notifications. Delivery is best effort and never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification)
}

// NotificationService stores notifications and pushes them to the owner's socket
type NotificationService struct {
	repo      repositories.INotificationRepository
	publisher websocket.Publisher
	logger    zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repositories.INotificationRepository, publisher websocket.Publisher, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// newNotification builds a notification; empty body and link are left unset
func newNotification(userID int64, kind, title, body, link string) *models.Notification {
	n := &models.Notification{UserID: userID, Type: kind, Title: title}
	if body != "" {
		n.Body = &body
	}
	if link != "" {
		n.Link = &link
	}
	return n
}

// Notify stores n and publishes notification.created on the user's topic
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).Int64("userID", n.UserID).Str("type", n.Type).Msg("Error creating notification")
		return
	}
	s.publisher.Publish(ctx, websocket.UserTopic(n.UserID), websocket.EventNotificationCreated, n)
}

// List returns a page of the user's notifications with the unread counter
func (s *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool, page, size int) (*dto.NotificationListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.List(ctx, userID, unreadOnly, offset, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return &dto.NotificationListResponse{
		Items:       items,
		Pagination:  helpers.NewPaginationInfo(total, page, limit),
		UnreadCount: unread,
	}, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks everything read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, id, userID)
}
