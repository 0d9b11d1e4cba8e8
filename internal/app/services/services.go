package services

import (
	"strings"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
)

// Services holds every application service
type Services struct {
	AuthService         *AuthService
	TwoFactorService    *TwoFactorService
	UserService         *UserService
	NotificationService *NotificationService
	FeedService         *FeedService
	EventService        *EventService
	ChatService         *ChatService
	PopupService        *PopupService
	SlideshowService    *SlideshowService
	DonationService     *DonationService
	TaskService         *TaskService
	StudioService       *StudioService
	ChatbotService      *ChatbotService
	ErrorLogService     *ErrorLogService
	AnalyticsService    *AnalyticsService
}

// paginate wraps a page of items with its pagination metadata
func paginate(items interface{}, total int64, page, size int) *dto.PaginatedResponse {
	_, limit := helpers.CalculateOffsetLimit(page, size)
	resp := dto.NewPaginatedResponse(items, helpers.NewPaginationInfo(total, page, limit))
	return &resp
}

func displayName(user *models.User) string {
	if user.Profile != nil && user.Profile.FullName != "" {
		return user.Profile.FullName
	}
	return user.Email
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func stringPtr(s string) *string {
	return &s
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
