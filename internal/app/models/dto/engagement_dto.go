package dto

import (
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
)

// PopupRequest creates or replaces a popup
type PopupRequest struct {
	Title    string               `json:"title" binding:"required,max=200"`
	Content  string               `json:"content" binding:"required,max=5000"`
	ImageURL *string              `json:"imageUrl" binding:"omitempty,url"`
	CTALabel *string              `json:"ctaLabel" binding:"omitempty,max=60"`
	CTAURL   *string              `json:"ctaUrl" binding:"omitempty,url"`
	Audience models.PopupAudience `json:"audience" binding:"omitempty,oneof=all members"`
	StartsAt *time.Time           `json:"startsAt"`
	EndsAt   *time.Time           `json:"endsAt"`
	IsActive *bool                `json:"isActive"`
}

// SlideshowRequest creates or replaces a slide
type SlideshowRequest struct {
	Title    string  `json:"title" binding:"required,max=200"`
	Caption  *string `json:"caption" binding:"omitempty,max=500"`
	ImageURL string  `json:"imageUrl" binding:"omitempty,url"`
	LinkURL  *string `json:"linkUrl" binding:"omitempty,url"`
	Position int     `json:"position" binding:"min=0"`
	IsActive *bool   `json:"isActive"`
}

// NotificationListResponse is a page of notifications plus the unread counter
type NotificationListResponse struct {
	Items       []*models.Notification `json:"items"`
	Pagination  PaginationInfo         `json:"pagination"`
	UnreadCount int64                  `json:"unreadCount"`
}

// CountResponse carries a single counter
type CountResponse struct {
	Count int64 `json:"count"`
}
