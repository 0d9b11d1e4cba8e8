package dto

import "time"

// PostRequest creates or updates a post
type PostRequest struct {
	Content  string  `json:"content" binding:"required,min=1,max=5000"`
	ImageURL *string `json:"imageUrl" binding:"omitempty,url"`
}

// CommentRequest adds a comment
type CommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// LikeResponse is the state after a like toggle
type LikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// AnnouncementRequest creates or replaces an announcement
type AnnouncementRequest struct {
	Title     string     `json:"title" binding:"required,max=200"`
	Body      string     `json:"body" binding:"required,max=5000"`
	IsPinned  bool       `json:"isPinned"`
	IsActive  *bool      `json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// ModerationRequest applies one action to many posts
type ModerationRequest struct {
	PostIDs []int64 `json:"postIds" binding:"required,min=1,max=200,dive,min=1"`
	Action  string  `json:"action" binding:"required,oneof=hide publish delete"`
}

// ModerationResponse reports how many posts were affected
type ModerationResponse struct {
	Action   string `json:"action"`
	Affected int64  `json:"affected"`
}
