package models

import "time"

// PostStatus controls feed visibility
type PostStatus string

const (
	PostStatusPublished PostStatus = "published"
	PostStatusHidden    PostStatus = "hidden"
)

// Post is a feed entry
type Post struct {
	ID        int64      `json:"id" db:"id"`
	AuthorID  int64      `json:"authorId" db:"author_id"`
	Content   string     `json:"content" db:"content"`
	ImageURL  *string    `json:"imageUrl,omitempty" db:"image_url"`
	Status    PostStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`

	Author       *UserSummary `json:"author,omitempty"`
	LikeCount    int64        `json:"likeCount"`
	CommentCount int64        `json:"commentCount"`
	LikedByMe    bool         `json:"likedByMe"`
}

// Comment is a reply to a post
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"postId" db:"post_id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Author *UserSummary `json:"author,omitempty"`
}

// Announcement is an admin authored notice
type Announcement struct {
	ID        int64      `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Body      string     `json:"body" db:"body"`
	IsPinned  bool       `json:"isPinned" db:"is_pinned"`
	IsActive  bool       `json:"isActive" db:"is_active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedBy *int64     `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// Achievement is awarded to a user by an admin
type Achievement struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Icon        *string   `json:"icon,omitempty" db:"icon"`
	Points      int       `json:"points" db:"points"`
	AwardedBy   *int64    `json:"awardedBy,omitempty" db:"awarded_by"`
	AwardedAt   time.Time `json:"awardedAt" db:"awarded_at"`
}

// PostFilter narrows feed listings. A nil Status lists every status.
type PostFilter struct {
	AuthorID *int64
	Status   *PostStatus
	ViewerID int64
}
