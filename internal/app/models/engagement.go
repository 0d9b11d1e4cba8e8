package models

import "time"

// Notification types
const (
	NotificationPostLiked        = "post_liked"
	NotificationPostCommented    = "post_commented"
	NotificationAchievement      = "achievement_awarded"
	NotificationTaskAssigned     = "task_assigned"
	NotificationDonationReceived = "donation_completed"
	NotificationRoleChanged      = "role_changed"
	NotificationBadgeGranted     = "badge_granted"
)

// Notification is an in-app notification for one user
type Notification struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"userId" db:"user_id"`
	Type      string     `json:"type" db:"type"`
	Title     string     `json:"title" db:"title"`
	Body      *string    `json:"body,omitempty" db:"body"`
	Link      *string    `json:"link,omitempty" db:"link"`
	IsRead    bool       `json:"isRead" db:"is_read"`
	ReadAt    *time.Time `json:"readAt,omitempty" db:"read_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// PopupAudience selects who sees a popup
type PopupAudience string

const (
	PopupAudienceAll     PopupAudience = "all"
	PopupAudienceMembers PopupAudience = "members"
)

// Popup is an admin managed modal announcement
type Popup struct {
	ID        int64         `json:"id" db:"id"`
	Title     string        `json:"title" db:"title"`
	Content   string        `json:"content" db:"content"`
	ImageURL  *string       `json:"imageUrl,omitempty" db:"image_url"`
	CTALabel  *string       `json:"ctaLabel,omitempty" db:"cta_label"`
	CTAURL    *string       `json:"ctaUrl,omitempty" db:"cta_url"`
	Audience  PopupAudience `json:"audience" db:"audience"`
	StartsAt  *time.Time    `json:"startsAt,omitempty" db:"starts_at"`
	EndsAt    *time.Time    `json:"endsAt,omitempty" db:"ends_at"`
	IsActive  bool          `json:"isActive" db:"is_active"`
	CreatedBy *int64        `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// LiveAt reports whether the popup is active and inside its display window
func (p *Popup) LiveAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && !now.Before(*p.EndsAt) {
		return false
	}
	return true
}

// VisibleTo reports whether a user with the given role is in the popup audience
func (p *Popup) VisibleTo(role Role) bool {
	if p.Audience == PopupAudienceMembers {
		return role.AtLeast(RoleMember)
	}
	return true
}

// Slideshow is a home page carousel slide
type Slideshow struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Caption   *string   `json:"caption,omitempty" db:"caption"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	LinkURL   *string   `json:"linkUrl,omitempty" db:"link_url"`
	Position  int       `json:"position" db:"position"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
