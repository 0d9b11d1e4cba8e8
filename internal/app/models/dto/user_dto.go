package dto

import "github.com/parivartan/platform-api/internal/app/models"

// UpdateProfileRequest updates the caller's profile. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName" binding:"omitempty,min=2,max=120"`
	Username *string `json:"username" binding:"omitempty,username"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	Location *string `json:"location" binding:"omitempty,max=120"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
}

// PublicProfileResponse is what other users see
type PublicProfileResponse struct {
	Profile      *models.Profile             `json:"profile"`
	Role         models.Role                 `json:"role"`
	Badges       []*models.VerificationBadge `json:"badges"`
	Achievements []*models.Achievement       `json:"achievements"`
}

// SetRoleRequest changes a user's role
type SetRoleRequest struct {
	Role models.Role `json:"role" binding:"required,role"`
}

// SetStatusRequest activates or disables an account
type SetStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// GrantBadgeRequest grants a verification badge
type GrantBadgeRequest struct {
	UserID    int64  `json:"userId" binding:"required,min=1"`
	BadgeType string `json:"badgeType" binding:"required,max=50"`
}

// AwardAchievementRequest awards an achievement to a user
type AwardAchievementRequest struct {
	UserID      int64   `json:"userId" binding:"required,min=1"`
	Title       string  `json:"title" binding:"required,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Icon        *string `json:"icon" binding:"omitempty,max=100"`
	Points      int     `json:"points" binding:"min=0"`
}

// DirectoryEntry is one row of the member directory
type DirectoryEntry struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	FullName  string      `json:"fullName"`
	AvatarURL *string     `json:"avatarUrl,omitempty"`
	Location  *string     `json:"location,omitempty"`
	Role      models.Role `json:"role"`
}

// NewDirectoryEntry converts a user model, leaving out private fields
func NewDirectoryEntry(user *models.User) *DirectoryEntry {
	entry := &DirectoryEntry{ID: user.ID, Role: user.Role}
	if user.Profile != nil {
		entry.Username = user.Profile.Username
		entry.FullName = user.Profile.FullName
		entry.AvatarURL = user.Profile.AvatarURL
		entry.Location = user.Profile.Location
	}
	return entry
}
