package models

import "time"

// User is an account row from the users table
type User struct {
	ID            int64      `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	IsActive      bool       `json:"isActive" db:"is_active"`
	EmailVerified bool       `json:"emailVerified" db:"email_verified"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	Role    Role     `json:"role"`
	Profile *Profile `json:"profile,omitempty"`
}

// Profile holds the public facing details of a user
type Profile struct {
	UserID    int64     `json:"userId" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	FullName  string    `json:"fullName" db:"full_name"`
	Bio       *string   `json:"bio,omitempty" db:"bio"`
	Location  *string   `json:"location,omitempty" db:"location"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	AvatarURL *string   `json:"avatarUrl,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the compact author/participant shape embedded in other resources
type UserSummary struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	FullName  string  `json:"fullName"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// TokenPurpose distinguishes single-use user tokens
type TokenPurpose string

const (
	TokenPurposeEmailVerification TokenPurpose = "email_verification"
	TokenPurposePasswordReset     TokenPurpose = "password_reset"
)

// UserToken is a single-use email verification or password reset token
type UserToken struct {
	ID        int64        `db:"id"`
	UserID    int64        `db:"user_id"`
	Token     string       `db:"token"`
	Purpose   TokenPurpose `db:"purpose"`
	ExpiresAt time.Time    `db:"expires_at"`
	UsedAt    *time.Time   `db:"used_at"`
	CreatedAt time.Time    `db:"created_at"`
}

// TwoFactor is the user_2fa row. SecretRef is opaque and owned by the 2FA function.
type TwoFactor struct {
	UserID    int64      `db:"user_id"`
	SecretRef string     `db:"secret_ref"`
	Enabled   bool       `db:"enabled"`
	EnabledAt *time.Time `db:"enabled_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// VerificationBadge marks a user as verified for some badge type
type VerificationBadge struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	BadgeType string    `json:"badgeType" db:"badge_type"`
	GrantedBy *int64    `json:"grantedBy,omitempty" db:"granted_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ProfileUpdate carries optional profile changes. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName *string
	Username *string
	Bio      *string
	Location *string
	Phone    *string
}

// UserFilter narrows user listings
type UserFilter struct {
	Search     string
	Role       *Role
	ActiveOnly bool
}
