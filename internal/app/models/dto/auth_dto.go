package dto

import "github.com/parivartan/platform-api/internal/app/models"

// RegisterRequest creates a new account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"asha@example.org"`
	Password string `json:"password" binding:"required,password" example:"s3cretPass"`
	FullName string `json:"fullName" binding:"required,min=2,max=120" example:"Asha Rao"`
	Username string `json:"username" binding:"required,username" example:"asha_rao"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TwoFactorLoginRequest completes a login that required a second factor
type TwoFactorLoginRequest struct {
	ChallengeToken string `json:"challengeToken" binding:"required"`
	Code           string `json:"code" binding:"required,min=6,max=10"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// AuthResponse is the login result. Either Token or ChallengeToken is set.
type AuthResponse struct {
	Token             *TokenResponse `json:"token,omitempty"`
	User              *UserResponse  `json:"user,omitempty"`
	TwoFactorRequired bool           `json:"twoFactorRequired"`
	ChallengeToken    string         `json:"challengeToken,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// EmailRequest carries a single email address
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest sets a new password from a reset token
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,password"`
}

// TwoFactorCodeRequest carries a one-time code
type TwoFactorCodeRequest struct {
	Code string `json:"code" binding:"required,min=6,max=10"`
}

// TwoFactorSetupResponse is returned unchanged from the setup function
type TwoFactorSetupResponse struct {
	OtpauthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode,omitempty"`
}

// TwoFactorStatusResponse reports whether 2FA is on
type TwoFactorStatusResponse struct {
	Enabled bool `json:"enabled"`
}

// UserResponse represents the authenticated user's view of their account
type UserResponse struct {
	ID            int64                       `json:"id"`
	Email         string                      `json:"email"`
	Role          models.Role                 `json:"role"`
	IsActive      bool                        `json:"isActive"`
	EmailVerified bool                        `json:"emailVerified"`
	Profile       *models.Profile             `json:"profile,omitempty"`
	Badges        []*models.VerificationBadge `json:"badges,omitempty"`
}

// NewUserResponse converts a user model
func NewUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		IsActive:      user.IsActive,
		EmailVerified: user.EmailVerified,
		Profile:       user.Profile,
	}
}
