package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/rs/zerolog"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService      *services.AuthService
	twoFactorService *services.TwoFactorService
	logger           zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, twoFactorService *services.TwoFactorService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:      authService,
		twoFactorService: twoFactorService,
		logger:           logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a viewer account with a profile and sends a verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "Registration successful, verification email sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Email or username already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", user.ID).Msg("User registered")
	respondCreated(ctx, user, "Registration successful. Please check your email to verify your account.")
}

// VerifyEmail confirms an email address
// @Summary Verify email address
// @Description Consumes the single-use verification token sent by email
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} dto.APIResponse "Email verified"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /auth/verify-email [get]
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		badRequest(ctx, "Verification token is required", "token query parameter is missing")
		return
	}

	if err := c.authService.VerifyEmail(ctx.Request.Context(), token); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Email verified successfully")
}

// ResendVerification sends a new verification email
// @Summary Resend verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Account email"
// @Success 200 {object} dto.APIResponse "Verification email sent if the account exists"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /auth/resend-verification [post]
func (c *AuthController) ResendVerification(ctx *gin.Context) {
	var req dto.EmailRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResendVerification(ctx.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "If the account exists and is unverified, a new verification email has been sent")
}

// Login handles user login
// @Summary User login
// @Description Authenticates with email and password. Accounts with 2FA get a challenge token instead of tokens.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful or 2FA required"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	if resp.TwoFactorRequired {
		respondOK(ctx, resp, "Two-factor authentication required")
		return
	}
	respondOK(ctx, resp, "Login successful")
}

// LoginTwoFactor completes a login with a 2FA code
// @Summary Complete 2FA login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.TwoFactorLoginRequest true "Challenge token and code"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or code"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired challenge"
// @Failure 502 {object} dto.ErrorResponse "2FA verification unavailable"
// @Router /auth/2fa/login [post]
func (c *AuthController) LoginTwoFactor(ctx *gin.Context) {
	var req dto.TwoFactorLoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.LoginTwoFactor(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp, "Login successful")
}

// RefreshToken rotates a refresh token
// @Summary Refresh access token
// @Description Issues a new token pair and revokes the presented refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Token refreshed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid, expired or revoked refresh token"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(ctx, &req) {
		return
	}

	tokens, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, tokens, "Token refreshed successfully")
}

// Logout revokes a refresh token
// @Summary Logout
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), req.RefreshToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Logged out successfully")
}

// ForgotPassword starts a password reset
// @Summary Request password reset
// @Description Always succeeds so that account existence is not disclosed
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Account email"
// @Success 200 {object} dto.APIResponse "Reset email sent if the account exists"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /auth/forgot-password [post]
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.EmailRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ForgotPassword(ctx.Request.Context(), req.Email); err != nil {
		c.logger.Error().Err(err).Msg("Forgot password failed")
	}
	respondOK(ctx, nil, "If an account exists for this email, a password reset link has been sent")
}

// ResetPassword sets a new password
// @Summary Reset password
// @Description Consumes the reset token, sets the new password and revokes every session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.APIResponse "Password reset"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /auth/reset-password [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Password has been reset. Please log in again.")
}

// TwoFactorStatus reports whether 2FA is enabled
// @Summary Get 2FA status
// @Tags twofa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.TwoFactorStatusResponse} "2FA status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /me/2fa [get]
func (c *AuthController) TwoFactorStatus(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	status, err := c.twoFactorService.Status(ctx.Request.Context(), a.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, status, "Two-factor status retrieved")
}

// TwoFactorSetup starts 2FA enrollment
// @Summary Start 2FA setup
// @Description Returns the otpauth URL and QR code for an authenticator app. 2FA stays disabled until confirmed.
// @Tags twofa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.TwoFactorSetupResponse} "Setup started"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "2FA already enabled"
// @Failure 502 {object} dto.ErrorResponse "2FA function unavailable"
// @Router /me/2fa/setup [post]
func (c *AuthController) TwoFactorSetup(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	setup, err := c.twoFactorService.Setup(ctx.Request.Context(), a.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, setup, "Scan the QR code and confirm with a code")
}

// TwoFactorEnable confirms enrollment
// @Summary Enable 2FA
// @Tags twofa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TwoFactorCodeRequest true "Authenticator code"
// @Success 200 {object} dto.APIResponse "2FA enabled"
// @Failure 400 {object} dto.ErrorResponse "Invalid code"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /me/2fa/enable [post]
func (c *AuthController) TwoFactorEnable(ctx *gin.Context) {
	c.twoFactorCode(ctx, c.twoFactorService.Enable, "Two-factor authentication enabled")
}

// TwoFactorDisable turns 2FA off
// @Summary Disable 2FA
// @Tags twofa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TwoFactorCodeRequest true "Authenticator code"
// @Success 200 {object} dto.APIResponse "2FA disabled"
// @Failure 400 {object} dto.ErrorResponse "Invalid code"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /me/2fa/disable [post]
func (c *AuthController) TwoFactorDisable(ctx *gin.Context) {
	c.twoFactorCode(ctx, c.twoFactorService.Disable, "Two-factor authentication disabled")
}

func (c *AuthController) twoFactorCode(ctx *gin.Context, apply func(ctx context.Context, userID int64, code string) error, message string) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.TwoFactorCodeRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := apply(ctx.Request.Context(), a.UserID, req.Code); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, message))
}
