package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/auth"
	"github.com/parivartan/platform-api/internal/pkg/email"
	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/rs/zerolog"
)

const (
	emailVerificationTTL = 24 * time.Hour
	passwordResetTTL     = time.Hour
	userTokenBytes       = 32
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo      repositories.IUserRepository
	tokenRepo     repositories.ITokenRepository
	userTokenRepo repositories.IUserTokenRepository
	twoFactorRepo repositories.ITwoFactorRepository
	jwtService    *auth.JWTService
	functions     functions.Invoker
	mailer        email.Mailer
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	userTokenRepo repositories.IUserTokenRepository,
	twoFactorRepo repositories.ITwoFactorRepository,
	jwtService *auth.JWTService,
	invoker functions.Invoker,
	mailer email.Mailer,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		userTokenRepo: userTokenRepo,
		twoFactorRepo: twoFactorRepo,
		jwtService:    jwtService,
		functions:     invoker,
		mailer:        mailer,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates a viewer account and sends the verification email
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	emailAddr := normalizeEmail(req.Email)

	exists, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:        emailAddr,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}
	profile := &models.Profile{
		Username: req.Username,
		FullName: req.FullName,
	}
	if err := s.userRepo.CreateAccount(ctx, user, profile, models.RoleViewer); err != nil {
		return nil, err
	}
	user.Role = models.RoleViewer
	user.Profile = profile

	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Error sending verification email")
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User registered")
	return dto.NewUserResponse(user), nil
}

func (s *AuthService) issueUserToken(ctx context.Context, userID int64, purpose models.TokenPurpose, ttl time.Duration) (string, error) {
	value, err := auth.GenerateSecureToken(userTokenBytes)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	token := &models.UserToken{
		UserID:    userID,
		Token:     value,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.userTokenRepo.Create(ctx, token); err != nil {
		return "", err
	}
	return value, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) error {
	token, err := s.issueUserToken(ctx, user.ID, models.TokenPurposeEmailVerification, emailVerificationTTL)
	if err != nil {
		return err
	}
	return s.mailer.SendVerificationEmail(ctx, user.Email, displayName(user), token)
}

// consumeUserToken validates and marks a single-use token, mapping every failure to invalid
func (s *AuthService) consumeUserToken(ctx context.Context, value string, purpose models.TokenPurpose, invalid error) (*models.UserToken, error) {
	token, err := s.userTokenRepo.GetByToken(ctx, value, purpose)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if token.UsedAt != nil || !s.now().Before(token.ExpiresAt) {
		return nil, invalid
	}
	if err := s.userTokenRepo.MarkUsed(ctx, token.ID); err != nil {
		if errors.Is(err, apperrors.ErrTokenRevoked) {
			return nil, invalid
		}
		return nil, err
	}
	return token, nil
}

// VerifyEmail consumes a verification token and marks the address verified
func (s *AuthService) VerifyEmail(ctx context.Context, value string) error {
	token, err := s.consumeUserToken(ctx, value, models.TokenPurposeEmailVerification, apperrors.ErrInvalidEmailToken)
	if err != nil {
		return err
	}
	if err := s.userRepo.MarkEmailVerified(ctx, token.UserID); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", token.UserID).Msg("Verified user could not be reloaded")
		return nil
	}
	if err := s.mailer.SendWelcomeEmail(ctx, user.Email, displayName(user)); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Error sending welcome email")
	}
	return nil
}

// ResendVerification issues a fresh verification token. Unknown addresses succeed silently.
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}
	if err := s.userTokenRepo.InvalidateForUser(ctx, user.ID, models.TokenPurposeEmailVerification); err != nil {
		return err
	}
	return s.sendVerification(ctx, user)
}

// Login checks credentials. Users with 2FA enabled get a challenge token instead of a token pair.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	tf, err := s.twoFactorRepo.Get(ctx, user.ID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	if tf != nil && tf.Enabled {
		challenge, err := s.jwtService.GenerateChallengeToken(user)
		if err != nil {
			return nil, fmt.Errorf("error generating challenge token: %w", err)
		}
		return &dto.AuthResponse{TwoFactorRequired: true, ChallengeToken: challenge}, nil
	}

	return s.completeLogin(ctx, user)
}

// LoginTwoFactor finishes a login started by Login with a one-time code
func (s *AuthService) LoginTwoFactor(ctx context.Context, req *dto.TwoFactorLoginRequest) (*dto.AuthResponse, error) {
	claims, err := s.jwtService.ValidateChallengeToken(req.ChallengeToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	tf, err := s.twoFactorRepo.Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrTwoFactorInvalid
		}
		return nil, err
	}
	if !tf.Enabled {
		return nil, apperrors.ErrTwoFactorInvalid
	}
	if err := verifyTwoFactorCode(ctx, s.functions, user.ID, tf.SecretRef, req.Code); err != nil {
		return nil, err
	}

	return s.completeLogin(ctx, user)
}

func (s *AuthService) completeLogin(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Error updating last login")
	}
	return &dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}
	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}

// RefreshToken rotates a refresh token: the old one is revoked and a new pair issued
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, err := s.tokenRepo.ConsumeToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		_ = s.tokenRepo.RevokeAllUserTokens(ctx, user.ID)
		return nil, apperrors.ErrAccountDisabled
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokenRepo.RevokeToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return err
	}
	return nil
}

// ForgotPassword emails a reset link. It reports success for unknown addresses too.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Error().Err(err).Msg("Error loading user for password reset")
		}
		return nil
	}
	if !user.IsActive {
		return nil
	}

	if err := s.userTokenRepo.InvalidateForUser(ctx, user.ID, models.TokenPurposePasswordReset); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Error invalidating reset tokens")
		return nil
	}
	token, err := s.issueUserToken(ctx, user.ID, models.TokenPurposePasswordReset, passwordResetTTL)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Error issuing reset token")
		return nil
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, displayName(user), token); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Error sending password reset email")
	}
	return nil
}

// ResetPassword sets a new password from a reset token and signs the user out everywhere
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	token, err := s.consumeUserToken(ctx, req.Token, models.TokenPurposePasswordReset, apperrors.ErrInvalidPasswordResetToken)
	if err != nil {
		return err
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, token.UserID, hashedPassword); err != nil {
		return err
	}
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, token.UserID); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", token.UserID).Msg("Password reset")
	return nil
}
