package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// ActorResolver loads the live role of an authenticated user
type ActorResolver interface {
	ActorFor(ctx context.Context, userID int64) (appauth.Actor, error)
}

// AuthMiddleware authenticates requests and gates routes by role
type AuthMiddleware struct {
	jwtService *auth.JWTService
	actors     ActorResolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, actors ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		actors:     actors,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// tokenFromRequest reads the bearer token. Raw or quoted tokens are accepted for Swagger UI.
func tokenFromRequest(c *gin.Context) (string, bool) {
	header := strings.Trim(strings.TrimSpace(c.GetHeader("Authorization")), "\"'")
	if header == "" {
		return "", false
	}
	token, err := auth.ExtractBearerToken(header)
	if err != nil {
		return "", false
	}
	return token, true
}

// authenticate validates the token and stores the caller with the role currently on record
func (m *AuthMiddleware) authenticate(c *gin.Context, token string) error {
	claims, err := m.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		return err
	}

	actor, err := m.actors.ActorFor(c.Request.Context(), claims.UserID)
	if err != nil {
		return err
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRole, actor.Role)
	return nil
}

// JWTAuth requires a valid access token
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := tokenFromRequest(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing or malformed")
			return
		}

		if err := m.authenticate(c, token); err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, apperrors.ErrUserNotFound), errors.Is(err, apperrors.ErrResourceNotFound):
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			default:
				HandleAPIError(c, err)
				c.Abort()
			}
			return
		}

		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets anonymous requests through
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := tokenFromRequest(c); ok {
			_ = m.authenticate(c, token)
		}
		c.Next()
	}
}

// RoleAtLeast requires JWTAuth and a role at or above min
func (m *AuthMiddleware) RoleAtLeast(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
			return
		}

		if err := actor.RequireRole(min); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// CurrentUserID returns the authenticated user id
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// CurrentActor returns the authenticated caller with the live role
func CurrentActor(c *gin.Context) (appauth.Actor, bool) {
	id, ok := CurrentUserID(c)
	if !ok {
		return appauth.Actor{}, false
	}
	role, _ := c.Get(ContextRole)
	r, _ := role.(models.Role)
	return appauth.Actor{UserID: id, Role: r}, true
}
