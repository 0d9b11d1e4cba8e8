package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	roles map[int64]models.Role
	err   error
}

func (s *stubResolver) ActorFor(_ context.Context, userID int64) (appauth.Actor, error) {
	if s.err != nil {
		return appauth.Actor{}, s.err
	}
	role, ok := s.roles[userID]
	if !ok {
		return appauth.Actor{}, apperrors.ErrUserNotFound
	}
	return appauth.Actor{UserID: userID, Role: role}, nil
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "middleware-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "test",
	})
}

func accessToken(t *testing.T, jwt *auth.JWTService, id int64, role models.Role) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(&models.User{ID: id, Email: "u@example.org", Role: role})
	require.NoError(t, err)
	return pair.AccessToken
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newAuthRouter(m *AuthMiddleware, min models.Role) *gin.Engine {
	r := gin.New()
	r.GET("/private", m.JWTAuth(), m.RoleAtLeast(min), func(c *gin.Context) {
		actor, _ := CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{"role": actor.Role, "id": actor.UserID})
	})
	r.GET("/optional", m.OptionalAuth(), func(c *gin.Context) {
		_, ok := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	jwt := newTestJWT()
	// token still says viewer but the stored role is admin
	resolver := &stubResolver{roles: map[int64]models.Role{1: models.RoleAdmin, 2: models.RoleMember}}
	router := newAuthRouter(NewAuthMiddleware(jwt, resolver), models.RoleAdmin)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, rec).Error.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, rec).Error.Code)
	})

	t.Run("live role wins over token role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken(t, jwt, 1, models.RoleViewer))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"role":"admin"`)
	})

	t.Run("demoted user is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", accessToken(t, jwt, 2, models.RoleAdmin))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, rec).Error.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken(t, jwt, 99, models.RoleAdmin))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("optional auth lets anonymous through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/optional", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"authenticated":false`)
	})
}

// accessTable is an AccessReader over fixed rows
type accessTable map[int64]struct {
	role   models.Role
	active bool
}

func (a accessTable) GetAccess(_ context.Context, userID int64) (models.Role, bool, error) {
	row, ok := a[userID]
	if !ok {
		return "", false, apperrors.ErrUserNotFound
	}
	return row.role, row.active, nil
}

func TestJWTAuthDisabledAccount(t *testing.T) {
	jwt := newTestJWT()
	users := accessTable{1: {role: models.RoleAdmin, active: false}}
	router := newAuthRouter(NewAuthMiddleware(jwt, appauth.NewAuthorizationService(users)), models.RoleViewer)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, jwt, 1, models.RoleMember))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, dto.ErrorCodeAccountDisabled, decodeError(t, rec).Error.Code)
}

func TestResolveError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", apperrors.NewResourceNotFoundError("post not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"conflict", apperrors.NewConflictError("full"), http.StatusConflict, dto.ErrorCodeConflict},
		{"payment", apperrors.ErrPaymentFailed, http.StatusPaymentRequired, dto.ErrorCodePaymentFailed},
		{"quota", apperrors.ErrQuotaExceeded, http.StatusTooManyRequests, dto.ErrorCodeQuotaExceeded},
		{"external", apperrors.ErrExternalService, http.StatusBadGateway, dto.ErrorCodeExternalServiceError},
		{"wrapped", errors.Join(errors.New("ctx"), apperrors.ErrInvalidCredentials), http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ResolveError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}
}

func TestResolveErrorKeepsCustomMessage(t *testing.T) {
	_, detail := ResolveError(apperrors.NewResourceNotFoundError("event not found"))
	assert.Equal(t, "event not found", detail.Message)
}

type recordedError struct {
	status int
	path   string
}

type stubRecorder struct {
	calls []recordedError
}

func (s *stubRecorder) RecordServer(_ context.Context, e services.ServerError) {
	s.calls = append(s.calls, recordedError{status: e.Status, path: e.Path})
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestErrorRecorder(t *testing.T) {
	recorder := &stubRecorder{}
	r := gin.New()
	r.Use(ErrorRecorder(recorder))
	r.GET("/fail/:id", func(c *gin.Context) { HandleAPIError(c, errors.New("db down")) })
	r.GET("/missing", func(c *gin.Context) { HandleAPIError(c, apperrors.ErrResourceNotFound) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail/3", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, recordedError{status: http.StatusInternalServerError, path: "/fail/:id"}, recorder.calls[0])
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(testLogger()))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decodeError(t, rec).Error.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.org"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.org")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterWithoutRedisPassesThrough(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{Enabled: true, Capacity: 1}, nil)
	r := gin.New()
	r.GET("/x", limiter.Limit("test"), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitConfigNormalized(t *testing.T) {
	cfg := RateLimitConfig{RefillInterval: 2 * time.Second}.normalized()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.Equal(t, "rl", cfg.Prefix)
}
