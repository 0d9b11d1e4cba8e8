package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	require.NotPanics(t, func() {
		SetupRouter(router,
			&Controllers{},
			middleware.NewAuthMiddleware(nil, nil),
			middleware.NewRateLimiter(middleware.RateLimitConfig{}, nil),
			&websocket.Handler{},
		)
	})
	return router
}

func TestSetupRouterRegistersRoutes(t *testing.T) {
	router := newTestRouter(t)

	registered := map[string]bool{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/2fa/login",
		"GET /api/v1/ws",
		"GET /api/v1/me",
		"POST /api/v1/me/2fa/setup",
		"POST /api/v1/posts/:id/like",
		"PUT /api/v1/events/:id/rsvp",
		"DELETE /api/v1/chat/rooms/:id/participants/:userId",
		"POST /api/v1/chat/messages/:id/pin",
		"POST /api/v1/campaigns/:id/donations",
		"POST /api/v1/donations/:id/verify",
		"GET /api/v1/popups/active",
		"GET /api/v1/slideshows",
		"POST /api/v1/chatbot/ask",
		"POST /api/v1/error-logs",
		"POST /api/v1/admin/posts/moderate",
		"PUT /api/v1/admin/events/:id/attendance",
		"DELETE /api/v1/admin/badges/:userId/:badgeType",
		"GET /api/v1/admin/analytics",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/v1/me", "/api/v1/notifications", "/api/v1/admin/users", "/api/v1/chat/rooms"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
