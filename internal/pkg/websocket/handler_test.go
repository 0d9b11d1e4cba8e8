package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubTokens struct{ userID int64 }

func (s stubTokens) ValidateAndExtractClaims(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: s.userID}, nil
}

type stubAccounts struct{ err error }

func (s stubAccounts) CurrentRole(context.Context, int64) (models.Role, error) {
	return models.RoleMember, s.err
}

func handshake(t *testing.T, accounts AccountChecker, url string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(context.Background(), NewHub(zerolog.Nop()), nil, stubTokens{userID: 3}, accounts, stubRooms{}, nil, zerolog.Nop())
	router := gin.New()
	router.GET("/ws", h.HandleConnection)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHandleConnection_RejectsBeforeUpgrade(t *testing.T) {
	t.Run("invalid token", func(t *testing.T) {
		rec := handshake(t, stubAccounts{}, "/ws?token=bad")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("disabled account", func(t *testing.T) {
		rec := handshake(t, stubAccounts{err: apperrors.ErrAccountDisabled}, "/ws?token=good")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "AUTH_009")
	})

	t.Run("deleted account", func(t *testing.T) {
		rec := handshake(t, stubAccounts{err: apperrors.ErrUserNotFound}, "/ws?token=good")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("lookup failure", func(t *testing.T) {
		rec := handshake(t, stubAccounts{err: errors.New("db down")}, "/ws?token=good")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
