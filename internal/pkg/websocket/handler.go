package websocket

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// TokenValidator turns an access token into claims
type TokenValidator interface {
	ValidateAndExtractClaims(token string) (*auth.Claims, error)
}

// AccountChecker re-reads an account at handshake time so disabled users
// cannot reconnect with a still valid token
type AccountChecker interface {
	CurrentRole(ctx context.Context, userID int64) (models.Role, error)
}

// Handler upgrades authenticated requests to WebSocket connections
type Handler struct {
	hub       *Hub
	publisher Publisher
	tokens    TokenValidator
	accounts  AccountChecker
	rooms     RoomAuthorizer
	upgrader  websocket.Upgrader
	baseCtx   context.Context
	logger    zerolog.Logger
}

// NewHandler creates a new WebSocket handler. baseCtx bounds the lifetime of client goroutines.
func NewHandler(
	baseCtx context.Context,
	hub *Hub,
	publisher Publisher,
	tokens TokenValidator,
	accounts AccountChecker,
	rooms RoomAuthorizer,
	allowedOrigins []string,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		hub:       hub,
		publisher: publisher,
		tokens:    tokens,
		accounts:  accounts,
		rooms:     rooms,
		upgrader:  newUpgrader(allowedOrigins),
		baseCtx:   baseCtx,
		logger:    logger,
	}
}

// HandleConnection godoc
// @Summary Open the real-time event stream
// @Description Upgrades to a WebSocket. The socket receives the user and feed topics; send {"type":"subscribe","roomId":N} to follow a chat room.
// @Tags realtime
// @Param token query string true "Access token"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Account is disabled"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token, _ = auth.ExtractBearerToken(c.GetHeader("Authorization"))
	}

	claims, err := h.tokens.ValidateAndExtractClaims(token)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid or missing token")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	if _, err := h.accounts.CurrentRole(c.Request.Context(), claims.UserID); err != nil {
		status, code, msg := http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid or missing token"
		if errors.Is(err, apperrors.ErrAccountDisabled) {
			status, code, msg = http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"
		}
		c.AbortWithStatusJSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, msg)))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, h.publisher, h.rooms, conn, claims.UserID, h.logger)
	if !h.hub.attach(client) {
		h.logger.Warn().Int64("userID", claims.UserID).Msg("Hub stopped, closing new WebSocket connection")
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h.baseCtx)

	h.logger.Info().
		Int64("userID", claims.UserID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
