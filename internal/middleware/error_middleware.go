package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
)

type errorMapping struct {
	targets []error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first match wins
var errorMappings = []errorMapping{
	{[]error{apperrors.ErrUserNotFound, apperrors.ErrResourceNotFound}, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{[]error{apperrors.ErrAccountDisabled}, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{[]error{apperrors.ErrEmailNotVerified}, http.StatusForbidden, dto.ErrorCodeEmailNotVerified, "Email not verified"},
	{[]error{apperrors.ErrPermissionDenied}, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{[]error{apperrors.ErrInvalidCredentials}, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{[]error{apperrors.ErrTokenExpired}, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{[]error{apperrors.ErrTokenNotFound}, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{[]error{apperrors.ErrTokenInvalid, apperrors.ErrTokenRevoked, apperrors.ErrInvalidFormat}, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{[]error{apperrors.ErrTwoFactorInvalid}, http.StatusUnauthorized, dto.ErrorCodeTwoFactorInvalid, "Invalid two-factor code"},
	{[]error{apperrors.ErrInvalidEmailToken, apperrors.ErrInvalidPasswordResetToken}, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired token"},
	{[]error{apperrors.ErrValidationFailed, apperrors.ErrInvalidEmail, apperrors.ErrInvalidPassword}, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{[]error{apperrors.ErrBadRequest}, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{[]error{apperrors.ErrEmailAlreadyExists, apperrors.ErrUsernameTaken, apperrors.ErrResourceAlreadyExists}, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{[]error{apperrors.ErrEmailAlreadyVerified, apperrors.ErrConflict}, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{[]error{apperrors.ErrPaymentFailed}, http.StatusPaymentRequired, dto.ErrorCodePaymentFailed, "Payment verification failed"},
	{[]error{apperrors.ErrQuotaExceeded}, http.StatusTooManyRequests, dto.ErrorCodeQuotaExceeded, "Quota exceeded"},
	{[]error{apperrors.ErrRateLimited}, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "Too many requests"},
	{[]error{apperrors.ErrExternalService}, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "External service error"},
}

// ResolveError maps err to an HTTP status and error detail
func ResolveError(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				message := apperrors.MessageOf(err, m.message)
				if err == target {
					message = err.Error()
				}
				return m.status, dto.NewErrorDetail(m.code, message)
			}
		}
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// HandleAPIError writes the error envelope for err. Unmapped errors become 500 and are
// attached to the context for the error recorder.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ResolveError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

// ServerErrorRecorder persists failed requests
type ServerErrorRecorder interface {
	RecordServer(ctx context.Context, e services.ServerError)
}

// ErrorRecorder records every 5xx response after the handler chain finishes
func ErrorRecorder(recorder ServerErrorRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusInternalServerError {
			return
		}

		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		}
		entry := services.ServerError{
			Err:       err,
			Method:    c.Request.Method,
			Path:      c.FullPath(),
			Status:    status,
			UserAgent: c.Request.UserAgent(),
			RequestID: c.GetString(ContextRequestID),
		}
		if entry.Path == "" {
			entry.Path = c.Request.URL.Path
		}
		if id, ok := CurrentUserID(c); ok {
			entry.UserID = &id
		}
		recorder.RecordServer(context.WithoutCancel(c.Request.Context()), entry)
	}
}
