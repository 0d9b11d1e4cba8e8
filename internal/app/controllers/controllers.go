// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
)

// bindJSON binds the body into req and writes the validation envelope on failure
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// pathID reads a positive id path parameter
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, ok := helpers.ParseIDParam(ctx, name)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
	}
	return id, ok
}

// actor returns the authenticated caller. Routes behind JWTAuth always have one.
func actor(ctx *gin.Context) (appauth.Actor, bool) {
	a, ok := middleware.CurrentActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
	}
	return a, ok
}

// viewer returns the caller, or an anonymous actor on public routes
func viewer(ctx *gin.Context) appauth.Actor {
	a, _ := middleware.CurrentActor(ctx)
	return a
}

func badRequest(ctx *gin.Context, message, details string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, message).WithDetails(details)
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

func respondOK(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data, message))
}

func respondCreated(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(data, message))
}
