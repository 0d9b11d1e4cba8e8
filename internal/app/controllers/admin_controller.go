package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

const defaultPurgeDays = 30

// AdminController handles error logs and the analytics dashboard
type AdminController struct {
	errorLogService  *services.ErrorLogService
	analyticsService *services.AnalyticsService
	logger           zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(errorLogService *services.ErrorLogService, analyticsService *services.AnalyticsService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		errorLogService:  errorLogService,
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// ReportError stores a client side error
// @Summary Report a client error
// @Description Authentication is optional. Rate limited per caller.
// @Tags error-logs
// @Accept json
// @Produce json
// @Param request body dto.ClientErrorRequest true "Error report"
// @Success 201 {object} dto.APIResponse{data=models.ErrorLog} "Error recorded"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /error-logs [post]
func (c *AdminController) ReportError(ctx *gin.Context) {
	var req dto.ClientErrorRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if req.UserAgent == nil {
		if ua := ctx.Request.UserAgent(); ua != "" {
			req.UserAgent = &ua
		}
	}

	var userID *int64
	if id, ok := middleware.CurrentUserID(ctx); ok {
		userID = &id
	}

	entry, err := c.errorLogService.RecordClient(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, entry, "Error recorded")
}

// ListErrorLogs lists recorded errors
// @Summary List error logs
// @Tags error-logs
// @Produce json
// @Security BearerAuth
// @Param source query string false "Source filter" Enums(client, server)
// @Param severity query string false "Severity filter" Enums(info, warning, error, critical)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.ErrorLog}} "Error logs"
// @Router /admin/error-logs [get]
func (c *AdminController) ListErrorLogs(ctx *gin.Context) {
	var source *models.ErrorSource
	if raw := ctx.Query("source"); raw != "" {
		s := models.ErrorSource(raw)
		if s != models.ErrorSourceClient && s != models.ErrorSourceServer {
			badRequest(ctx, "Invalid source", "source must be client or server")
			return
		}
		source = &s
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.errorLogService.List(ctx.Request.Context(), source, ctx.Query("severity"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Error logs retrieved successfully")
}

// PurgeErrorLogs deletes old error logs
// @Summary Purge error logs
// @Tags error-logs
// @Produce json
// @Security BearerAuth
// @Param olderThanDays query int false "Delete entries older than this many days" default(30)
// @Success 200 {object} dto.APIResponse{data=dto.PurgeResponse} "Entries deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid day count"
// @Router /admin/error-logs [delete]
func (c *AdminController) PurgeErrorLogs(ctx *gin.Context) {
	days := defaultPurgeDays
	if raw := ctx.Query("olderThanDays"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(ctx, "Invalid olderThanDays", "olderThanDays must be a number")
			return
		}
		days = n
	}

	result, err := c.errorLogService.Purge(ctx.Request.Context(), days)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Error logs purged")
}

// Analytics returns the dashboard totals
// @Summary Dashboard analytics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Analytics} "Totals"
// @Router /admin/analytics [get]
func (c *AdminController) Analytics(ctx *gin.Context) {
	snapshot, err := c.analyticsService.Snapshot(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, snapshot, "Analytics retrieved successfully")
}
