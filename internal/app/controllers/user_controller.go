package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// UserController handles profiles, the member directory and role administration
type UserController struct {
	userService *services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new user controller
func NewUserController(userService *services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetMe returns the authenticated user's account
// @Summary Get my profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	user, err := c.userService.GetMe(ctx.Request.Context(), a.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user, "Profile retrieved successfully")
}

// UpdateMe updates profile fields
// @Summary Update my profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Username already taken"
// @Router /me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.UpdateMe(ctx.Request.Context(), a.UserID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user, "Profile updated successfully")
}

// UploadAvatar stores a new avatar image
// @Summary Upload my avatar
// @Tags profiles
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=models.Profile} "Avatar updated"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid file"
// @Router /me/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	file, err := ctx.FormFile("avatar")
	if err != nil {
		badRequest(ctx, "Avatar file is required", err.Error())
		return
	}

	profile, err := c.userService.UploadAvatar(ctx.Request.Context(), a.UserID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, profile, "Avatar updated successfully")
}

// GetProfile returns a public profile
// @Summary Get a public profile
// @Description Includes role, verification badges and achievements
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.PublicProfileResponse} "Profile retrieved"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /profiles/{id} [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.userService.GetPublicProfile(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, profile, "Profile retrieved successfully")
}

// Directory lists members
// @Summary Member directory
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or username"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.DirectoryEntry}} "Directory page"
// @Router /profiles [get]
func (c *UserController) Directory(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.userService.Directory(ctx.Request.Context(), ctx.Query("search"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Directory retrieved successfully")
}

// ListAchievements lists a user's achievements
// @Summary List achievements
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Achievement} "Achievements"
// @Router /profiles/{id}/achievements [get]
func (c *UserController) ListAchievements(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	achievements, err := c.userService.ListAchievements(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, achievements, "Achievements retrieved successfully")
}

// ListUsers lists accounts for administrators
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Email, name or username"
// @Param role query string false "Role filter" Enums(viewer, member, admin, super_admin)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.UserResponse}} "Users"
// @Failure 400 {object} dto.ErrorResponse "Unknown role"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Router /admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	var role *models.Role
	if raw := ctx.Query("role"); raw != "" {
		r := models.Role(raw)
		if !r.Valid() {
			badRequest(ctx, "Invalid role", "role must be one of viewer, member, admin, super_admin")
			return
		}
		role = &r
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.userService.ListUsers(ctx.Request.Context(), ctx.Query("search"), role, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Users retrieved successfully")
}

// SetRole changes a user's role
// @Summary Change a user's role
// @Description Admins may grant viewer or member to non-staff users. Super admins may grant any role. The last super admin cannot be demoted.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.SetRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse "Role updated"
// @Failure 403 {object} dto.ErrorResponse "Not allowed"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Last super admin"
// @Router /admin/users/{id}/role [put]
func (c *UserController) SetRole(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SetRoleRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.userService.SetRole(ctx.Request.Context(), a, id, req.Role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("actorID", a.UserID).Int64("targetID", id).Str("role", string(req.Role)).Msg("Role changed")
	respondOK(ctx, nil, "Role updated successfully")
}

// SetStatus activates or disables an account
// @Summary Activate or disable a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.SetStatusRequest true "Account status"
// @Success 200 {object} dto.APIResponse "Status updated"
// @Failure 403 {object} dto.ErrorResponse "Not allowed"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/status [put]
func (c *UserController) SetStatus(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SetStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.userService.SetStatus(ctx.Request.Context(), a, id, *req.IsActive); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Account status updated successfully")
}

// GrantBadge awards a verification badge
// @Summary Grant a verification badge
// @Tags achievements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GrantBadgeRequest true "Badge"
// @Success 201 {object} dto.APIResponse{data=models.VerificationBadge} "Badge granted"
// @Failure 409 {object} dto.ErrorResponse "Badge already granted"
// @Router /admin/badges [post]
func (c *UserController) GrantBadge(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.GrantBadgeRequest
	if !bindJSON(ctx, &req) {
		return
	}

	badge, err := c.userService.GrantBadge(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, badge, "Badge granted successfully")
}

// RevokeBadge removes a verification badge
// @Summary Revoke a verification badge
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param badgeType path string true "Badge type"
// @Success 200 {object} dto.APIResponse "Badge revoked"
// @Failure 404 {object} dto.ErrorResponse "Badge not found"
// @Router /admin/badges/{userId}/{badgeType} [delete]
func (c *UserController) RevokeBadge(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	if err := c.userService.RevokeBadge(ctx.Request.Context(), userID, ctx.Param("badgeType")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Badge revoked successfully")
}

// AwardAchievement awards an achievement and notifies the user
// @Summary Award an achievement
// @Tags achievements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AwardAchievementRequest true "Achievement"
// @Success 201 {object} dto.APIResponse{data=models.Achievement} "Achievement awarded"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/achievements [post]
func (c *UserController) AwardAchievement(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.AwardAchievementRequest
	if !bindJSON(ctx, &req) {
		return
	}

	achievement, err := c.userService.AwardAchievement(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, achievement, "Achievement awarded successfully")
}

// DeleteAchievement removes an achievement
// @Summary Delete an achievement
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Achievement ID"
// @Success 200 {object} dto.APIResponse "Achievement deleted"
// @Failure 404 {object} dto.ErrorResponse "Achievement not found"
// @Router /admin/achievements/{id} [delete]
func (c *UserController) DeleteAchievement(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.DeleteAchievement(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Achievement deleted successfully")
}
