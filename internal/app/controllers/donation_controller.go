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

// DonationController handles campaigns, donations and payment verification
type DonationController struct {
	donationService *services.DonationService
	logger          zerolog.Logger
}

// NewDonationController creates a new DonationController
func NewDonationController(donationService *services.DonationService, logger zerolog.Logger) *DonationController {
	return &DonationController{donationService: donationService, logger: logger}
}

// ListCampaigns lists campaigns
// @Summary List campaigns
// @Description Active campaigns for everyone. Staff also see inactive ones.
// @Tags donations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Campaign}} "Campaigns"
// @Router /campaigns [get]
func (c *DonationController) ListCampaigns(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.donationService.ListCampaigns(ctx.Request.Context(), viewer(ctx), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Campaigns retrieved successfully")
}

// GetCampaign returns one campaign
// @Summary Get a campaign
// @Description Includes raised amount and donor count
// @Tags donations
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=models.Campaign} "Campaign"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Router /campaigns/{id} [get]
func (c *DonationController) GetCampaign(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	campaign, err := c.donationService.GetCampaign(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, campaign, "Campaign retrieved successfully")
}

// CreateCampaign starts a campaign
// @Summary Create a campaign
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CampaignRequest true "Campaign"
// @Success 201 {object} dto.APIResponse{data=models.Campaign} "Campaign created"
// @Failure 400 {object} dto.ErrorResponse "Invalid goal or window"
// @Router /campaigns [post]
func (c *DonationController) CreateCampaign(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.CampaignRequest
	if !bindJSON(ctx, &req) {
		return
	}

	campaign, err := c.donationService.CreateCampaign(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, campaign, "Campaign created successfully")
}

// UpdateCampaign replaces campaign details
// @Summary Update a campaign
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campaign ID"
// @Param request body dto.CampaignRequest true "Campaign"
// @Success 200 {object} dto.APIResponse{data=models.Campaign} "Campaign updated"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Router /campaigns/{id} [put]
func (c *DonationController) UpdateCampaign(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CampaignRequest
	if !bindJSON(ctx, &req) {
		return
	}

	campaign, err := c.donationService.UpdateCampaign(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, campaign, "Campaign updated successfully")
}

// DeleteCampaign removes a campaign
// @Summary Delete a campaign
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campaign ID"
// @Success 200 {object} dto.APIResponse "Campaign deleted"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Failure 409 {object} dto.ErrorResponse "Campaign has donations"
// @Router /campaigns/{id} [delete]
func (c *DonationController) DeleteCampaign(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.donationService.DeleteCampaign(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Campaign deleted successfully")
}

// Donate opens a payment order for a donation
// @Summary Donate to a campaign
// @Description Creates a pending donation and a provider order. Complete it with POST /donations/{id}/verify.
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campaign ID"
// @Param request body dto.DonateRequest true "Donation (amount in minor units)"
// @Success 201 {object} dto.APIResponse{data=dto.DonateResponse} "Order created"
// @Failure 400 {object} dto.ErrorResponse "Amount too small or campaign closed"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Failure 502 {object} dto.ErrorResponse "Payment provider unavailable"
// @Router /campaigns/{id}/donations [post]
func (c *DonationController) Donate(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.DonateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	order, err := c.donationService.Donate(ctx.Request.Context(), a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, order, "Payment order created")
}

// VerifyPayment completes a donation
// @Summary Verify a payment
// @Description Idempotent for donations that are already completed
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Param request body dto.VerifyPaymentRequest true "Provider payment result"
// @Success 200 {object} dto.APIResponse{data=models.Donation} "Donation completed"
// @Failure 402 {object} dto.ErrorResponse "Payment not verified"
// @Failure 404 {object} dto.ErrorResponse "Donation not found"
// @Failure 502 {object} dto.ErrorResponse "Payment provider unavailable"
// @Router /donations/{id}/verify [post]
func (c *DonationController) VerifyPayment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.VerifyPaymentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	donation, err := c.donationService.VerifyPayment(ctx.Request.Context(), a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("donationID", donation.ID).Int64("userID", a.UserID).Msg("Donation verified")
	respondOK(ctx, donation, "Thank you for your donation")
}

// ListMine lists the caller's donations
// @Summary My donations
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Donation}} "Donations"
// @Router /me/donations [get]
func (c *DonationController) ListMine(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.donationService.ListMine(ctx.Request.Context(), a, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Donations retrieved successfully")
}

// ListDonations lists donations for administrators
// @Summary List donations
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Param campaignId query int false "Campaign filter"
// @Param status query string false "Status filter" Enums(pending, completed, failed)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Donation}} "Donations"
// @Router /admin/donations [get]
func (c *DonationController) ListDonations(ctx *gin.Context) {
	filter := models.DonationFilter{CampaignID: helpers.ParseInt64Query(ctx, "campaignId")}
	if raw := ctx.Query("status"); raw != "" {
		status := models.DonationStatus(raw)
		switch status {
		case models.DonationPending, models.DonationCompleted, models.DonationFailed:
			filter.Status = &status
		default:
			badRequest(ctx, "Invalid status", "status must be one of pending, completed, failed")
			return
		}
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.donationService.List(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Donations retrieved successfully")
}
