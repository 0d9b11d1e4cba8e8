package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// StudioController handles AI image generation and the FAQ chatbot
type StudioController struct {
	studioService  *services.StudioService
	chatbotService *services.ChatbotService
	logger         zerolog.Logger
}

// NewStudioController creates a new StudioController
func NewStudioController(studioService *services.StudioService, chatbotService *services.ChatbotService, logger zerolog.Logger) *StudioController {
	return &StudioController{
		studioService:  studioService,
		chatbotService: chatbotService,
		logger:         logger,
	}
}

// GenerateImage generates an image from a prompt
// @Summary Generate an image
// @Description Counts against the daily quota on success. Admins are unlimited.
// @Tags studio
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateImageRequest true "Prompt"
// @Success 201 {object} dto.APIResponse{data=dto.GenerateImageResponse} "Image generated"
// @Failure 429 {object} dto.ErrorResponse "Daily limit reached"
// @Failure 502 {object} dto.ErrorResponse "Generation failed"
// @Router /studio/images [post]
func (c *StudioController) GenerateImage(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.GenerateImageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.studioService.GenerateImage(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, result, "Image generated successfully")
}

// Usage reports the caller's quota
// @Summary Studio usage
// @Tags studio
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudioUsageResponse} "Usage"
// @Router /studio/usage [get]
func (c *StudioController) Usage(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	usage, err := c.studioService.Usage(ctx.Request.Context(), a)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, usage, "Usage retrieved successfully")
}

// ListUsage lists every generation
// @Summary List AI usage
// @Tags studio
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.AIUsage}} "Usage records"
// @Router /admin/ai-usage [get]
func (c *StudioController) ListUsage(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.studioService.ListAll(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Usage retrieved successfully")
}

// Ask answers a question from the FAQ
// @Summary Ask the chatbot
// @Tags chatbot
// @Accept json
// @Produce json
// @Param request body dto.AskRequest true "Question"
// @Success 200 {object} dto.APIResponse{data=dto.AskResponse} "Answer"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /chatbot/ask [post]
func (c *StudioController) Ask(ctx *gin.Context) {
	var req dto.AskRequest
	if !bindJSON(ctx, &req) {
		return
	}

	answer, err := c.chatbotService.Ask(ctx.Request.Context(), req.Question)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, answer, "Answer retrieved")
}

// ListFAQ lists active FAQ entries
// @Summary List FAQ
// @Tags chatbot
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.ChatbotFAQ} "FAQ"
// @Router /chatbot/faq [get]
func (c *StudioController) ListFAQ(ctx *gin.Context) {
	items, err := c.chatbotService.ListActive(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, items, "FAQ retrieved successfully")
}

// ListAllFAQ lists every FAQ entry
// @Summary List all FAQ entries
// @Tags chatbot
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ChatbotFAQ} "FAQ"
// @Router /admin/faq [get]
func (c *StudioController) ListAllFAQ(ctx *gin.Context) {
	items, err := c.chatbotService.ListAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, items, "FAQ retrieved successfully")
}

// CreateFAQ creates an FAQ entry
// @Summary Create an FAQ entry
// @Tags chatbot
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FAQRequest true "FAQ entry"
// @Success 201 {object} dto.APIResponse{data=models.ChatbotFAQ} "FAQ entry created"
// @Router /admin/faq [post]
func (c *StudioController) CreateFAQ(ctx *gin.Context) {
	var req dto.FAQRequest
	if !bindJSON(ctx, &req) {
		return
	}

	item, err := c.chatbotService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, item, "FAQ entry created successfully")
}

// UpdateFAQ replaces an FAQ entry
// @Summary Update an FAQ entry
// @Tags chatbot
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "FAQ ID"
// @Param request body dto.FAQRequest true "FAQ entry"
// @Success 200 {object} dto.APIResponse{data=models.ChatbotFAQ} "FAQ entry updated"
// @Failure 404 {object} dto.ErrorResponse "FAQ entry not found"
// @Router /admin/faq/{id} [put]
func (c *StudioController) UpdateFAQ(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.FAQRequest
	if !bindJSON(ctx, &req) {
		return
	}

	item, err := c.chatbotService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, item, "FAQ entry updated successfully")
}

// DeleteFAQ removes an FAQ entry
// @Summary Delete an FAQ entry
// @Tags chatbot
// @Produce json
// @Security BearerAuth
// @Param id path int true "FAQ ID"
// @Success 200 {object} dto.APIResponse "FAQ entry deleted"
// @Failure 404 {object} dto.ErrorResponse "FAQ entry not found"
// @Router /admin/faq/{id} [delete]
func (c *StudioController) DeleteFAQ(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.chatbotService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "FAQ entry deleted successfully")
}
