package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/middleware"
)

// EngagementController handles popups and the home slideshow
type EngagementController struct {
	popupService     *services.PopupService
	slideshowService *services.SlideshowService
}

// NewEngagementController creates a new EngagementController
func NewEngagementController(popupService *services.PopupService, slideshowService *services.SlideshowService) *EngagementController {
	return &EngagementController{
		popupService:     popupService,
		slideshowService: slideshowService,
	}
}

// ActivePopups lists popups the caller should see
// @Summary Active popups
// @Description Live, in the caller's audience and not yet viewed
// @Tags popups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Popup} "Popups"
// @Router /popups/active [get]
func (c *EngagementController) ActivePopups(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	popups, err := c.popupService.Active(ctx.Request.Context(), a)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, popups, "Popups retrieved successfully")
}

// RecordPopupView marks a popup as seen
// @Summary Record a popup view
// @Tags popups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Popup ID"
// @Success 200 {object} dto.APIResponse "View recorded"
// @Failure 404 {object} dto.ErrorResponse "Popup not found"
// @Router /popups/{id}/view [post]
func (c *EngagementController) RecordPopupView(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.popupService.RecordView(ctx.Request.Context(), a, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "View recorded")
}

// ListPopups lists every popup
// @Summary List popups
// @Tags popups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Popup} "Popups"
// @Router /admin/popups [get]
func (c *EngagementController) ListPopups(ctx *gin.Context) {
	popups, err := c.popupService.ListAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, popups, "Popups retrieved successfully")
}

// GetPopup returns one popup
// @Summary Get a popup
// @Tags popups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Popup ID"
// @Success 200 {object} dto.APIResponse{data=models.Popup} "Popup"
// @Failure 404 {object} dto.ErrorResponse "Popup not found"
// @Router /admin/popups/{id} [get]
func (c *EngagementController) GetPopup(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	popup, err := c.popupService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, popup, "Popup retrieved successfully")
}

// CreatePopup creates a popup
// @Summary Create a popup
// @Tags popups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PopupRequest true "Popup"
// @Success 201 {object} dto.APIResponse{data=models.Popup} "Popup created"
// @Failure 400 {object} dto.ErrorResponse "Invalid window"
// @Router /admin/popups [post]
func (c *EngagementController) CreatePopup(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.PopupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	popup, err := c.popupService.Create(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, popup, "Popup created successfully")
}

// UpdatePopup replaces a popup
// @Summary Update a popup
// @Tags popups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Popup ID"
// @Param request body dto.PopupRequest true "Popup"
// @Success 200 {object} dto.APIResponse{data=models.Popup} "Popup updated"
// @Failure 404 {object} dto.ErrorResponse "Popup not found"
// @Router /admin/popups/{id} [put]
func (c *EngagementController) UpdatePopup(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.PopupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	popup, err := c.popupService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, popup, "Popup updated successfully")
}

// DeletePopup removes a popup
// @Summary Delete a popup
// @Tags popups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Popup ID"
// @Success 200 {object} dto.APIResponse "Popup deleted"
// @Failure 404 {object} dto.ErrorResponse "Popup not found"
// @Router /admin/popups/{id} [delete]
func (c *EngagementController) DeletePopup(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.popupService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Popup deleted successfully")
}

// ActiveSlides lists the public slideshow
// @Summary Home slideshow
// @Description Active slides ordered by position
// @Tags slideshows
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Slideshow} "Slides"
// @Router /slideshows [get]
func (c *EngagementController) ActiveSlides(ctx *gin.Context) {
	slides, err := c.slideshowService.ListActive(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, slides, "Slides retrieved successfully")
}

// ListSlides lists every slide
// @Summary List slides
// @Tags slideshows
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Slideshow} "Slides"
// @Router /admin/slideshows [get]
func (c *EngagementController) ListSlides(ctx *gin.Context) {
	slides, err := c.slideshowService.ListAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, slides, "Slides retrieved successfully")
}

// CreateSlide creates a slide
// @Summary Create a slide
// @Tags slideshows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SlideshowRequest true "Slide"
// @Success 201 {object} dto.APIResponse{data=models.Slideshow} "Slide created"
// @Router /admin/slideshows [post]
func (c *EngagementController) CreateSlide(ctx *gin.Context) {
	var req dto.SlideshowRequest
	if !bindJSON(ctx, &req) {
		return
	}

	slide, err := c.slideshowService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, slide, "Slide created successfully")
}

// UpdateSlide replaces a slide
// @Summary Update a slide
// @Tags slideshows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Param request body dto.SlideshowRequest true "Slide"
// @Success 200 {object} dto.APIResponse{data=models.Slideshow} "Slide updated"
// @Failure 404 {object} dto.ErrorResponse "Slide not found"
// @Router /admin/slideshows/{id} [put]
func (c *EngagementController) UpdateSlide(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SlideshowRequest
	if !bindJSON(ctx, &req) {
		return
	}

	slide, err := c.slideshowService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, slide, "Slide updated successfully")
}

// UploadSlideImage stores a slide image
// @Summary Upload a slide image
// @Tags slideshows
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Param image formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=models.Slideshow} "Image uploaded"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid file"
// @Router /admin/slideshows/{id}/image [post]
func (c *EngagementController) UploadSlideImage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	file, err := ctx.FormFile("image")
	if err != nil {
		badRequest(ctx, "Image file is required", err.Error())
		return
	}

	slide, err := c.slideshowService.UploadImage(ctx.Request.Context(), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, slide, "Image uploaded successfully")
}

// DeleteSlide removes a slide
// @Summary Delete a slide
// @Tags slideshows
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Success 200 {object} dto.APIResponse "Slide deleted"
// @Failure 404 {object} dto.ErrorResponse "Slide not found"
// @Router /admin/slideshows/{id} [delete]
func (c *EngagementController) DeleteSlide(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.slideshowService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Slide deleted successfully")
}
