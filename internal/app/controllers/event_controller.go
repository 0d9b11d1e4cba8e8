package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// EventController handles events, RSVPs and attendance sheets
type EventController struct {
	eventService *services.EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService *services.EventService, logger zerolog.Logger) *EventController {
	return &EventController{eventService: eventService, logger: logger}
}

// ListEvents lists events by start time
// @Summary List events
// @Tags events
// @Produce json
// @Param upcoming query bool false "Only events that have not started"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Event}} "Events"
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.eventService.List(ctx.Request.Context(), viewer(ctx), helpers.ParseBoolQuery(ctx, "upcoming"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Events retrieved successfully")
}

// GetEvent returns one event
// @Summary Get an event
// @Description Includes RSVP counts and, when authenticated, the caller's RSVP
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=models.Event} "Event"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	event, err := c.eventService.Get(ctx.Request.Context(), viewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, event, "Event retrieved successfully")
}

// CreateEvent creates an event
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=models.Event} "Event created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.EventRequest
	if !bindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.Create(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, event, "Event created successfully")
}

// UpdateEvent replaces an event
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.EventRequest true "Event"
// @Success 200 {object} dto.APIResponse{data=models.Event} "Event updated"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 409 {object} dto.ErrorResponse "Capacity below current attendees"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.EventRequest
	if !bindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.Update(ctx.Request.Context(), a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, event, "Event updated successfully")
}

// DeleteEvent removes an event
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse "Event deleted"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Event deleted successfully")
}

// SetRSVP records the caller's RSVP
// @Summary RSVP to an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.RSVPRequest true "RSVP status"
// @Success 200 {object} dto.APIResponse{data=models.Event} "RSVP saved"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 409 {object} dto.ErrorResponse "Event is full"
// @Router /events/{id}/rsvp [put]
func (c *EventController) SetRSVP(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.RSVPRequest
	if !bindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.SetRSVP(ctx.Request.Context(), a, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, event, "RSVP saved")
}

// DeleteRSVP withdraws the caller's RSVP
// @Summary Withdraw RSVP
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse "RSVP removed"
// @Failure 404 {object} dto.ErrorResponse "RSVP not found"
// @Router /events/{id}/rsvp [delete]
func (c *EventController) DeleteRSVP(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.DeleteRSVP(ctx.Request.Context(), a, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "RSVP removed")
}

// ListRSVPs lists RSVPs of an event
// @Summary List RSVPs
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]models.EventRSVP} "RSVPs"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/rsvps [get]
func (c *EventController) ListRSVPs(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	rsvps, err := c.eventService.ListRSVPs(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rsvps, "RSVPs retrieved successfully")
}

// RecordAttendance upserts an attendance sheet
// @Summary Record attendance
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.AttendanceRequest true "Attendance entries"
// @Success 200 {object} dto.APIResponse{data=[]models.Attendance} "Attendance recorded"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /admin/events/{id}/attendance [put]
func (c *EventController) RecordAttendance(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AttendanceRequest
	if !bindJSON(ctx, &req) {
		return
	}

	sheet, err := c.eventService.RecordAttendance(ctx.Request.Context(), a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sheet, "Attendance recorded successfully")
}

// ListAttendance returns the attendance sheet of an event
// @Summary Get attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Attendance} "Attendance"
// @Router /admin/events/{id}/attendance [get]
func (c *EventController) ListAttendance(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	sheet, err := c.eventService.ListAttendance(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sheet, "Attendance retrieved successfully")
}

// MyAttendance lists the caller's attendance
// @Summary My attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Attendance} "Attendance"
// @Router /me/attendance [get]
func (c *EventController) MyAttendance(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	items, err := c.eventService.MyAttendance(ctx.Request.Context(), a.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, items, "Attendance retrieved successfully")
}
