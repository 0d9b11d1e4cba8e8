package services

import (
	"context"
	"time"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// EventService handles events, RSVPs and attendance
type EventService struct {
	eventRepo repositories.IEventRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repositories.IEventRepository, logger zerolog.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// List lists events by start time; upcoming restricts to events not yet started
func (s *EventService) List(ctx context.Context, viewer appauth.Actor, upcoming bool, page, size int) (*dto.PaginatedResponse, error) {
	var from *time.Time
	if upcoming {
		now := s.now()
		from = &now
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	events, total, err := s.eventRepo.List(ctx, from, viewer.UserID, offset, limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.Event{}
	}
	return paginate(events, total, page, size), nil
}

// Get returns an event with RSVP counts and the viewer's own RSVP
func (s *EventService) Get(ctx context.Context, viewer appauth.Actor, id int64) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, id, viewer.UserID)
}

func validateEventWindow(req *dto.EventRequest) error {
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		return apperrors.NewBadRequestError("event end must not precede its start")
	}
	return nil
}

// Create schedules a new event
func (s *EventService) Create(ctx context.Context, actor appauth.Actor, req *dto.EventRequest) (*models.Event, error) {
	if err := validateEventWindow(req); err != nil {
		return nil, err
	}
	event := &models.Event{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		Capacity:      req.Capacity,
		CoverImageURL: req.CoverImageURL,
		CreatedBy:     &actor.UserID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Update replaces an event
func (s *EventService) Update(ctx context.Context, actor appauth.Actor, id int64, req *dto.EventRequest) (*models.Event, error) {
	if err := validateEventWindow(req); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	event.Title = req.Title
	event.Description = req.Description
	event.Location = req.Location
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.Capacity = req.Capacity
	event.CoverImageURL = req.CoverImageURL
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event with its RSVPs and attendance
func (s *EventService) Delete(ctx context.Context, id int64) error {
	return s.eventRepo.Delete(ctx, id)
}

// SetRSVP records the caller's RSVP. Going is refused when the event is full.
func (s *EventService) SetRSVP(ctx context.Context, actor appauth.Actor, eventID int64, status models.RSVPStatus) (*models.Event, error) {
	if err := s.eventRepo.SetRSVP(ctx, eventID, actor.UserID, status); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, eventID, actor.UserID)
}

// DeleteRSVP withdraws the caller's RSVP
func (s *EventService) DeleteRSVP(ctx context.Context, actor appauth.Actor, eventID int64) error {
	return s.eventRepo.DeleteRSVP(ctx, eventID, actor.UserID)
}

// ListRSVPs lists every RSVP of an event
func (s *EventService) ListRSVPs(ctx context.Context, eventID int64) ([]*models.EventRSVP, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID, 0); err != nil {
		return nil, err
	}
	rsvps, err := s.eventRepo.ListRSVPs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if rsvps == nil {
		rsvps = []*models.EventRSVP{}
	}
	return rsvps, nil
}

// RecordAttendance upserts an attendance sheet. A user listed twice keeps the last entry.
func (s *EventService) RecordAttendance(ctx context.Context, actor appauth.Actor, eventID int64, req *dto.AttendanceRequest) ([]*models.Attendance, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID, 0); err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(req.Entries))
	entries := make([]models.Attendance, 0, len(req.Entries))
	for _, e := range req.Entries {
		if i, ok := index[e.UserID]; ok {
			entries[i].Status = e.Status
			continue
		}
		index[e.UserID] = len(entries)
		entries = append(entries, models.Attendance{EventID: eventID, UserID: e.UserID, Status: e.Status})
	}

	if err := s.eventRepo.UpsertAttendance(ctx, eventID, actor.UserID, entries); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("eventID", eventID).Int("entries", len(entries)).Msg("Attendance recorded")
	return s.ListAttendance(ctx, eventID)
}

// ListAttendance returns the attendance sheet of an event
func (s *EventService) ListAttendance(ctx context.Context, eventID int64) ([]*models.Attendance, error) {
	items, err := s.eventRepo.ListAttendance(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Attendance{}
	}
	return items, nil
}

// MyAttendance lists the caller's attendance records
func (s *EventService) MyAttendance(ctx context.Context, userID int64) ([]*models.Attendance, error) {
	items, err := s.eventRepo.ListAttendanceByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Attendance{}
	}
	return items, nil
}
