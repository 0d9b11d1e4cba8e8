package services

import (
	"context"
	"testing"
	"time"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var attendee = appauth.Actor{UserID: 21, Role: models.RoleMember}

func TestSetRSVP(t *testing.T) {
	ctx := context.Background()

	t.Run("full event refuses going", func(t *testing.T) {
		events := new(mockEventRepo)
		events.On("SetRSVP", ctx, int64(3), attendee.UserID, models.RSVPGoing).Return(repositories.ErrEventFull)

		_, err := NewEventService(events, zerolog.Nop()).SetRSVP(ctx, attendee, 3, models.RSVPGoing)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		events.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("changing an answer returns the updated event", func(t *testing.T) {
		events := new(mockEventRepo)
		interested := models.RSVPInterested
		events.On("SetRSVP", ctx, int64(3), attendee.UserID, models.RSVPInterested).Return(nil)
		events.On("GetByID", ctx, int64(3), attendee.UserID).Return(&models.Event{ID: 3, InterestedCount: 1, MyRSVP: &interested}, nil)

		event, err := NewEventService(events, zerolog.Nop()).SetRSVP(ctx, attendee, 3, models.RSVPInterested)
		require.NoError(t, err)
		require.NotNil(t, event.MyRSVP)
		assert.Equal(t, models.RSVPInterested, *event.MyRSVP)
	})

	t.Run("unknown event", func(t *testing.T) {
		events := new(mockEventRepo)
		events.On("SetRSVP", ctx, int64(9), attendee.UserID, models.RSVPGoing).Return(apperrors.NewResourceNotFoundError("event not found"))

		_, err := NewEventService(events, zerolog.Nop()).SetRSVP(ctx, attendee, 9, models.RSVPGoing)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestCreateEventWindow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	admin := appauth.Actor{UserID: 1, Role: models.RoleAdmin}

	events := new(mockEventRepo)
	_, err := NewEventService(events, zerolog.Nop()).Create(ctx, admin, &dto.EventRequest{Title: "Cleanup", StartsAt: start, EndsAt: &before})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	events.On("Create", ctx, mock.AnythingOfType("*models.Event")).Return(nil)
	event, err := NewEventService(events, zerolog.Nop()).Create(ctx, admin, &dto.EventRequest{Title: "Cleanup", StartsAt: start})
	require.NoError(t, err)
	assert.Equal(t, int64(30), event.ID)
	assert.Equal(t, admin.UserID, *event.CreatedBy)
}

func TestRecordAttendanceKeepsLastEntry(t *testing.T) {
	ctx := context.Background()
	admin := appauth.Actor{UserID: 1, Role: models.RoleAdmin}
	events := new(mockEventRepo)
	events.On("GetByID", ctx, int64(3), int64(0)).Return(&models.Event{ID: 3}, nil)
	events.On("UpsertAttendance", ctx, int64(3), admin.UserID, []models.Attendance{
		{EventID: 3, UserID: 21, Status: models.AttendanceExcused},
		{EventID: 3, UserID: 22, Status: models.AttendancePresent},
	}).Return(nil)
	events.On("ListAttendance", ctx, int64(3)).Return(nil, nil)

	items, err := NewEventService(events, zerolog.Nop()).RecordAttendance(ctx, admin, 3, &dto.AttendanceRequest{Entries: []dto.AttendanceEntry{
		{UserID: 21, Status: models.AttendancePresent},
		{UserID: 22, Status: models.AttendancePresent},
		{UserID: 21, Status: models.AttendanceExcused},
	}})
	require.NoError(t, err)
	assert.NotNil(t, items)
	events.AssertExpectations(t)
}
