package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestErrorLog(repo *mockErrorLogRepo, reporter *fakeReporter, now time.Time) *ErrorLogService {
	s := NewErrorLogService(repo, reporter, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

func TestErrorLogPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)

	t.Run("deletes entries older than the window", func(t *testing.T) {
		repo := new(mockErrorLogRepo)
		cutoff := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		repo.On("DeleteOlderThan", ctx, cutoff).Return(int64(12), nil)

		resp, err := newTestErrorLog(repo, &fakeReporter{}, now).Purge(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(12), resp.Deleted)
		assert.Equal(t, cutoff, resp.OlderThan)
	})

	t.Run("zero days is refused", func(t *testing.T) {
		repo := new(mockErrorLogRepo)

		_, err := newTestErrorLog(repo, &fakeReporter{}, now).Purge(ctx, 0)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		repo.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
	})
}

func TestErrorLogRecordClient(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("default severity is not reported", func(t *testing.T) {
		repo := new(mockErrorLogRepo)
		reporter := &fakeReporter{}
		repo.On("Create", ctx, mock.MatchedBy(func(e *models.ErrorLog) bool {
			return e.Source == models.ErrorSourceClient && e.Severity == "error"
		})).Return(nil)

		_, err := newTestErrorLog(repo, reporter, now).RecordClient(ctx, nil, &dto.ClientErrorRequest{Message: "boom"})
		require.NoError(t, err)
		assert.Zero(t, reporter.count())
	})

	t.Run("critical errors reach the reporter", func(t *testing.T) {
		repo := new(mockErrorLogRepo)
		reporter := &fakeReporter{}
		repo.On("Create", ctx, mock.AnythingOfType("*models.ErrorLog")).Return(nil)

		_, err := newTestErrorLog(repo, reporter, now).RecordClient(ctx, nil, &dto.ClientErrorRequest{Message: "boom", Severity: "critical"})
		require.NoError(t, err)
		assert.Equal(t, 1, reporter.count())
	})
}

func TestErrorLogRecordServerReportsEvenWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	repo := new(mockErrorLogRepo)
	reporter := &fakeReporter{}
	repo.On("Create", ctx, mock.MatchedBy(func(e *models.ErrorLog) bool {
		return e.Source == models.ErrorSourceServer && *e.URL == "GET /api/v1/posts"
	})).Return(errors.New("db down"))

	newTestErrorLog(repo, reporter, time.Now()).RecordServer(ctx, ServerError{Err: errors.New("nil map"), Method: "GET", Path: "/api/v1/posts", Status: 500})
	assert.Equal(t, 1, reporter.count())
}
