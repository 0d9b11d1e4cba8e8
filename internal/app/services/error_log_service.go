package services

import (
	"context"
	"errors"
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/errreport"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

const (
	severityError    = "error"
	severityCritical = "critical"
)

// ServerError describes a failed request for the error log
type ServerError struct {
	Err       error
	UserID    *int64
	Method    string
	Path      string
	Status    int
	UserAgent string
	RequestID string
}

// ErrorLogService records client and server errors and forwards server errors to Rollbar
type ErrorLogService struct {
	repo     repositories.IErrorLogRepository
	reporter errreport.Reporter
	logger   zerolog.Logger
	now      func() time.Time
}

// NewErrorLogService creates a new ErrorLogService
func NewErrorLogService(repo repositories.IErrorLogRepository, reporter errreport.Reporter, logger zerolog.Logger) *ErrorLogService {
	if reporter == nil {
		reporter = errreport.Noop{}
	}
	return &ErrorLogService{repo: repo, reporter: reporter, logger: logger, now: time.Now}
}

// RecordClient stores an error reported by the frontend. userID is nil for anonymous reports.
func (s *ErrorLogService) RecordClient(ctx context.Context, userID *int64, req *dto.ClientErrorRequest) (*models.ErrorLog, error) {
	severity := req.Severity
	if severity == "" {
		severity = severityError
	}
	entry := &models.ErrorLog{
		UserID:    userID,
		Source:    models.ErrorSourceClient,
		Severity:  severity,
		Message:   req.Message,
		Stack:     req.Stack,
		URL:       req.URL,
		UserAgent: req.UserAgent,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	if severity == severityCritical {
		s.reporter.Report(errors.New(req.Message), userID, map[string]interface{}{"source": "client", "url": entry.URL})
	}
	return entry, nil
}

// RecordServer stores a 5xx response and reports it. Failures are only logged.
func (s *ErrorLogService) RecordServer(ctx context.Context, e ServerError) {
	message := "internal server error"
	if e.Err != nil {
		message = e.Err.Error()
	}
	path := e.Method + " " + e.Path
	entry := &models.ErrorLog{
		UserID:   e.UserID,
		Source:   models.ErrorSourceServer,
		Severity: severityError,
		Message:  message,
		URL:      &path,
	}
	if e.UserAgent != "" {
		entry.UserAgent = &e.UserAgent
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Error recording server error")
	}

	reportErr := e.Err
	if reportErr == nil {
		reportErr = errors.New(message)
	}
	s.reporter.Report(reportErr, e.UserID, map[string]interface{}{
		"method":    e.Method,
		"path":      e.Path,
		"status":    e.Status,
		"requestId": e.RequestID,
	})
}

// List lists error log entries newest first
func (s *ErrorLogService) List(ctx context.Context, source *models.ErrorSource, severity string, page, size int) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.List(ctx, source, severity, offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.ErrorLog{}
	}
	return paginate(items, total, page, size), nil
}

// Purge deletes entries older than the given number of days
func (s *ErrorLogService) Purge(ctx context.Context, olderThanDays int) (*dto.PurgeResponse, error) {
	if olderThanDays < 1 {
		return nil, apperrors.NewBadRequestError("days must be at least 1")
	}
	before := helpers.DaysAgo(s.now(), olderThanDays)
	deleted, err := s.repo.DeleteOlderThan(ctx, before)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("deleted", deleted).Time("before", before).Msg("Error logs purged")
	return &dto.PurgeResponse{Deleted: deleted, OlderThan: before}, nil
}
