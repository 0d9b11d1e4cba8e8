package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

const (
	usageKindImage      = "image"
	usageHistoryLength  = 20
	minPromptLength     = 3
	maxPromptLength     = 1000
	defaultAIDailyLimit = 10
)

// StudioService generates images through the AI function under a per-user daily quota
type StudioService struct {
	usageRepo  repositories.IAIUsageRepository
	functions  functions.Invoker
	dailyLimit int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewStudioService creates a new StudioService
func NewStudioService(usageRepo repositories.IAIUsageRepository, invoker functions.Invoker, dailyLimit int, logger zerolog.Logger) *StudioService {
	if dailyLimit <= 0 {
		dailyLimit = defaultAIDailyLimit
	}
	return &StudioService{
		usageRepo:  usageRepo,
		functions:  invoker,
		dailyLimit: dailyLimit,
		logger:     logger,
		now:        time.Now,
	}
}

// usedToday counts successful generations since midnight UTC
func (s *StudioService) usedToday(ctx context.Context, userID int64) (int64, error) {
	return s.usageRepo.CountSuccessSince(ctx, userID, helpers.StartOfDayUTC(s.now()))
}

// GenerateImage reserves a slot of the daily quota, calls generate-image and records
// the outcome. Failed generations are recorded but do not count against the quota.
func (s *StudioService) GenerateImage(ctx context.Context, actor appauth.Actor, req *dto.GenerateImageRequest) (*dto.GenerateImageResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if n := utf8.RuneCountInString(prompt); n < minPromptLength || n > maxPromptLength {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("prompt must be between %d and %d characters", minPromptLength, maxPromptLength))
	}

	// Staff are unlimited but still leave a usage record
	limit := s.dailyLimit
	if actor.IsStaff() {
		limit = 0
	}
	usage := &models.AIUsage{UserID: actor.UserID, Kind: usageKindImage, Prompt: prompt}
	if err := s.usageRepo.Reserve(ctx, usage, helpers.StartOfDayUTC(s.now()), limit); err != nil {
		if errors.Is(err, apperrors.ErrQuotaExceeded) {
			return nil, apperrors.NewCustomError(apperrors.ErrQuotaExceeded,
				fmt.Sprintf("daily limit of %d generations reached", s.dailyLimit))
		}
		return nil, err
	}

	style := ""
	if req.Style != nil {
		style = *req.Style
	}
	var result functions.GenerateImageResponse
	err := s.functions.Invoke(ctx, functions.GenerateImage, functions.GenerateImageRequest{
		UserID: actor.UserID,
		Prompt: prompt,
		Style:  style,
	}, &result)
	if err == nil && result.ImageURL == "" {
		err = apperrors.NewExternalServiceError("image generation returned no image")
	}

	if err != nil {
		usage.Status = models.AIUsageFailed
		usage.ErrorMessage = stringPtr(err.Error())
		if recErr := s.usageRepo.Finish(ctx, usage); recErr != nil {
			s.logger.Error().Err(recErr).Int64("userID", actor.UserID).Msg("Error recording failed generation")
		}
		return nil, err
	}

	usage.Status = models.AIUsageSuccess
	usage.ResultURL = &result.ImageURL
	if err := s.usageRepo.Finish(ctx, usage); err != nil {
		return nil, err
	}
	return &dto.GenerateImageResponse{ImageURL: result.ImageURL, UsageID: usage.ID}, nil
}

// Usage reports the caller's quota and recent generations
func (s *StudioService) Usage(ctx context.Context, actor appauth.Actor) (*dto.StudioUsageResponse, error) {
	used, err := s.usedToday(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	history, err := s.usageRepo.ListByUser(ctx, actor.UserID, usageHistoryLength)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []*models.AIUsage{}
	}
	return &dto.StudioUsageResponse{
		UsedToday:  used,
		DailyLimit: s.dailyLimit,
		Unlimited:  actor.IsStaff(),
		History:    history,
	}, nil
}

// ListAll lists every generation for admins
func (s *StudioService) ListAll(ctx context.Context, page, size int) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.usageRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.AIUsage{}
	}
	return paginate(items, total, page, size), nil
}
