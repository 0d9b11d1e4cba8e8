package services

import (
	"context"
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/cache"
	"github.com/rs/zerolog"
)

const analyticsCacheKey = "admin:analytics"

// AnalyticsService builds the admin dashboard totals
type AnalyticsService struct {
	repo   repositories.IAnalyticsRepository
	cache  cache.Cache
	logger zerolog.Logger
	now    func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(repo repositories.IAnalyticsRepository, c cache.Cache, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: c, logger: logger, now: time.Now}
}

// Snapshot returns the dashboard totals, cached for the cache TTL
func (s *AnalyticsService) Snapshot(ctx context.Context) (*models.Analytics, error) {
	var cached models.Analytics
	if hit, err := s.cache.GetJSON(ctx, analyticsCacheKey, &cached); err != nil {
		s.logger.Warn().Err(err).Msg("Analytics cache read failed")
	} else if hit {
		return &cached, nil
	}

	snapshot, err := s.repo.Snapshot(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if snapshot.UsersByRole == nil {
		snapshot.UsersByRole = make(map[models.Role]int64)
	}
	for _, role := range []models.Role{models.RoleViewer, models.RoleMember, models.RoleAdmin, models.RoleSuperAdmin} {
		if _, ok := snapshot.UsersByRole[role]; !ok {
			snapshot.UsersByRole[role] = 0
		}
	}
	if err := s.cache.SetJSON(ctx, analyticsCacheKey, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("Analytics cache write failed")
	}
	return snapshot, nil
}
