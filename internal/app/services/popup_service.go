package services

import (
	"context"
	"time"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// PopupService manages modal announcements and who has seen them
type PopupService struct {
	repo   repositories.IPopupRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewPopupService creates a new PopupService
func NewPopupService(repo repositories.IPopupRepository, logger zerolog.Logger) *PopupService {
	return &PopupService{repo: repo, logger: logger, now: time.Now}
}

func applyPopupRequest(p *models.Popup, req *dto.PopupRequest, defaultActive bool) error {
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return apperrors.NewBadRequestError("popup end must be after its start")
	}
	p.Title = req.Title
	p.Content = req.Content
	p.ImageURL = req.ImageURL
	p.CTALabel = req.CTALabel
	p.CTAURL = req.CTAURL
	p.Audience = req.Audience
	if p.Audience == "" {
		p.Audience = models.PopupAudienceAll
	}
	p.StartsAt = req.StartsAt
	p.EndsAt = req.EndsAt
	p.IsActive = boolOr(req.IsActive, defaultActive)
	return nil
}

// ListAll lists every popup for the admin panel
func (s *PopupService) ListAll(ctx context.Context) ([]*models.Popup, error) {
	popups, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if popups == nil {
		popups = []*models.Popup{}
	}
	return popups, nil
}

// Get returns one popup
func (s *PopupService) Get(ctx context.Context, id int64) (*models.Popup, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new popup
func (s *PopupService) Create(ctx context.Context, actor appauth.Actor, req *dto.PopupRequest) (*models.Popup, error) {
	p := &models.Popup{CreatedBy: &actor.UserID}
	if err := applyPopupRequest(p, req, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces a popup
func (s *PopupService) Update(ctx context.Context, id int64, req *dto.PopupRequest) (*models.Popup, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPopupRequest(p, req, p.IsActive); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a popup
func (s *PopupService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Active returns the live popups the user is in the audience of and has not yet viewed
func (s *PopupService) Active(ctx context.Context, actor appauth.Actor) ([]*models.Popup, error) {
	now := s.now()
	candidates, err := s.repo.ListLiveNotViewed(ctx, actor.UserID, now)
	if err != nil {
		return nil, err
	}
	popups := make([]*models.Popup, 0, len(candidates))
	for _, p := range candidates {
		if p.LiveAt(now) && p.VisibleTo(actor.Role) {
			popups = append(popups, p)
		}
	}
	return popups, nil
}

// RecordView marks a popup as seen. Repeated views are no-ops.
func (s *PopupService) RecordView(ctx context.Context, actor appauth.Actor, id int64) error {
	return s.repo.RecordView(ctx, id, actor.UserID)
}
