package services

import (
	"context"
	"mime/multipart"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/cache"
	"github.com/parivartan/platform-api/internal/pkg/filestorage"
	"github.com/rs/zerolog"
)

const slideshowCacheKey = "slideshows:active"

// SlideshowService manages the home page carousel
type SlideshowService struct {
	repo    repositories.ISlideshowRepository
	cache   cache.Cache
	storage filestorage.FileStorage
	logger  zerolog.Logger
}

// NewSlideshowService creates a new SlideshowService
func NewSlideshowService(repo repositories.ISlideshowRepository, c cache.Cache, storage filestorage.FileStorage, logger zerolog.Logger) *SlideshowService {
	return &SlideshowService{repo: repo, cache: c, storage: storage, logger: logger}
}

// ListActive returns active slides by position, served from cache when possible
func (s *SlideshowService) ListActive(ctx context.Context) ([]*models.Slideshow, error) {
	var slides []*models.Slideshow
	hit, err := s.cache.GetJSON(ctx, slideshowCacheKey, &slides)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Slideshow cache read failed")
	}
	if hit {
		return slides, nil
	}

	slides, err = s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if slides == nil {
		slides = []*models.Slideshow{}
	}
	if err := s.cache.SetJSON(ctx, slideshowCacheKey, slides); err != nil {
		s.logger.Warn().Err(err).Msg("Slideshow cache write failed")
	}
	return slides, nil
}

// ListAll lists every slide for the admin panel
func (s *SlideshowService) ListAll(ctx context.Context) ([]*models.Slideshow, error) {
	slides, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if slides == nil {
		slides = []*models.Slideshow{}
	}
	return slides, nil
}

func (s *SlideshowService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, slideshowCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("Slideshow cache invalidation failed")
	}
}

// Create adds a slide
func (s *SlideshowService) Create(ctx context.Context, req *dto.SlideshowRequest) (*models.Slideshow, error) {
	slide := &models.Slideshow{
		Title:    req.Title,
		Caption:  req.Caption,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
		Position: req.Position,
		IsActive: boolOr(req.IsActive, true),
	}
	if err := s.repo.Create(ctx, slide); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return slide, nil
}

// Update replaces a slide. An empty image URL keeps the current image.
func (s *SlideshowService) Update(ctx context.Context, id int64, req *dto.SlideshowRequest) (*models.Slideshow, error) {
	slide, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	slide.Title = req.Title
	slide.Caption = req.Caption
	if req.ImageURL != "" {
		slide.ImageURL = req.ImageURL
	}
	slide.LinkURL = req.LinkURL
	slide.Position = req.Position
	slide.IsActive = boolOr(req.IsActive, slide.IsActive)
	if err := s.repo.Update(ctx, slide); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return slide, nil
}

// UploadImage stores an uploaded image as the slide image
func (s *SlideshowService) UploadImage(ctx context.Context, id int64, fileHeader *multipart.FileHeader) (*models.Slideshow, error) {
	slide, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := s.storage.SaveImage(ctx, fileHeader, "slideshows")
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetImage(ctx, id, info.URL); err != nil {
		_ = s.storage.Delete(ctx, info.URL)
		return nil, err
	}
	s.removeImage(ctx, slide.ImageURL)
	slide.ImageURL = info.URL
	s.invalidate(ctx)
	return slide, nil
}

// Delete removes a slide and its uploaded image
func (s *SlideshowService) Delete(ctx context.Context, id int64) error {
	slide, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(ctx, slide.ImageURL)
	s.invalidate(ctx)
	return nil
}

// removeImage deletes a stored file; external URLs are left alone by the storage
func (s *SlideshowService) removeImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		s.logger.Debug().Err(err).Str("url", url).Msg("Slide image not removed")
	}
}
