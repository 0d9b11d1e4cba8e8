package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
)

// ISlideshowRepository defines slideshow persistence
type ISlideshowRepository interface {
	Create(ctx context.Context, s *models.Slideshow) error
	GetByID(ctx context.Context, id int64) (*models.Slideshow, error)
	Update(ctx context.Context, s *models.Slideshow) error
	SetImage(ctx context.Context, id int64, imageURL string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool) ([]*models.Slideshow, error)
}

// SlideshowRepository handles the slideshows table
type SlideshowRepository struct {
	db *pgxpool.Pool
}

// NewSlideshowRepository creates a new SlideshowRepository
func NewSlideshowRepository(db *pgxpool.Pool) *SlideshowRepository {
	return &SlideshowRepository{db: db}
}

const slideshowSelect = `
	SELECT id, title, caption, image_url, link_url, position, is_active, created_at, updated_at FROM slideshows`

func scanSlideshow(row pgx.Row) (*models.Slideshow, error) {
	s := &models.Slideshow{}
	err := row.Scan(&s.ID, &s.Title, &s.Caption, &s.ImageURL, &s.LinkURL, &s.Position, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create inserts a slide
func (r *SlideshowRepository) Create(ctx context.Context, s *models.Slideshow) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO slideshows (title, caption, image_url, link_url, position, is_active)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		s.Title, s.Caption, s.ImageURL, s.LinkURL, s.Position, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating slideshow: %w", err)
	}
	return nil
}

// GetByID loads one slide
func (r *SlideshowRepository) GetByID(ctx context.Context, id int64) (*models.Slideshow, error) {
	s, err := scanSlideshow(r.db.QueryRow(ctx, slideshowSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("slideshow not found")
		}
		return nil, fmt.Errorf("error retrieving slideshow: %w", err)
	}
	return s, nil
}

// Update replaces a slide
func (r *SlideshowRepository) Update(ctx context.Context, s *models.Slideshow) error {
	err := r.db.QueryRow(ctx, `
		UPDATE slideshows SET title = $1, caption = $2, image_url = $3, link_url = $4, position = $5, is_active = $6,
			updated_at = NOW()
		WHERE id = $7 RETURNING created_at, updated_at`,
		s.Title, s.Caption, s.ImageURL, s.LinkURL, s.Position, s.IsActive, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewResourceNotFoundError("slideshow not found")
		}
		return fmt.Errorf("error updating slideshow: %w", err)
	}
	return nil
}

// SetImage stores an uploaded image URL
func (r *SlideshowRepository) SetImage(ctx context.Context, id int64, imageURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE slideshows SET image_url = $1, updated_at = NOW() WHERE id = $2`, imageURL, id)
	if err != nil {
		return fmt.Errorf("error setting slideshow image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("slideshow not found")
	}
	return nil
}

// Delete removes a slide
func (r *SlideshowRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM slideshows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting slideshow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("slideshow not found")
	}
	return nil
}

// List lists slides ordered by position
func (r *SlideshowRepository) List(ctx context.Context, activeOnly bool) ([]*models.Slideshow, error) {
	sql := slideshowSelect
	if activeOnly {
		sql += ` WHERE is_active`
	}
	rows, err := r.db.Query(ctx, sql+` ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error listing slideshows: %w", err)
	}
	defer rows.Close()

	items := []*models.Slideshow{}
	for rows.Next() {
		s, err := scanSlideshow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning slideshow: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
